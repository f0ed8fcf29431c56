// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/relabs-tech/imu_recorder/internal/imu"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// MPUConfig describes how the MPU-9250 is attached and configured.
type MPUConfig struct {
	SPIDevice string // e.g. "/dev/spidev6.0"
	CSPin     string // GPIO name for manual chip select, "" to let the port drive CS

	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	AccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	GyroRange byte
	// Digital low pass filter configuration (0-7)
	DLPFConfig byte
	// Sample rate divider (output rate = internal rate / (1 + div))
	SampleRateDiv byte
}

type mpu9250Source struct {
	cfg   MPUConfig
	conn  spi.Conn
	cs    gpio.PinOut
	epoch time.Time

	mu   sync.Mutex
	quit chan struct{}
	done chan struct{}
}

// NewMPU9250 initializes an MPU-9250 over SPI and returns it as a Source
// delivering both accelerometer and gyroscope events. A probe or
// configuration failure is returned to the caller; the recorder treats it
// as "sensor absent" and falls back rather than aborting.
func NewMPU9250(cfg MPUConfig) (Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	port, err := spireg.Open(cfg.SPIDevice)
	if err != nil {
		return nil, fmt.Errorf("IMU SPI open (%s): %w", cfg.SPIDevice, err)
	}

	conn, err := port.Connect(1*physic.MegaHertz, spi.Mode3, 8)
	if err != nil {
		return nil, fmt.Errorf("IMU SPI connect: %w", err)
	}

	s := &mpu9250Source{cfg: cfg, conn: conn, epoch: time.Now()}

	if cfg.CSPin != "" {
		cs := gpioreg.ByName(cfg.CSPin)
		if cs == nil {
			return nil, fmt.Errorf("IMU CS pin %q not found", cfg.CSPin)
		}
		if err := cs.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("IMU CS pin init: %w", err)
		}
		s.cs = cs
	}

	id, err := s.readReg(regWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("IMU WHO_AM_I read: %w", err)
	}
	if id != whoAmIMPU9250 && id != whoAmIMPU9255 {
		return nil, fmt.Errorf("IMU WHO_AM_I = 0x%02X, want 0x%02X or 0x%02X",
			id, whoAmIMPU9250, whoAmIMPU9255)
	}
	log.Printf("IMU: WHO_AM_I = 0x%02X", id)

	// Wake the device and select the PLL clock source.
	if err := s.writeReg(regPwrMgmt1, 0x01); err != nil {
		return nil, fmt.Errorf("IMU power management: %w", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := s.writeReg(regConfig, cfg.DLPFConfig&0x07); err != nil {
		return nil, fmt.Errorf("IMU set DLPF: %w", err)
	}
	if err := s.writeReg(regSmplrtDiv, cfg.SampleRateDiv); err != nil {
		return nil, fmt.Errorf("IMU set sample rate divider: %w", err)
	}
	if err := s.writeReg(regGyroConfig, (cfg.GyroRange&0x03)<<3); err != nil {
		return nil, fmt.Errorf("IMU set gyro range: %w", err)
	}
	if err := s.writeReg(regAccelConfig, (cfg.AccelRange&0x03)<<3); err != nil {
		return nil, fmt.Errorf("IMU set accel range: %w", err)
	}
	if err := s.writeReg(regAccelConfig2, cfg.DLPFConfig&0x07); err != nil {
		return nil, fmt.Errorf("IMU set accel DLPF: %w", err)
	}
	log.Printf("IMU: accel range %d (±%dg), gyro range %d (±%d°/s)",
		cfg.AccelRange, []int{2, 4, 8, 16}[cfg.AccelRange&0x03],
		cfg.GyroRange, []int{250, 500, 1000, 2000}[cfg.GyroRange&0x03])

	return s, nil
}

func (s *mpu9250Source) Kinds() []imu.Kind {
	return []imu.Kind{imu.Accelerometer, imu.Gyroscope}
}

func (s *mpu9250Source) tx(w, r []byte) error {
	if s.cs != nil {
		if err := s.cs.Out(gpio.Low); err != nil {
			return err
		}
		defer s.cs.Out(gpio.High)
	}
	return s.conn.Tx(w, r)
}

func (s *mpu9250Source) readReg(reg byte) (byte, error) {
	var r [2]byte
	if err := s.tx([]byte{reg | regReadFlag, 0}, r[:]); err != nil {
		return 0, err
	}
	return r[1], nil
}

func (s *mpu9250Source) writeReg(reg, val byte) error {
	var r [2]byte
	return s.tx([]byte{reg, val}, r[:])
}

// readBurst reads the 14-byte accelerometer/temperature/gyroscope block in
// one transaction so the axis triples are sampled coherently.
func (s *mpu9250Source) readBurst() (accel, gyro [3]float32, err error) {
	var w [15]byte
	var r [15]byte
	w[0] = regAccelXoutH | regReadFlag
	if err = s.tx(w[:], r[:]); err != nil {
		return accel, gyro, fmt.Errorf("IMU burst read: %w", err)
	}
	data := r[1:]

	aScale := standardGravity / accelLSBPerG[s.cfg.AccelRange&0x03]
	gScale := (math.Pi / 180.0) / gyroLSBPerDPS[s.cfg.GyroRange&0x03]

	for i := 0; i < 3; i++ {
		raw := int16(binary.BigEndian.Uint16(data[2*i:]))
		accel[i] = float32(float64(raw) * aScale)
	}
	// data[6:8] is the die temperature; the log format has no column for it.
	for i := 0; i < 3; i++ {
		raw := int16(binary.BigEndian.Uint16(data[8+2*i:]))
		gyro[i] = float32(float64(raw) * gScale)
	}
	return accel, gyro, nil
}

func (s *mpu9250Source) Start(rate Rate, out chan<- Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quit != nil {
		return nil
	}
	s.quit = make(chan struct{})
	s.done = make(chan struct{})

	go func(quit, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(rate.Interval())
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				accel, gyro, err := s.readBurst()
				if err != nil {
					log.Printf("IMU read error: %v", err)
					continue
				}
				ts := time.Since(s.epoch).Nanoseconds()
				select {
				case out <- Event{Kind: imu.Accelerometer, Values: accel, Timestamp: ts}:
				case <-quit:
					return
				}
				select {
				case out <- Event{Kind: imu.Gyroscope, Values: gyro, Timestamp: ts}:
				case <-quit:
					return
				}
			}
		}
	}(s.quit, s.done)
	return nil
}

func (s *mpu9250Source) Stop() {
	s.mu.Lock()
	quit, done := s.quit, s.done
	s.quit, s.done = nil, nil
	s.mu.Unlock()
	if quit == nil {
		return
	}
	close(quit)
	<-done
}
