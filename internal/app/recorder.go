// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/imu_recorder/internal/capture"
	"github.com/relabs-tech/imu_recorder/internal/config"
	"github.com/relabs-tech/imu_recorder/internal/gps"
	"github.com/relabs-tech/imu_recorder/internal/sensors"
)

// RunRecorder wires up the sensor sources, the location provider, and a
// capture session, records until interrupted, and tears everything down in
// the register → start → stop → unregister order the session expects.
func RunRecorder(cfg *config.Config) error {
	rate, err := sensors.ParseRate(cfg.IMUFreq)
	if err != nil {
		return err
	}

	// --- sensor sources ---
	var srcs []sensors.Source
	if cfg.UseMockSensors {
		log.Println("using mock sensor source")
		srcs = append(srcs, sensors.NewMockSource())
	} else {
		src, err := sensors.NewMPU9250(sensors.MPUConfig{
			SPIDevice:     cfg.IMUSPIDevice,
			CSPin:         cfg.IMUCSPin,
			AccelRange:    cfg.IMUAccelRange,
			GyroRange:     cfg.IMUGyroRange,
			DLPFConfig:    cfg.IMUDLPFConfig,
			SampleRateDiv: cfg.IMUSampleRateDiv,
		})
		if err != nil {
			// Absent hardware degrades to fallback logging rather
			// than refusing to start.
			log.Printf("WARNING: IMU unavailable, logging fallback warning only: %v", err)
		} else {
			srcs = append(srcs, src)
		}
	}

	// --- location collaborator ---
	var location gps.Provider = gps.NopProvider{}
	if cfg.GPSSerialPort != "" {
		location = &gps.SerialProvider{
			PortName: cfg.GPSSerialPort,
			BaudRate: uint(cfg.GPSBaudRate),
			LogPath:  cfg.GPSLogFile,
		}
	}

	session := capture.NewSession(location, srcs...)
	session.Register(rate)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		session.Unregister()
		return fmt.Errorf("create output dir: %w", err)
	}
	logPath := filepath.Join(cfg.OutputDir,
		time.Now().Format("2006_01_02_15_04_05")+"_imu.csv")

	if err := session.Start(logPath); err != nil {
		session.Unregister()
		return err
	}

	// --- status publishing (optional) ---
	var client mqtt.Client
	stopStatus := make(chan struct{})
	if cfg.MQTTBroker != "" {
		opts := mqtt.NewClientOptions().
			AddBroker(cfg.MQTTBroker).
			SetClientID(cfg.MQTTClientIDRecorder)
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.Printf("MQTT connect error, continuing without status: %v", token.Error())
			client = nil
		} else {
			log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)
			go func() {
				ticker := time.NewTicker(time.Duration(cfg.StatusIntervalSeconds) * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-stopStatus:
						return
					case <-ticker.C:
						publishStatus(client, cfg.TopicStatus, snapshotStatus(session, logPath))
					}
				}
			}()
		}
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("shutting down")
	session.Stop()
	session.Unregister()

	close(stopStatus)
	if client != nil {
		publishStatus(client, cfg.TopicStatus, snapshotStatus(session, ""))
		client.Disconnect(250)
	}
	return nil
}
