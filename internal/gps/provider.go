// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
)

// Provider is the location collaborator the capture session tears down with.
// The session only ever calls Unregister, and only once per registration.
type Provider interface {
	// Register opens the location source and begins logging fixes.
	Register() error
	// Unregister stops fix delivery and closes the log. Idempotent.
	Unregister()
}

// NopProvider is used when no GPS hardware is configured.
type NopProvider struct{}

func (NopProvider) Register() error { return nil }
func (NopProvider) Unregister()     {}

// SerialProvider reads NMEA sentences from a serial GPS and appends RMC
// fixes to its own CSV log, timestamped with the same wall clock the IMU
// records carry so the two logs can be aligned offline.
type SerialProvider struct {
	PortName string
	BaudRate uint
	LogPath  string

	mu      sync.Mutex
	port    io.ReadWriteCloser
	logFile *os.File
	logW    *bufio.Writer
	done    chan struct{}
	running bool
}

// Register opens the serial port and the fix log and starts the read loop.
func (p *SerialProvider) Register() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}

	opts := serial.OpenOptions{
		PortName:        p.PortName,
		BaudRate:        p.BaudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return fmt.Errorf("open GPS serial port %s: %w", p.PortName, err)
	}

	f, err := os.Create(p.LogPath)
	if err != nil {
		port.Close()
		return fmt.Errorf("open GPS fix log %s: %w", p.LogPath, err)
	}

	p.port = port
	p.logFile = f
	p.logW = bufio.NewWriter(f)
	if _, err := p.logW.WriteString(FixHeader); err != nil {
		log.Printf("GPS: writing fix log header: %v", err)
	}
	p.done = make(chan struct{})
	p.running = true

	go p.readLoop(port, p.done)

	log.Printf("GPS: serial port %s open at %d baud, logging to %s",
		p.PortName, p.BaudRate, p.LogPath)
	return nil
}

func (p *SerialProvider) readLoop(port io.Reader, done chan struct{}) {
	defer close(done)
	reader := bufio.NewReader(port)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// Closing the port during Unregister lands here.
			return
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// noisy GPS or partial sentences
			continue
		}

		if sentence.DataType() != nmea.TypeRMC {
			continue
		}
		m := sentence.(nmea.RMC)
		fix := Fix{
			UnixTimeMillis: time.Now().UnixMilli(),
			Latitude:       m.Latitude,
			Longitude:      m.Longitude,
			SpeedKnots:     m.Speed,
			CourseDeg:      m.Course,
			Validity:       string(m.Validity),
		}

		p.mu.Lock()
		if p.logW != nil {
			if _, err := p.logW.WriteString(fix.Line()); err != nil {
				log.Printf("GPS: appending fix: %v", err)
			}
		}
		p.mu.Unlock()
	}
}

// Unregister closes the serial port, waits for the read loop to exit, and
// flushes and closes the fix log. Safe to call more than once.
func (p *SerialProvider) Unregister() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	port := p.port
	done := p.done
	p.port = nil
	p.mu.Unlock()

	// Unblock the reader, then wait for it to quiesce.
	if err := port.Close(); err != nil {
		log.Printf("GPS: closing serial port: %v", err)
	}
	<-done

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.logW != nil {
		if err := p.logW.Flush(); err != nil {
			log.Printf("GPS: flushing fix log: %v", err)
		}
	}
	if p.logFile != nil {
		if err := p.logFile.Close(); err != nil {
			log.Printf("GPS: closing fix log: %v", err)
		}
	}
	p.logW = nil
	p.logFile = nil
	log.Printf("GPS: unregistered")
}
