// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"errors"
	"log"
	"sync"

	"github.com/relabs-tech/imu_recorder/internal/gps"
	"github.com/relabs-tech/imu_recorder/internal/imu"
	"github.com/relabs-tech/imu_recorder/internal/sensors"
)

// ErrAlreadyRecording is returned by Start while a session is in progress.
var ErrAlreadyRecording = errors.New("capture session already recording")

// State is the session lifecycle state.
type State int

const (
	Idle State = iota
	Recording
)

func (s State) String() string {
	if s == Recording {
		return "recording"
	}
	return "idle"
}

// Session orchestrates one capture lifecycle: Register binds the sensor
// sources, Start/Stop bracket a recording into one log file, Unregister
// tears everything down, including the location collaborator.
//
// The session exclusively owns the writer and its log file. The host
// application calls Register, Start, Stop, Unregister, in that order.
type Session struct {
	writer   *Writer
	ingestor *Ingestor
	location gps.Provider

	mu         sync.Mutex
	state      State
	registered bool
}

// NewSession builds a session over the given sensor sources and location
// collaborator. Pass gps.NopProvider when there is no location hardware.
func NewSession(location gps.Provider, srcs ...sensors.Source) *Session {
	w := &Writer{}
	return &Session{
		writer:   w,
		ingestor: NewIngestor(w, srcs...),
		location: location,
	}
}

// Register begins sensor subscription at the given rate hint and registers
// the location collaborator. Independent of recording state; call once per
// capture lifecycle.
func (s *Session) Register(rate sensors.Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registered {
		return
	}
	s.ingestor.Subscribe(rate)
	if err := s.location.Register(); err != nil {
		// Location is a collaborator, not a dependency: IMU capture
		// proceeds without it.
		log.Printf("location provider unavailable: %v", err)
	}
	s.registered = true
	log.Printf("session registered at rate %s", rate)
}

// Start opens the capture log at path and begins recording. Only valid
// while idle; an open failure leaves the session idle and is returned.
func (s *Session) Start(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Recording {
		return ErrAlreadyRecording
	}
	if err := s.writer.Open(path); err != nil {
		log.Printf("starting capture session: %v", err)
		return err
	}
	hasAccel := s.ingestor.HasKind(imu.Accelerometer)
	hasGyro := s.ingestor.HasKind(imu.Gyroscope)
	s.writer.WriteHeader(hasAccel, hasGyro)
	s.state = Recording
	log.Printf("recording to %s (accelerometer=%v gyroscope=%v)", path, hasAccel, hasGyro)
	return nil
}

// Stop ends the recording: flush, close, back to idle. A no-op when
// already idle, so calling it twice is safe.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.state != Recording {
		return
	}
	if err := s.writer.Close(); err != nil {
		log.Printf("stopping capture session: %v", err)
	}
	s.state = Idle
	accel, gyro := s.ingestor.Counts()
	log.Printf("recording stopped (%d accelerometer, %d gyroscope records)", accel, gyro)
}

// Unregister quiesces sensor delivery, stops the location collaborator,
// and stops any recording in progress. Safe to call multiple times; the
// collaborator is only stopped on the first call after a Register.
func (s *Session) Unregister() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registered {
		s.ingestor.Unsubscribe()
		s.location.Unregister()
		s.registered = false
	}
	s.stopLocked()
}

// State reports whether the session is idle or recording.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats exposes the ingestor's counters and accuracies for diagnostics.
func (s *Session) Stats() (accel, gyro uint64, accelAcc, gyroAcc imu.Accuracy) {
	accel, gyro = s.ingestor.Counts()
	return accel, gyro,
		s.ingestor.Accuracy(imu.Accelerometer),
		s.ingestor.Accuracy(imu.Gyroscope)
}

// Ingestor returns the session's ingestor for accuracy callbacks.
func (s *Session) Ingestor() *Ingestor {
	return s.ingestor
}
