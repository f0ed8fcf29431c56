// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"sync"
	"time"

	"github.com/relabs-tech/imu_recorder/internal/imu"
)

type mockSource struct {
	start time.Time

	mu   sync.Mutex
	quit chan struct{}
	done chan struct{}
}

// NewMockSource creates a source that generates smooth changing
// accelerometer and gyroscope values. Useful on hosts without the real
// hardware attached.
func NewMockSource() Source {
	return &mockSource{start: time.Now()}
}

func (m *mockSource) Kinds() []imu.Kind {
	return []imu.Kind{imu.Accelerometer, imu.Gyroscope}
}

func (m *mockSource) Start(rate Rate, out chan<- Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quit != nil {
		return nil // already running
	}
	m.quit = make(chan struct{})
	m.done = make(chan struct{})

	go func(quit, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(rate.Interval())
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				elapsed := time.Since(m.start)
				ts := elapsed.Nanoseconds()
				sec := elapsed.Seconds()
				accel := Event{
					Kind: imu.Accelerometer,
					Values: [3]float32{
						float32(0.3 * math.Sin(sec)),
						float32(0.2 * math.Cos(sec*0.7)),
						float32(9.81 + 0.05*math.Sin(sec*3)),
					},
					Timestamp: ts,
				}
				gyro := Event{
					Kind: imu.Gyroscope,
					Values: [3]float32{
						float32(0.1 * math.Cos(sec)),
						float32(0.05 * math.Sin(sec*1.3)),
						float32(0.02 * math.Sin(sec*0.4)),
					},
					Timestamp: ts,
				}
				// Never block on a consumer that is tearing down.
				select {
				case out <- accel:
				case <-quit:
					return
				}
				select {
				case out <- gyro:
				case <-quit:
					return
				}
			}
		}
	}(m.quit, m.done)
	return nil
}

func (m *mockSource) Stop() {
	m.mu.Lock()
	quit, done := m.quit, m.done
	m.quit, m.done = nil, nil
	m.mu.Unlock()
	if quit == nil {
		return
	}
	close(quit)
	<-done
}
