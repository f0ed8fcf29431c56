// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/imu_recorder/internal/imu"
	"github.com/relabs-tech/imu_recorder/internal/sensors"
)

// eventQueueDepth absorbs short bursts from the sources so their producer
// goroutines never block on log I/O.
const eventQueueDepth = 256

// Ingestor subscribes to the sensor sources and forwards their events to
// the session writer. All delivery happens on one worker goroutine, so
// ordering between the two streams is well defined relative to each other.
//
// The ingestor does not own the writer; it only appends to it.
type Ingestor struct {
	writer  *Writer
	sources []sensors.Source

	accelBuf Buffer
	gyroBuf  Buffer

	mu         sync.Mutex
	events     chan sensors.Event
	wg         sync.WaitGroup
	subscribed bool

	accelCount atomic.Uint64
	gyroCount  atomic.Uint64

	accelAccuracy atomic.Int32
	gyroAccuracy  atomic.Int32
}

// NewIngestor wires the given sources to the writer. Sources may cover one
// kind or both; a host missing a sensor simply contributes no source for it.
func NewIngestor(w *Writer, srcs ...sensors.Source) *Ingestor {
	return &Ingestor{writer: w, sources: srcs}
}

// HasKind reports whether any source delivers the given sensor kind.
func (in *Ingestor) HasKind(k imu.Kind) bool {
	for _, src := range in.sources {
		for _, sk := range src.Kinds() {
			if sk == k {
				return true
			}
		}
	}
	return false
}

// Subscribe starts event delivery at the given rate hint. Calling it while
// already subscribed is a no-op.
func (in *Ingestor) Subscribe(rate sensors.Rate) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.subscribed {
		return
	}
	in.events = make(chan sensors.Event, eventQueueDepth)
	in.wg.Add(1)
	go in.run(in.events)
	for _, src := range in.sources {
		if err := src.Start(rate, in.events); err != nil {
			// A source that cannot start is equivalent to an absent
			// sensor; the others keep going.
			in.onSourceError(src, err)
		}
	}
	in.subscribed = true
}

// Unsubscribe stops the sources, drains the delivery worker, and returns
// once no further event can reach the writer. Idempotent, and safe to call
// without a prior Subscribe.
func (in *Ingestor) Unsubscribe() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.subscribed {
		return
	}
	for _, src := range in.sources {
		src.Stop()
	}
	close(in.events)
	in.wg.Wait()
	in.events = nil
	in.subscribed = false
}

// run is the single delivery context for both sensor streams. It exits when
// the event channel is closed during Unsubscribe.
func (in *Ingestor) run(events <-chan sensors.Event) {
	defer in.wg.Done()
	for ev := range events {
		if !in.writer.Recording() {
			continue
		}
		s := imu.Sample{
			Timestamp:      ev.Timestamp,
			UnixTimeMillis: time.Now().UnixMilli(),
			Kind:           ev.Kind,
			Values:         ev.Values,
		}
		buf := &in.accelBuf
		count := &in.accelCount
		if ev.Kind == imu.Gyroscope {
			buf = &in.gyroBuf
			count = &in.gyroCount
		}
		// Write-through: staged in the buffer, drained immediately. An
		// alignment policy would hold samples here within
		// interpolationTimeResolution before eviction.
		buf.Push(s)
		for {
			rec, ok := buf.Pop()
			if !ok {
				break
			}
			in.writer.Append(rec)
			count.Add(1)
		}
	}
}

func (in *Ingestor) onSourceError(src sensors.Source, err error) {
	for _, k := range src.Kinds() {
		in.AccuracyChanged(k, imu.AccuracyUnreliable)
	}
	log.Printf("sensor source failed to start: %v", err)
}

// AccuracyChanged records the platform-reported accuracy for one kind.
// Observational only; logging is unaffected.
func (in *Ingestor) AccuracyChanged(k imu.Kind, acc imu.Accuracy) {
	switch k {
	case imu.Accelerometer:
		in.accelAccuracy.Store(int32(acc))
	case imu.Gyroscope:
		in.gyroAccuracy.Store(int32(acc))
	}
}

// Accuracy returns the latest reported accuracy for one kind.
func (in *Ingestor) Accuracy(k imu.Kind) imu.Accuracy {
	if k == imu.Gyroscope {
		return imu.Accuracy(in.gyroAccuracy.Load())
	}
	return imu.Accuracy(in.accelAccuracy.Load())
}

// Counts returns how many records of each kind have been appended.
func (in *Ingestor) Counts() (accel, gyro uint64) {
	return in.accelCount.Load(), in.gyroCount.Load()
}
