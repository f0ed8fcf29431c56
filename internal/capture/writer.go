// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/relabs-tech/imu_recorder/internal/imu"
)

// Writer owns the open capture log for the duration of one recording
// session. Append is safe to call from both sensor streams concurrently;
// one mutex around each write keeps lines whole.
type Writer struct {
	mu        sync.Mutex
	f         *os.File
	w         *bufio.Writer
	recording atomic.Bool
}

// Open creates (or truncates) the log file at path. The session stays idle
// if this fails; the error is returned to the caller of Start.
func (w *Writer) Open(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open capture log %s: %w", path, err)
	}
	w.f = f
	w.w = bufio.NewWriter(f)
	return nil
}

// WriteHeader writes the CSV header when both sensors are present, or a
// plain-text warning naming the missing sensor otherwise. Either way the
// writer then starts accepting records; in the fallback case whichever
// sensor exists is still logged.
func (w *Writer) WriteHeader(hasAccel, hasGyro bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return
	}
	if hasAccel && hasGyro {
		if _, err := w.w.WriteString(imu.Header); err != nil {
			log.Printf("writing capture log header: %v", err)
		}
	} else {
		warning := "The device may not have a gyroscope or an accelerometer!\n" +
			"No IMU data will be logged.\n" +
			"Has Gyroscope? " + yesNo(hasGyro) + "\n" +
			"Has Accelerometer? " + yesNo(hasAccel) + "\n"
		if _, err := w.w.WriteString(warning); err != nil {
			log.Printf("writing capture log warning: %v", err)
		}
	}
	w.recording.Store(true)
}

// Recording reports whether records are currently being accepted.
func (w *Writer) Recording() bool {
	return w.recording.Load()
}

// Append writes one record line. Records arriving while idle are discarded.
// A write failure is logged and swallowed: one bad record must not take
// down the session or the other sensor's stream.
func (w *Writer) Append(s imu.Sample) {
	if !w.recording.Load() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return
	}
	if _, err := w.w.WriteString(s.Line()); err != nil {
		log.Printf("appending %s record: %v", s.Kind, err)
	}
}

// Flush pushes buffered bytes to the underlying file.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush capture log: %w", err)
	}
	return nil
}

// Close stops accepting records, flushes, and releases the file. The next
// session reopens from scratch; the handle is never carried across sessions.
func (w *Writer) Close() error {
	w.recording.Store(false)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	var err error
	if ferr := w.w.Flush(); ferr != nil {
		err = fmt.Errorf("flush capture log: %w", ferr)
	}
	if cerr := w.f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close capture log: %w", cerr)
	}
	w.f = nil
	w.w = nil
	return err
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
