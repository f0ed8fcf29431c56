// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import "strconv"

// Kind identifies which sensor produced a sample. The numeric value is also
// the record discriminant written to the log.
type Kind int

const (
	Accelerometer Kind = 1
	Gyroscope     Kind = 2
)

func (k Kind) String() string {
	switch k {
	case Accelerometer:
		return "accelerometer"
	case Gyroscope:
		return "gyroscope"
	}
	return "unknown"
}

// Header is the CSV header written at the top of a capture log when both
// sensors are present. Downstream tooling matches it verbatim.
const Header = "Timestamp[nanosec],gx[rad/s],gy[rad/s],gz[rad/s]," +
	"ax[m/s^2],ay[m/s^2],az[m/s^2],Unix time[nanosec]\n"

// Accuracy is the platform-reported sensor accuracy, latest value per kind.
// Purely diagnostic; it never affects logging.
type Accuracy int32

const (
	AccuracyUnreliable Accuracy = 0
	AccuracyLow        Accuracy = 1
	AccuracyMedium     Accuracy = 2
	AccuracyHigh       Accuracy = 3
)

// Sample is one timestamped axis-triple reading from one sensor.
type Sample struct {
	// Timestamp is in nanoseconds on the sensor subsystem's monotonic
	// clock. It orders samples within one stream; it is unrelated to
	// wall-clock time.
	Timestamp int64

	// UnixTimeMillis is the wall clock sampled when the event was
	// received, used to align the log with externally timestamped data
	// such as GPS fixes.
	UnixTimeMillis int64

	Kind Kind

	// Values holds X, Y, Z readings: m/s^2 for the accelerometer,
	// rad/s for the gyroscope.
	Values [3]float32
}

// Line renders the sample as one log record:
//
//	<kind>,<x>,<y>,<z>,<timestamp><unixmillis>000000\n
//
// The device timestamp and the wall-clock value are concatenated without a
// separator, and the wall-clock milliseconds are turned into "nanoseconds"
// by appending six zero digits. Both are a format contract with existing
// consumers of these logs and must not be "fixed" into arithmetic.
func (s Sample) Line() string {
	buf := make([]byte, 0, 80)
	buf = strconv.AppendInt(buf, int64(s.Kind), 10)
	for _, v := range s.Values {
		buf = append(buf, ',')
		buf = strconv.AppendFloat(buf, float64(v), 'g', -1, 32)
	}
	buf = append(buf, ',')
	buf = strconv.AppendInt(buf, s.Timestamp, 10)
	buf = strconv.AppendInt(buf, s.UnixTimeMillis, 10)
	buf = append(buf, "000000\n"...)
	return string(buf)
}
