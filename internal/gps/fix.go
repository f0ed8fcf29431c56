package gps

import (
	"strconv"
	"strings"
)

// FixHeader is the first line of the fix log.
const FixHeader = "Unix time[millisec],latitude[deg],longitude[deg],speed[knots],course[deg],validity\n"

// Fix represents a single GPS fix taken from an RMC sentence.
type Fix struct {
	UnixTimeMillis int64   `json:"unix_time_ms"`
	Latitude       float64 `json:"lat"`         // decimal degrees
	Longitude      float64 `json:"lon"`         // decimal degrees
	SpeedKnots     float64 `json:"speed_knots"` // speed over ground
	CourseDeg      float64 `json:"course_deg"`  // course over ground
	Validity       string  `json:"validity"`    // "A" (valid) / "V" (void)
}

// Line renders the fix as one CSV record matching FixHeader.
func (f Fix) Line() string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatInt(f.UnixTimeMillis, 10))
	sb.WriteByte(',')
	sb.WriteString(strconv.FormatFloat(f.Latitude, 'f', 6, 64))
	sb.WriteByte(',')
	sb.WriteString(strconv.FormatFloat(f.Longitude, 'f', 6, 64))
	sb.WriteByte(',')
	sb.WriteString(strconv.FormatFloat(f.SpeedKnots, 'f', 2, 64))
	sb.WriteByte(',')
	sb.WriteString(strconv.FormatFloat(f.CourseDeg, 'f', 2, 64))
	sb.WriteByte(',')
	sb.WriteString(f.Validity)
	sb.WriteByte('\n')
	return sb.String()
}
