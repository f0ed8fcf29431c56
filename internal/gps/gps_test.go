package gps

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixLine(t *testing.T) {
	f := Fix{
		UnixTimeMillis: 1700000000123,
		Latitude:       48.1173,
		Longitude:      11.516667,
		SpeedKnots:     22.4,
		CourseDeg:      84.4,
		Validity:       "A",
	}
	assert.Equal(t, "1700000000123,48.117300,11.516667,22.40,84.40,A\n", f.Line())
}

func TestFixHeaderMatchesLine(t *testing.T) {
	headerCols := strings.Split(strings.TrimSuffix(FixHeader, "\n"), ",")
	lineCols := strings.Split(strings.TrimSuffix(Fix{Validity: "V"}.Line(), "\n"), ",")
	assert.Len(t, lineCols, len(headerCols))
}

func TestNopProvider(t *testing.T) {
	var p NopProvider
	require.NoError(t, p.Register())
	p.Unregister()
	p.Unregister()
}

func TestSerialProviderUnregisterWithoutRegister(t *testing.T) {
	p := &SerialProvider{PortName: "/dev/null", BaudRate: 9600}
	p.Unregister() // must be a no-op
}

func TestReadLoopParsesRMC(t *testing.T) {
	// Standard RMC example sentence with a valid checksum, surrounded by
	// noise the loop must skip.
	input := strings.Join([]string{
		"",
		"garbage without dollar",
		"$GPGGA,bogus*00",
		"$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A",
	}, "\r\n") + "\r\n"

	var buf bytes.Buffer
	p := &SerialProvider{}
	p.logW = bufio.NewWriter(&buf)

	done := make(chan struct{})
	p.readLoop(strings.NewReader(input), done)
	<-done
	require.NoError(t, p.logW.Flush())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1)

	fields := strings.Split(lines[0], ",")
	require.Len(t, fields, 6)
	assert.Equal(t, "48.117300", fields[1])
	assert.Equal(t, "11.516667", fields[2])
	assert.Equal(t, "22.40", fields[3])
	assert.Equal(t, "84.40", fields[4])
	assert.Equal(t, "A", fields[5])
}
