package capture

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/imu_recorder/internal/imu"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriterHeaderBothSensors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	w := &Writer{}
	require.NoError(t, w.Open(path))
	w.WriteHeader(true, true)
	require.NoError(t, w.Close())

	assert.Equal(t, imu.Header, readLog(t, path))
}

func TestWriterFallbackWarning(t *testing.T) {
	tests := []struct {
		name     string
		hasAccel bool
		hasGyro  bool
	}{
		{"no gyroscope", true, false},
		{"no accelerometer", false, true},
		{"neither", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "run.csv")
			w := &Writer{}
			require.NoError(t, w.Open(path))
			w.WriteHeader(tt.hasAccel, tt.hasGyro)
			require.NoError(t, w.Close())

			got := readLog(t, path)
			assert.NotContains(t, got, imu.Header)
			assert.Contains(t, got, "The device may not have a gyroscope or an accelerometer!")
			assert.Contains(t, got, "Has Gyroscope? "+yesNo(tt.hasGyro))
			assert.Contains(t, got, "Has Accelerometer? "+yesNo(tt.hasAccel))
		})
	}
}

func TestWriterOpenFailure(t *testing.T) {
	w := &Writer{}
	err := w.Open(filepath.Join(t.TempDir(), "no", "such", "dir", "run.csv"))
	require.Error(t, err)
	assert.False(t, w.Recording())
}

func TestWriterDiscardsWhileIdle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	w := &Writer{}
	require.NoError(t, w.Open(path))

	// No header written yet, so the writer is not recording.
	w.Append(imu.Sample{Kind: imu.Accelerometer, Timestamp: 1, UnixTimeMillis: 2})
	w.WriteHeader(true, true)
	w.Append(imu.Sample{Kind: imu.Accelerometer, Timestamp: 3, UnixTimeMillis: 4})
	require.NoError(t, w.Close())

	// Records after Close are dropped too.
	w.Append(imu.Sample{Kind: imu.Gyroscope, Timestamp: 5, UnixTimeMillis: 6})

	got := readLog(t, path)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1,0,0,0,34000000", lines[1])
}

func TestWriterAppendConcurrentAtomicity(t *testing.T) {
	const perSensor = 500

	path := filepath.Join(t.TempDir(), "run.csv")
	w := &Writer{}
	require.NoError(t, w.Open(path))
	w.WriteHeader(true, true)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < perSensor; i++ {
			w.Append(imu.Sample{
				Kind:           imu.Accelerometer,
				Timestamp:      int64(i),
				UnixTimeMillis: 1000,
				Values:         [3]float32{0.1, 0.2, 9.8},
			})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < perSensor; i++ {
			w.Append(imu.Sample{
				Kind:           imu.Gyroscope,
				Timestamp:      int64(i),
				UnixTimeMillis: 1000,
				Values:         [3]float32{-0.5, 0.25, 1},
			})
		}
	}()
	wg.Wait()
	require.NoError(t, w.Close())

	got := readLog(t, path)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 1+2*perSensor, "every event appended exactly one line")

	var accel, gyro int
	for _, line := range lines[1:] {
		require.Equal(t, 4, strings.Count(line, ","), "no partially interleaved line: %q", line)
		switch line[0] {
		case '1':
			accel++
			assert.Equal(t, "0.1,0.2,9.8", strings.SplitN(line, ",", 2)[1][:11])
		case '2':
			gyro++
		default:
			t.Fatalf("unexpected discriminant in line %q", line)
		}
	}
	assert.Equal(t, perSensor, accel)
	assert.Equal(t, perSensor, gyro)
}

func TestWriterLogParsesAsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	w := &Writer{}
	require.NoError(t, w.Open(path))
	w.WriteHeader(true, true)
	w.Append(imu.Sample{Kind: imu.Accelerometer, Timestamp: 1000, UnixTimeMillis: 5000, Values: [3]float32{0.1, 0.2, 9.8}})
	w.Append(imu.Sample{Kind: imu.Gyroscope, Timestamp: 1200, UnixTimeMillis: 5001, Values: [3]float32{0.01, 0.02, 0.03}})
	require.NoError(t, w.Close())

	content := readLog(t, path)
	require.True(t, strings.HasPrefix(content, imu.Header))

	header := csv.NewReader(strings.NewReader(imu.Header))
	cols, err := header.Read()
	require.NoError(t, err)
	assert.Len(t, cols, 8, "header declares 8 columns")

	// Data rows carry 5 fields: the discriminant, three values, and the
	// concatenated timestamp pair.
	body := csv.NewReader(strings.NewReader(strings.TrimPrefix(content, imu.Header)))
	rows, err := body.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Len(t, row, 5)
	}
	assert.Equal(t, []string{"1", "0.1", "0.2", "9.8", "10005000000000"}, rows[0])
}

func TestWriterCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	w := &Writer{}
	require.NoError(t, w.Open(path))
	w.WriteHeader(true, true)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second close is a no-op")
	require.NoError(t, w.Flush(), "flush after close is a no-op")
}
