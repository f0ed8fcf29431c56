package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/imu_recorder/internal/imu"
)

func TestBufferFIFO(t *testing.T) {
	var b Buffer

	_, ok := b.Pop()
	require.False(t, ok, "empty buffer pops nothing")
	assert.Equal(t, 0, b.Len())

	for i := int64(1); i <= 3; i++ {
		b.Push(imu.Sample{Timestamp: i, Kind: imu.Accelerometer})
	}
	assert.Equal(t, 3, b.Len())

	newest, ok := b.Newest()
	require.True(t, ok)
	assert.Equal(t, int64(3), newest.Timestamp)

	for i := int64(1); i <= 3; i++ {
		s, ok := b.Pop()
		require.True(t, ok)
		assert.Equal(t, i, s.Timestamp, "samples come out in arrival order")
	}
	_, ok = b.Pop()
	assert.False(t, ok)
}

func TestBufferReusableAfterDrain(t *testing.T) {
	var b Buffer
	b.Push(imu.Sample{Timestamp: 1})
	_, _ = b.Pop()

	b.Push(imu.Sample{Timestamp: 2})
	s, ok := b.Pop()
	require.True(t, ok)
	assert.Equal(t, int64(2), s.Timestamp)
}
