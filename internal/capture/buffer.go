package capture

import "github.com/relabs-tech/imu_recorder/internal/imu"

// interpolationTimeResolution is the window, in nanoseconds, within which a
// future alignment policy would pair an accelerometer sample with a gyroscope
// sample directly instead of interpolating between neighbors.
const interpolationTimeResolution = 500

// Buffer is an ordered FIFO of samples from one sensor stream. Samples are
// currently written through immediately, so it never grows past a handful of
// entries; it exists as the staging point where an interpolation policy
// would hold samples back before eviction.
//
// A Buffer is confined to the ingest worker goroutine and needs no locking.
type Buffer struct {
	samples []imu.Sample
}

// Push appends a sample at the tail.
func (b *Buffer) Push(s imu.Sample) {
	b.samples = append(b.samples, s)
}

// Pop removes and returns the oldest sample. The second return is false
// when the buffer is empty.
func (b *Buffer) Pop() (imu.Sample, bool) {
	if len(b.samples) == 0 {
		return imu.Sample{}, false
	}
	s := b.samples[0]
	b.samples = b.samples[1:]
	if len(b.samples) == 0 {
		b.samples = nil // release the backing array between bursts
	}
	return s, true
}

// Len reports how many samples are held.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Newest returns the most recently pushed sample without removing it.
func (b *Buffer) Newest() (imu.Sample, bool) {
	if len(b.samples) == 0 {
		return imu.Sample{}, false
	}
	return b.samples[len(b.samples)-1], true
}
