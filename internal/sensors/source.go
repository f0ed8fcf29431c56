package sensors

import (
	"fmt"
	"time"

	"github.com/relabs-tech/imu_recorder/internal/imu"
)

// Event is one raw reading delivered by a Source. The timestamp is in
// nanoseconds on the source's monotonic clock.
type Event struct {
	Kind      imu.Kind
	Values    [3]float32
	Timestamp int64
}

// Source produces accelerometer and/or gyroscope events asynchronously.
// Implementations: the mock generator and the SPI-attached MPU-9250.
type Source interface {
	// Kinds lists which sensor kinds this source delivers.
	Kinds() []imu.Kind

	// Start begins producing events at the given rate hint, sending them
	// to out. It returns immediately; production happens on a goroutine
	// owned by the source.
	Start(rate Rate, out chan<- Event) error

	// Stop halts production and waits until no more events will be sent.
	// Safe to call more than once, or without a prior Start.
	Stop()
}

// Rate is the requested delivery rate hint. The values mirror the numeric
// preference the host application stores ("0" fastest .. "3" normal).
type Rate int

const (
	RateFastest Rate = 0
	RateGame    Rate = 1
	RateUI      Rate = 2
	RateNormal  Rate = 3
)

// ParseRate maps the configuration string to a Rate. An empty string means
// the fastest available rate.
func ParseRate(s string) (Rate, error) {
	switch s {
	case "", "0":
		return RateFastest, nil
	case "1":
		return RateGame, nil
	case "2":
		return RateUI, nil
	case "3":
		return RateNormal, nil
	}
	return RateFastest, fmt.Errorf("invalid sensor rate %q (want 0-3)", s)
}

// Interval is the polling period a sampled source should use for this hint.
// "Fastest" is bounded by what the bus realistically sustains.
func (r Rate) Interval() time.Duration {
	switch r {
	case RateGame:
		return 20 * time.Millisecond
	case RateUI:
		return 60 * time.Millisecond
	case RateNormal:
		return 200 * time.Millisecond
	}
	return 5 * time.Millisecond
}

func (r Rate) String() string {
	switch r {
	case RateFastest:
		return "fastest"
	case RateGame:
		return "game"
	case RateUI:
		return "ui"
	case RateNormal:
		return "normal"
	}
	return fmt.Sprintf("rate(%d)", int(r))
}
