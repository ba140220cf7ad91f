package bearing

import (
	"errors"
	"fmt"
	"time"
)

// Default timing values.
const (
	// DefaultTimeout is how long after a grant the first sample may take.
	DefaultTimeout = 150 * time.Millisecond

	// DefaultThrottleInterval is the minimum spacing of bearing publishes.
	DefaultThrottleInterval = 150 * time.Millisecond
)

// Configuration errors.
var (
	ErrInvalidTimeout   = errors.New("timeout must not be negative")
	ErrInvalidThrottle  = errors.New("throttle interval must not be negative")
	ErrInvalidSmoothing = errors.New("unknown smoothing mode")
	ErrNilPlatform      = errors.New("platform is nil")
	ErrUnknownName      = errors.New("unknown name")
)

// SmoothingMode selects how accepted samples become bearings.
type SmoothingMode uint8

const (
	// SmoothingLatest publishes the first sample of each throttle window.
	SmoothingLatest SmoothingMode = iota

	// SmoothingAverage publishes the mean of each window's samples,
	// averaged across north without a jump.
	SmoothingAverage
)

// String returns the mode name.
func (m SmoothingMode) String() string {
	switch m {
	case SmoothingLatest:
		return "latest"
	case SmoothingAverage:
		return "average"
	default:
		return "unknown"
	}
}

// ParseSmoothingMode parses "latest" or "average". The empty string
// selects SmoothingLatest.
func ParseSmoothingMode(s string) (SmoothingMode, error) {
	switch s {
	case "", "latest":
		return SmoothingLatest, nil
	case "average":
		return SmoothingAverage, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSmoothing, s)
	}
}

// Config holds the sensor timing. It is fixed once the sensor is built.
type Config struct {
	// Timeout is the deadline for the first sample after a grant.
	// Zero selects DefaultTimeout.
	Timeout time.Duration

	// ThrottleInterval is the minimum spacing of bearing publishes.
	// Zero selects DefaultThrottleInterval.
	ThrottleInterval time.Duration

	// Smoothing selects the sample pipeline.
	Smoothing SmoothingMode
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:          DefaultTimeout,
		ThrottleInterval: DefaultThrottleInterval,
		Smoothing:        SmoothingLatest,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTimeout, c.Timeout)
	}
	if c.ThrottleInterval < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidThrottle, c.ThrottleInterval)
	}
	if c.Smoothing > SmoothingAverage {
		return fmt.Errorf("%w: %d", ErrInvalidSmoothing, c.Smoothing)
	}
	return nil
}

// withDefaults fills zero durations.
func (c Config) withDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ThrottleInterval == 0 {
		c.ThrottleInterval = DefaultThrottleInterval
	}
	return c
}
