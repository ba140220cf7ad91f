package bearing

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Timeout != 150*time.Millisecond {
		t.Errorf("Timeout = %v, want 150ms", cfg.Timeout)
	}
	if cfg.ThrottleInterval != 150*time.Millisecond {
		t.Errorf("ThrottleInterval = %v, want 150ms", cfg.ThrottleInterval)
	}
	if cfg.Smoothing != SmoothingLatest {
		t.Errorf("Smoothing = %v, want latest", cfg.Smoothing)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"Zero", Config{}, nil},
		{"NegativeTimeout", Config{Timeout: -time.Millisecond}, ErrInvalidTimeout},
		{"NegativeThrottle", Config{ThrottleInterval: -time.Millisecond}, ErrInvalidThrottle},
		{"UnknownSmoothing", Config{Smoothing: 7}, ErrInvalidSmoothing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{Timeout: time.Second}.withDefaults()

	if cfg.Timeout != time.Second {
		t.Errorf("Timeout = %v, want 1s", cfg.Timeout)
	}
	if cfg.ThrottleInterval != DefaultThrottleInterval {
		t.Errorf("ThrottleInterval = %v, want default", cfg.ThrottleInterval)
	}
}

func TestParseSmoothingMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SmoothingMode
		wantErr bool
	}{
		{"", SmoothingLatest, false},
		{"latest", SmoothingLatest, false},
		{"average", SmoothingAverage, false},
		{"median", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSmoothingMode(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidSmoothing) {
				t.Errorf("ParseSmoothingMode(%q) error = %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseSmoothingMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}
