package replay

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/geotools/geotools-go/pkg/bearing"
	"github.com/geotools/geotools-go/pkg/orientation"
)

// Scenario is a scripted run against a simulated platform.
type Scenario struct {
	// Name identifies the scenario in reports.
	Name string `yaml:"name"`

	// Description is free text.
	Description string `yaml:"description,omitempty"`

	// Platform is "gated" or "ungated".
	Platform string `yaml:"platform"`

	// Permission is how a gated platform answers requests:
	// granted, denied, default, error or hang. Defaults to granted.
	Permission string `yaml:"permission,omitempty"`

	// PermissionDelay is how long a gated platform takes to answer.
	PermissionDelay time.Duration `yaml:"permission_delay,omitempty"`

	// Sensor holds the sensor timing.
	Sensor SensorConfig `yaml:"sensor,omitempty"`

	// Steps run in order; their offsets must not decrease.
	Steps []Step `yaml:"steps"`
}

// SensorConfig is the YAML form of bearing.Config.
type SensorConfig struct {
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	Throttle  time.Duration `yaml:"throttle,omitempty"`
	Smoothing string        `yaml:"smoothing,omitempty"`
}

// BearingConfig converts c, filling defaults.
func (c SensorConfig) BearingConfig() (bearing.Config, error) {
	mode, err := bearing.ParseSmoothingMode(c.Smoothing)
	if err != nil {
		return bearing.Config{}, err
	}
	cfg := bearing.Config{
		Timeout:          c.Timeout,
		ThrottleInterval: c.Throttle,
		Smoothing:        mode,
	}
	return cfg, cfg.Validate()
}

// Step is one scripted action. Exactly one of Event, Request and Expect
// is set.
type Step struct {
	// At is the offset from the start of the run.
	At time.Duration `yaml:"at"`

	Event   *EventSpec `yaml:"event,omitempty"`
	Request bool       `yaml:"request,omitempty"`
	Expect  *Expect    `yaml:"expect,omitempty"`
}

// EventSpec is the YAML form of an orientation event.
type EventSpec struct {
	Alpha          *float64 `yaml:"alpha,omitempty"`
	Absolute       bool     `yaml:"absolute,omitempty"`
	CompassHeading *float64 `yaml:"compass_heading,omitempty"`
}

// Event converts e into an orientation event stamped with ts.
func (e EventSpec) Event(ts time.Time) orientation.Event {
	ev := orientation.Event{Absolute: e.Absolute, Timestamp: ts}
	if e.Alpha != nil {
		ev.Alpha = orientation.Float(*e.Alpha)
	}
	if e.CompassHeading != nil {
		ev.CompassHeading = orientation.Float(*e.CompassHeading)
	}
	return ev
}

// Expect checks the sensor state. Empty fields are not checked.
type Expect struct {
	Status     string   `yaml:"status,omitempty"`
	Permission string   `yaml:"permission,omitempty"`
	Bearing    *float64 `yaml:"bearing,omitempty"`

	// NoBearing requires the bearing to be unset.
	NoBearing bool `yaml:"no_bearing,omitempty"`

	// Tolerance is the allowed bearing error in degrees.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// Check returns one message per mismatch between x and s.
func (x Expect) Check(s bearing.State) []string {
	var out []string
	if x.Status != "" && s.Status.String() != x.Status {
		out = append(out, fmt.Sprintf("status: expected %s, got %s", x.Status, s.Status))
	}
	if x.Permission != "" && s.Permission.String() != x.Permission {
		out = append(out, fmt.Sprintf("permission: expected %s, got %s", x.Permission, s.Permission))
	}

	b, ok := s.BearingValue()
	switch {
	case x.NoBearing && ok:
		out = append(out, fmt.Sprintf("bearing: expected unset, got %.2f", b))
	case x.Bearing != nil && !ok:
		out = append(out, fmt.Sprintf("bearing: expected %.2f, got unset", *x.Bearing))
	case x.Bearing != nil && angleDiff(b, *x.Bearing) > x.Tolerance:
		out = append(out, fmt.Sprintf("bearing: expected %.2f, got %.2f", *x.Bearing, b))
	}
	return out
}

// angleDiff returns the absolute angular distance between a and b.
func angleDiff(a, b float64) float64 {
	d := math.Abs(orientation.Normalize(a) - orientation.Normalize(b))
	return math.Min(d, orientation.FullCircle-d)
}

// LoadError describes a scenario that could not be loaded.
type LoadError struct {
	// File is the scenario path, if loaded from a file.
	File string

	// Step is the 1-based step number, or 0 for scenario-level errors.
	Step int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Step > 0 {
		msg = fmt.Sprintf("step %d: %s", e.Step, msg)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File != "" {
		return e.File + ": " + msg
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseScenario parses and validates a scenario from YAML bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	sc, err := ParseScenario(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return sc, nil
}

// Kind returns the platform family of the scenario.
func (sc *Scenario) Kind() orientation.Kind {
	if sc.Platform == "gated" {
		return orientation.KindGated
	}
	return orientation.KindUngated
}

// Validate checks the scenario for structural errors.
func (sc *Scenario) Validate() error {
	if sc.Name == "" {
		return &LoadError{Message: "scenario name is required"}
	}
	if sc.Platform != "gated" && sc.Platform != "ungated" {
		return &LoadError{Message: fmt.Sprintf("platform must be gated or ungated, got %q", sc.Platform)}
	}
	mode, err := ParsePermissionMode(sc.Permission)
	if err != nil {
		return &LoadError{Message: "invalid permission", Cause: err}
	}
	if mode == PermissionAsk {
		return &LoadError{Message: "permission mode ask needs an interactive answer and cannot be scripted"}
	}
	if sc.PermissionDelay < 0 {
		return &LoadError{Message: "permission_delay must not be negative"}
	}
	if _, err := sc.Sensor.BearingConfig(); err != nil {
		return &LoadError{Message: "invalid sensor config", Cause: err}
	}
	if len(sc.Steps) == 0 {
		return &LoadError{Message: "scenario must have at least one step"}
	}

	var prev time.Duration
	for i, st := range sc.Steps {
		n := i + 1
		if st.At < prev {
			return &LoadError{Step: n, Message: fmt.Sprintf("offset %v is before previous step at %v", st.At, prev)}
		}
		prev = st.At

		actions := 0
		if st.Event != nil {
			actions++
		}
		if st.Request {
			actions++
		}
		if st.Expect != nil {
			actions++
		}
		if actions != 1 {
			return &LoadError{Step: n, Message: "exactly one of event, request or expect is required"}
		}

		if x := st.Expect; x != nil {
			if x.Status != "" {
				if _, err := bearing.ParseStatus(x.Status); err != nil {
					return &LoadError{Step: n, Message: "invalid expected status", Cause: err}
				}
			}
			if x.Permission != "" {
				if _, err := bearing.ParsePermission(x.Permission); err != nil {
					return &LoadError{Step: n, Message: "invalid expected permission", Cause: err}
				}
			}
			if x.NoBearing && x.Bearing != nil {
				return &LoadError{Step: n, Message: "bearing and no_bearing are mutually exclusive"}
			}
			if x.Tolerance < 0 {
				return &LoadError{Step: n, Message: "tolerance must not be negative"}
			}
		}
	}
	return nil
}
