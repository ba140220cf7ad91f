package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/geotools/geotools-go/pkg/bearing"
	"github.com/geotools/geotools-go/pkg/replay"
	"github.com/geotools/geotools-go/pkg/terrain"
)

// FileConfig is the YAML configuration file. Flags given on the command
// line override its values.
type FileConfig struct {
	ID        string              `yaml:"id,omitempty"`
	Platform  string              `yaml:"platform,omitempty"`
	Sensor    replay.SensorConfig `yaml:"sensor,omitempty"`
	Trace     string              `yaml:"trace,omitempty"`
	LogLevel  string              `yaml:"log_level,omitempty"`
	Feed      FeedConfig          `yaml:"feed,omitempty"`
	Heightmap HeightmapConfig     `yaml:"heightmap,omitempty"`
}

// FeedConfig configures the TCP state feed.
type FeedConfig struct {
	Address   string `yaml:"address,omitempty"`
	Advertise bool   `yaml:"advertise,omitempty"`
	Interface string `yaml:"interface,omitempty"`
}

// HeightmapConfig configures terrain sampling.
type HeightmapConfig struct {
	Segments int             `yaml:"segments,omitempty"`
	Scale    float64         `yaml:"scale,omitempty"`
	Bounds   *terrain.Bounds `yaml:"bounds,omitempty"`
}

// Config is the merged runtime configuration.
type Config struct {
	ConfigFile  string
	Scenario    string
	Replay      string
	Watch       string
	Heightmap   string
	Interactive bool
	ShowVersion bool

	ID        string
	Platform  string
	Timeout   time.Duration
	Throttle  time.Duration
	Smoothing string
	Trace     string
	LogLevel  string

	FeedAddress string
	Advertise   bool
	Interface   string

	Segments int
	Scale    float64
	Bounds   terrain.Bounds
	At       string
}

func defaultConfig() Config {
	return Config{
		Platform:  "gated",
		Timeout:   bearing.DefaultTimeout,
		Throttle:  bearing.DefaultThrottleInterval,
		Smoothing: bearing.SmoothingLatest.String(),
		LogLevel:  "info",
		Segments:  terrain.DefaultSegmentsX,
		Scale:     terrain.DefaultScale,
		Bounds:    terrain.DefaultBounds,
	}
}

// loadFileConfig reads a YAML configuration file.
func loadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// applyFile copies the values set in fc onto c, skipping any field whose
// flag was given explicitly.
func (c *Config) applyFile(fc *FileConfig, explicit map[string]bool) {
	set := func(flag string, apply func()) {
		if !explicit[flag] {
			apply()
		}
	}
	if fc.ID != "" {
		set("id", func() { c.ID = fc.ID })
	}
	if fc.Platform != "" {
		set("platform", func() { c.Platform = fc.Platform })
	}
	if fc.Sensor.Timeout != 0 {
		set("timeout", func() { c.Timeout = fc.Sensor.Timeout })
	}
	if fc.Sensor.Throttle != 0 {
		set("throttle", func() { c.Throttle = fc.Sensor.Throttle })
	}
	if fc.Sensor.Smoothing != "" {
		set("smoothing", func() { c.Smoothing = fc.Sensor.Smoothing })
	}
	if fc.Trace != "" {
		set("trace", func() { c.Trace = fc.Trace })
	}
	if fc.LogLevel != "" {
		set("log-level", func() { c.LogLevel = fc.LogLevel })
	}
	if fc.Feed.Address != "" {
		set("feed", func() { c.FeedAddress = fc.Feed.Address })
	}
	if fc.Feed.Advertise {
		set("advertise", func() { c.Advertise = true })
	}
	if fc.Feed.Interface != "" {
		set("iface", func() { c.Interface = fc.Feed.Interface })
	}
	if fc.Heightmap.Segments != 0 {
		set("segments", func() { c.Segments = fc.Heightmap.Segments })
	}
	if fc.Heightmap.Scale != 0 {
		set("scale", func() { c.Scale = fc.Heightmap.Scale })
	}
	if fc.Heightmap.Bounds != nil {
		set("bounds", func() { c.Bounds = *fc.Heightmap.Bounds })
	}
}

// bearingConfig builds the sensor configuration.
func (c *Config) bearingConfig() (bearing.Config, error) {
	return replay.SensorConfig{
		Timeout:   c.Timeout,
		Throttle:  c.Throttle,
		Smoothing: c.Smoothing,
	}.BearingConfig()
}

func (c *Config) validate() error {
	if c.Platform != "gated" && c.Platform != "ungated" {
		return fmt.Errorf("platform must be gated or ungated, got %q", c.Platform)
	}
	if _, err := c.bearingConfig(); err != nil {
		return err
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Advertise && c.FeedAddress == "" {
		return errors.New("-advertise requires -feed")
	}
	if err := c.Bounds.Validate(); err != nil {
		return err
	}
	if c.At != "" {
		if c.Heightmap == "" {
			return errors.New("-at requires -heightmap")
		}
		if _, _, err := parsePoint(c.At); err != nil {
			return err
		}
	}
	modes := 0
	for _, on := range []bool{c.Scenario != "", c.Replay != "", c.Watch != "", c.Heightmap != "", c.Interactive} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return errors.New("choose one of -scenario, -replay, -watch, -heightmap or -interactive")
	}
	return nil
}

// parseFloats parses exactly n comma-separated numbers.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated values, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		out[i] = v
	}
	return out, nil
}

// parseBounds parses "minLat,maxLat,minLng,maxLng".
func parseBounds(s string) (terrain.Bounds, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return terrain.Bounds{}, fmt.Errorf("bounds: %w", err)
	}
	return terrain.Bounds{MinLat: v[0], MaxLat: v[1], MinLng: v[2], MaxLng: v[3]}, nil
}

// parsePoint parses "lat,lng".
func parsePoint(s string) (lat, lng float64, err error) {
	v, err := parseFloats(s, 2)
	if err != nil {
		return 0, 0, fmt.Errorf("location: %w", err)
	}
	return v[0], v[1], nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, _ := parseLevel(level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
