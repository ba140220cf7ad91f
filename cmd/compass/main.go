// Command compass is a bearing sensor simulator.
//
// It drives the bearing state machine from a scripted scenario, a recorded
// trace or an interactive shell, and can publish the sensor's states as a
// TCP feed announced over mDNS.
//
// Usage:
//
//	compass [flags]
//
// Modes (choose one; the default is -interactive):
//
//	-scenario file.yaml   Run a scenario on a simulated clock and report
//	-replay file.ctrace   Replay the orientation events of a trace
//	-interactive          Start the command shell
//	-watch addr|browse    Print the snapshots of a remote feed
//	-heightmap file       Sample a terrain heightmap and print its summary;
//	                      -bounds sets its extent, -at looks up a location
//
// Examples:
//
//	# Check a scenario in CI
//	compass -scenario testdata/denied.yaml
//
//	# Shell on an ungated platform, recording a trace and serving a feed
//	compass -platform ungated -trace run.ctrace -feed :7878 -advertise
//
//	# Follow the first feed found on the network
//	compass -watch browse
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/geotools/geotools-go/pkg/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := defaultConfig()
	fs := newFlagSet(&cfg)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if cfg.ShowVersion {
		fmt.Println(version.Banner("compass"))
		return 0
	}

	if cfg.ConfigFile != "" {
		fc, err := loadFileConfig(cfg.ConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		explicit := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		cfg.applyFile(fc, explicit)
	}

	if err := cfg.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch {
	case cfg.Heightmap != "":
		err = runHeightmap(os.Stdout, &cfg)
	case cfg.Watch != "":
		err = runWatch(ctx, os.Stdout, &cfg)
	case cfg.Scenario != "":
		var passed bool
		passed, err = runScenario(ctx, os.Stdout, &cfg)
		if err == nil && !passed {
			return 1
		}
	case cfg.Replay != "":
		err = runReplay(ctx, os.Stdout, &cfg)
	default:
		err = runInteractive(ctx, cancel, &cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newFlagSet(cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("compass", flag.ContinueOnError)

	fs.StringVar(&cfg.ConfigFile, "config", "", "Configuration file path (YAML)")
	fs.StringVar(&cfg.Scenario, "scenario", "", "Run a scenario file and exit")
	fs.StringVar(&cfg.Replay, "replay", "", "Replay the orientation events of a trace file")
	fs.StringVar(&cfg.Watch, "watch", "", "Print snapshots from a feed address, or 'browse' to find one via mDNS")
	fs.StringVar(&cfg.Heightmap, "heightmap", "", "Sample a heightmap image and print a summary")
	fs.BoolVar(&cfg.Interactive, "interactive", false, "Start the command shell (default mode)")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Print the version and exit")

	fs.StringVar(&cfg.ID, "id", cfg.ID, "Sensor ID (random if empty)")
	fs.StringVar(&cfg.Platform, "platform", cfg.Platform, "Simulated platform: gated, ungated")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Silence deadline after a grant")
	fs.DurationVar(&cfg.Throttle, "throttle", cfg.Throttle, "Minimum spacing of bearing updates")
	fs.StringVar(&cfg.Smoothing, "smoothing", cfg.Smoothing, "Bearing smoothing: latest, average")
	fs.StringVar(&cfg.Trace, "trace", cfg.Trace, "Write a CBOR trace of the sensor to this file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")

	fs.StringVar(&cfg.FeedAddress, "feed", cfg.FeedAddress, "Serve the state feed on this address (e.g. :7878)")
	fs.BoolVar(&cfg.Advertise, "advertise", cfg.Advertise, "Announce the feed via mDNS")
	fs.StringVar(&cfg.Interface, "iface", cfg.Interface, "Network interface for mDNS (all if empty)")

	fs.IntVar(&cfg.Segments, "segments", cfg.Segments, "Heightmap segments across")
	fs.Float64Var(&cfg.Scale, "scale", cfg.Scale, "Heightmap displacement scale")
	fs.Func("bounds", "Heightmap extent as minLat,maxLat,minLng,maxLng", func(s string) error {
		b, err := parseBounds(s)
		if err != nil {
			return err
		}
		cfg.Bounds = b
		return nil
	})
	fs.StringVar(&cfg.At, "at", "", "Print the position and elevation of lat,lng on the heightmap")

	return fs
}
