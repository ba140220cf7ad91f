package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/geotools/geotools-go/cmd/compass/interactive"
	"github.com/geotools/geotools-go/pkg/bearing"
	"github.com/geotools/geotools-go/pkg/feed"
	"github.com/geotools/geotools-go/pkg/log"
	"github.com/geotools/geotools-go/pkg/orientation"
	"github.com/geotools/geotools-go/pkg/replay"
	"github.com/geotools/geotools-go/pkg/terrain"
	"github.com/geotools/geotools-go/pkg/version"
)

// openTrace returns the trace logger for cfg and a function closing it.
// At debug level trace events are mirrored to slog.
func openTrace(cfg *Config, logger *slog.Logger) (log.Logger, func(), error) {
	var loggers []log.Logger
	closeFn := func() {}

	if cfg.Trace != "" {
		fl, err := log.NewFileLogger(cfg.Trace)
		if err != nil {
			return nil, nil, fmt.Errorf("open trace: %w", err)
		}
		loggers = append(loggers, fl)
		closeFn = func() {
			if err := fl.Close(); err != nil {
				logger.Warn("closing trace failed", "path", fl.Path(), "error", err)
				return
			}
			logger.Info("trace written", "path", fl.Path(), "events", fl.Count())
		}
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		loggers = append(loggers, log.NewSlogAdapter(logger))
	}

	if len(loggers) == 0 {
		return log.NoopLogger{}, closeFn, nil
	}
	return log.NewMultiLogger(loggers...), closeFn, nil
}

func newSensor(cfg *Config, p orientation.Platform, logger *slog.Logger, tracer log.Logger) (*bearing.Sensor, error) {
	bc, err := cfg.bearingConfig()
	if err != nil {
		return nil, err
	}
	opts := []bearing.Option{bearing.WithLogger(logger), bearing.WithTraceLogger(tracer)}
	if cfg.ID != "" {
		opts = append(opts, bearing.WithID(cfg.ID))
	}
	return bearing.New(p, bc, opts...)
}

// startFeed serves and optionally advertises the sensor's state feed.
// The returned function stops both.
func startFeed(ctx context.Context, cfg *Config, sensor *bearing.Sensor, logger *slog.Logger) (func(), error) {
	if cfg.FeedAddress == "" {
		return func() {}, nil
	}

	srv, err := feed.NewServer(sensor, feed.ServerConfig{Address: cfg.FeedAddress, Logger: logger})
	if err != nil {
		return nil, err
	}
	if err := srv.Start(ctx); err != nil {
		return nil, err
	}

	if !cfg.Advertise {
		return func() { _ = srv.Stop() }, nil
	}

	adv := feed.NewAdvertiser(feed.AdvertiserConfig{Interface: cfg.Interface})
	info := feed.AdvertiseInfo{
		SensorID: sensor.ID(),
		Version:  version.FeedFormat,
		Kind:     sensor.Kind().String(),
		Port:     srv.Port(),
	}
	if err := adv.Advertise(info); err != nil {
		_ = srv.Stop()
		return nil, err
	}
	logger.Info("feed advertised", "instance", info.InstanceName(), "service", feed.ServiceType, "port", info.Port)

	return func() {
		adv.Stop()
		_ = srv.Stop()
	}, nil
}

func runScenario(ctx context.Context, w io.Writer, cfg *Config) (bool, error) {
	logger := newLogger(os.Stderr, cfg.LogLevel)

	sc, err := replay.LoadScenario(cfg.Scenario)
	if err != nil {
		return false, err
	}

	tracer, closeTrace, err := openTrace(cfg, logger)
	if err != nil {
		return false, err
	}
	defer closeTrace()

	opts := []replay.RunnerOption{replay.WithLogger(logger), replay.WithTraceLogger(tracer)}
	if cfg.ID != "" {
		opts = append(opts, replay.WithSensorID(cfg.ID))
	}
	res, err := replay.NewRunner(opts...).Run(ctx, sc)
	if err != nil {
		return false, err
	}

	printResult(w, res)
	return res.Passed(), nil
}

func printResult(w io.Writer, res *replay.Result) {
	fmt.Fprintf(w, "Scenario: %s (sensor %s, %v simulated)\n", res.Scenario, res.SensorID, res.Duration)
	for _, p := range res.States {
		fmt.Fprintf(w, "  %8v  %s\n", p.At, p.State)
	}
	if res.Passed() {
		fmt.Fprintln(w, "PASS")
		return
	}
	for _, f := range res.Failures {
		fmt.Fprintf(w, "  FAIL %s\n", f)
	}
	fmt.Fprintf(w, "FAIL (%d expectation(s))\n", len(res.Failures))
}

func runReplay(ctx context.Context, w io.Writer, cfg *Config) error {
	logger := newLogger(os.Stderr, cfg.LogLevel)

	tr, err := replay.LoadTrace(cfg.Replay, "")
	if err != nil {
		return err
	}
	logger.Info("replaying trace", "sensor_id", tr.SensorID, "kind", tr.Kind, "events", len(tr.Events), "duration", tr.Duration())

	tracer, closeTrace, err := openTrace(cfg, logger)
	if err != nil {
		return err
	}
	defer closeTrace()

	tp := replay.NewTracePlatform(tr)
	sensor, err := newSensor(cfg, tp.Platform(), logger, tracer)
	if err != nil {
		return err
	}
	defer sensor.Close()

	sensor.Subscribe(func(st bearing.State) {
		fmt.Fprintf(w, "%s\n", st)
	})

	stopFeed, err := startFeed(ctx, cfg, sensor, logger)
	if err != nil {
		return err
	}
	defer stopFeed()

	if tr.Kind == orientation.KindGated {
		sensor.RequestPermission(ctx)
	}

	n, err := tp.Play(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err := sensor.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintf(w, "Replayed %d of %d event(s); final state %s\n", n, len(tr.Events), sensor.State())
	return nil
}

func runInteractive(ctx context.Context, cancel context.CancelFunc, cfg *Config) error {
	shell, err := interactive.NewShell()
	if err != nil {
		return err
	}
	logger := newLogger(shell.Stderr(), cfg.LogLevel)

	tracer, closeTrace, err := openTrace(cfg, logger)
	if err != nil {
		return err
	}
	defer closeTrace()

	var (
		platform *replay.Platform
		gated    *replay.GatedPlatform
		target   orientation.Platform
	)
	if cfg.Platform == "gated" {
		gated = replay.NewGatedPlatform(replay.PermissionAsk)
		target = gated
	} else {
		platform = replay.NewPlatform()
		target = platform
	}

	sensor, err := newSensor(cfg, target, logger, tracer)
	if err != nil {
		return err
	}
	defer sensor.Close()

	stopFeed, err := startFeed(ctx, cfg, sensor, logger)
	if err != nil {
		return err
	}
	defer stopFeed()

	fmt.Fprintln(shell.Stdout(), version.Banner("compass"))
	fmt.Fprintf(shell.Stdout(), "Sensor %s on a %s platform\n", sensor.ID(), sensor.Kind())

	shell.Run(ctx, cancel, interactive.NewSession(ctx, sensor, platform, gated, shell.Stdout()))
	return nil
}

func runWatch(ctx context.Context, w io.Writer, cfg *Config) error {
	logger := newLogger(os.Stderr, cfg.LogLevel)

	addr := cfg.Watch
	if addr == "browse" {
		found, err := browseFeed(ctx, cfg.Interface, logger)
		if err != nil {
			return err
		}
		addr = found
	}

	client, err := feed.Dial(ctx, addr)
	if err != nil {
		return err
	}
	defer client.Close()
	stop := context.AfterFunc(ctx, func() { _ = client.Close() })
	defer stop()

	logger.Info("watching feed", "addr", client.RemoteAddr().String())
	for {
		snap, err := client.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		fmt.Fprintf(w, "%s %s %s\n", snap.Timestamp.Format("15:04:05.000"), snap.SensorID, snap)
	}
}

// browseFeed returns the address of the first compatible feed found.
func browseFeed(ctx context.Context, iface string, logger *slog.Logger) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Info("browsing for feeds", "service", feed.ServiceType)
	browser, err := feed.Browse(ctx, iface, logger)
	if err != nil {
		return "", err
	}
	for svc := range browser.Services() {
		if !version.FeedCompatible(svc.Info.Version) {
			logger.Warn("skipping incompatible feed", "instance", svc.Instance, "version", svc.Info.Version)
			continue
		}
		logger.Info("found feed", "instance", svc.Instance, "sensor_id", svc.Info.SensorID, "addr", svc.Addr())
		return svc.Addr(), nil
	}
	if err := browser.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("no feed found: %w", ctx.Err())
}

func runHeightmap(w io.Writer, cfg *Config) error {
	img, err := terrain.Load(cfg.Heightmap)
	if err != nil {
		return err
	}
	plane, err := terrain.NewPlane(img, cfg.Bounds, terrain.DefaultPlaneWidth, cfg.Segments, cfg.Scale)
	if err != nil {
		return err
	}
	b, g := img.Bounds(), plane.Grid
	lo, hi := g.Range()

	fmt.Fprintf(w, "Image:      %dx%d\n", b.Dx(), b.Dy())
	fmt.Fprintf(w, "Segments:   %dx%d (%d vertices)\n", g.SegX, g.SegY, len(g.Elevations))
	fmt.Fprintf(w, "Plane:      %.0f x %.1f\n", plane.Width, plane.Height)
	fmt.Fprintf(w, "Bounds:     lat %.6f .. %.6f, lng %.6f .. %.6f\n",
		plane.Bounds.MinLat, plane.Bounds.MaxLat, plane.Bounds.MinLng, plane.Bounds.MaxLng)
	fmt.Fprintf(w, "Elevation:  %.0f .. %.0f (scale %.0f)\n", lo, hi, cfg.Scale)

	if cfg.At == "" {
		return nil
	}
	lat, lng, err := parsePoint(cfg.At)
	if err != nil {
		return err
	}
	x, y, err := plane.Position(lat, lng)
	if err != nil {
		return err
	}
	e, err := plane.ElevationAt(lat, lng)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Location:   %.6f,%.6f -> (%.1f, %.1f) elevation %.0f\n", lat, lng, x, y, e)
	return nil
}
