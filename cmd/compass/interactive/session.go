// Package interactive provides the command shell of the compass
// simulator.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/geotools/geotools-go/pkg/bearing"
	"github.com/geotools/geotools-go/pkg/orientation"
	"github.com/geotools/geotools-go/pkg/replay"
	"github.com/geotools/geotools-go/pkg/stream"
)

const flushTimeout = 2 * time.Second

// Session executes shell commands against a sensor and the simulated
// platform it listens to.
type Session struct {
	ctx      context.Context
	sensor   *bearing.Sensor
	platform *replay.Platform
	gated    *replay.GatedPlatform
	out      io.Writer

	mu    sync.Mutex
	watch *stream.Subscription
}

// NewSession binds a session to sensor. gated is nil for an ungated
// platform; otherwise platform must be gated.Platform.
func NewSession(ctx context.Context, sensor *bearing.Sensor, platform *replay.Platform, gated *replay.GatedPlatform, out io.Writer) *Session {
	if gated != nil {
		platform = gated.Platform
	}
	return &Session{ctx: ctx, sensor: sensor, platform: platform, gated: gated, out: out}
}

// Exec runs one command line. It returns false when the session should
// end.
func (s *Session) Exec(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "event", "e":
		s.cmdEvent(args)

	case "alpha", "a":
		s.cmdAlpha(args)

	case "heading", "h":
		s.cmdHeading(args)

	case "request", "req":
		s.sensor.RequestPermission(s.ctx)
		s.flush()

	case "grant":
		s.answer(orientation.PermissionResultGranted, nil)

	case "deny":
		s.answer(orientation.PermissionResultDenied, nil)

	case "undecided":
		s.answer(orientation.PermissionResultDefault, nil)

	case "fail":
		s.answer(orientation.PermissionResultDefault, replay.ErrPermissionFailed)

	case "mode":
		s.cmdMode(args)

	case "state", "s":
		fmt.Fprintln(s.out, s.sensor.State())

	case "watch", "w":
		s.cmdWatch(args)

	case "info":
		s.cmdInfo()

	case "quit", "exit", "q":
		s.stopWatch()
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out, `
Compass Simulator Commands:
  Events:
    event [alpha=<deg>] [compass=<deg>] [abs] - Dispatch a raw orientation event
    alpha <deg> [abs]     - Dispatch an alpha reading
    heading <deg>         - Dispatch a compass heading reading

  Permission:
    request               - Ask the platform for permission
    grant | deny          - Answer pending requests (ask mode)
    undecided | fail      - Answer undecided, or fail the request
    mode <mode> [delay]   - Set how requests are answered:
                            ask, granted, denied, default, error, hang

  Sensor:
    state                 - Show the current state
    watch [on|off]        - Print every published state
    info                  - Show sensor and platform details

  General:
    help                  - Show this help
    quit                  - Exit`)
}

func (s *Session) cmdEvent(args []string) {
	var e orientation.Event
	for _, arg := range args {
		key, val, hasVal := strings.Cut(strings.ToLower(arg), "=")
		switch {
		case key == "abs" && !hasVal:
			e.Absolute = true
		case key == "alpha" && hasVal:
			v, ok := s.parseDegrees(val)
			if !ok {
				return
			}
			e.Alpha = &v
		case (key == "compass" || key == "heading") && hasVal:
			v, ok := s.parseDegrees(val)
			if !ok {
				return
			}
			e.CompassHeading = &v
		default:
			fmt.Fprintf(s.out, "Unknown event field: %s\n", arg)
			return
		}
	}
	s.dispatch(e)
}

func (s *Session) cmdAlpha(args []string) {
	if len(args) < 1 || len(args) > 2 || (len(args) == 2 && args[1] != "abs") {
		fmt.Fprintln(s.out, "Usage: alpha <deg> [abs]")
		return
	}
	v, ok := s.parseDegrees(args[0])
	if !ok {
		return
	}
	s.dispatch(orientation.Event{Alpha: &v, Absolute: len(args) == 2})
}

func (s *Session) cmdHeading(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: heading <deg>")
		return
	}
	v, ok := s.parseDegrees(args[0])
	if !ok {
		return
	}
	s.dispatch(orientation.Event{CompassHeading: &v})
}

func (s *Session) parseDegrees(arg string) (float64, bool) {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid angle: %s\n", arg)
		return 0, false
	}
	return v, true
}

func (s *Session) dispatch(e orientation.Event) {
	e.Timestamp = time.Now()
	n := s.platform.Dispatch(e)
	if n == 0 {
		fmt.Fprintln(s.out, "No listeners")
	}
	s.flush()
}

func (s *Session) answer(res orientation.PermissionResult, err error) {
	if s.gated == nil {
		fmt.Fprintln(s.out, "Platform is ungated; there is nothing to answer")
		return
	}
	n := s.gated.Answer(res, err)
	if n == 0 {
		fmt.Fprintln(s.out, "No pending request")
		return
	}
	fmt.Fprintf(s.out, "Answered %d request(s)\n", n)
	s.flush()
}

func (s *Session) cmdMode(args []string) {
	if s.gated == nil {
		fmt.Fprintln(s.out, "Platform is ungated; it has no permission mode")
		return
	}
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintf(s.out, "Usage: mode <mode> [delay]   (current: %s)\n", s.gated.Mode())
		return
	}
	mode, err := replay.ParsePermissionMode(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	var delay time.Duration
	if len(args) == 2 {
		if delay, err = time.ParseDuration(args[1]); err != nil || delay < 0 {
			fmt.Fprintf(s.out, "Invalid delay: %s\n", args[1])
			return
		}
	}
	s.gated.SetMode(mode, delay)
	fmt.Fprintf(s.out, "Permission mode: %s\n", mode)
}

func (s *Session) cmdWatch(args []string) {
	on := true
	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "on":
		case "off":
			on = false
		default:
			fmt.Fprintln(s.out, "Usage: watch [on|off]")
			return
		}
	}

	if !on {
		s.stopWatch()
		fmt.Fprintln(s.out, "Watch off")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watch != nil {
		fmt.Fprintln(s.out, "Already watching")
		return
	}
	s.watch = s.sensor.Subscribe(func(st bearing.State) {
		fmt.Fprintf(s.out, "  -> %s\n", st)
	})
}

func (s *Session) stopWatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watch != nil {
		s.watch.Unsubscribe()
		s.watch = nil
	}
}

func (s *Session) cmdInfo() {
	cfg := s.sensor.Config()
	fmt.Fprintf(s.out, "Sensor:    %s\n", s.sensor.ID())
	fmt.Fprintf(s.out, "Platform:  %s (%d listener(s))\n", s.sensor.Kind(), s.platform.Listeners())
	if s.gated != nil {
		fmt.Fprintf(s.out, "Requests:  %d (%d waiting, mode %s)\n", s.gated.Requests(), s.gated.Waiting(), s.gated.Mode())
	}
	fmt.Fprintf(s.out, "Timeout:   %v\n", cfg.Timeout)
	fmt.Fprintf(s.out, "Throttle:  %v (%s)\n", cfg.ThrottleInterval, cfg.Smoothing)
	fmt.Fprintf(s.out, "State:     %s\n", s.sensor.State())
}

// flush waits for the sensor to process queued work so the next prompt
// shows its effects.
func (s *Session) flush() {
	ctx, cancel := context.WithTimeout(s.ctx, flushTimeout)
	defer cancel()
	_ = s.sensor.Flush(ctx)
}
