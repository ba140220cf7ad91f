package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/geotools/geotools-go/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	Sensors          map[string]*SensorStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// SensorStats holds statistics for a single sensor.
type SensorStats struct {
	Platform      string
	FirstSeen     time.Time
	LastSeen      time.Time
	Events        int
	Dispositions  map[log.Disposition]int
	Steps         map[log.PermissionStep]int
	StateChanges  int
	Cycles        uint64
	LastStatus    string
	LastPerm      string
	LastBearing   *float64
	BearingUpdate int
}

func newStats() *Stats {
	return &Stats{
		EventsByCategory: make(map[log.Category]int),
		Sensors:          make(map[string]*SensorStats),
	}
}

// add folds one event into the statistics.
func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByCategory[event.Category]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	ss, ok := s.Sensors[event.SensorID]
	if !ok {
		ss = &SensorStats{
			FirstSeen:    event.Timestamp,
			LastSeen:     event.Timestamp,
			Dispositions: make(map[log.Disposition]int),
			Steps:        make(map[log.PermissionStep]int),
		}
		s.Sensors[event.SensorID] = ss
	}
	ss.Events++
	if event.Timestamp.Before(ss.FirstSeen) {
		ss.FirstSeen = event.Timestamp
	}
	if event.Timestamp.After(ss.LastSeen) {
		ss.LastSeen = event.Timestamp
	}
	if event.Platform != "" {
		ss.Platform = event.Platform
	}

	switch {
	case event.Orientation != nil:
		ss.Dispositions[event.Orientation.Disposition]++
	case event.StateChange != nil:
		sc := event.StateChange
		ss.StateChanges++
		ss.LastStatus = sc.NewStatus
		ss.LastPerm = sc.NewPermission
		if sc.Bearing != nil && (ss.LastBearing == nil || *ss.LastBearing != *sc.Bearing) {
			ss.BearingUpdate++
		}
		ss.LastBearing = sc.Bearing
	case event.Permission != nil:
		ss.Steps[event.Permission.Step]++
		ss.Cycles = max(ss.Cycles, event.Permission.Cycle)
	case event.Error != nil:
		s.Errors++
	}
}

// RunStats analyzes the trace at path and prints statistics to w.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "Trace Statistics")
	fmt.Fprintln(w, "================")
	fmt.Fprintf(w, "Total events: %d\n", stats.TotalEvents)
	if stats.TotalEvents == 0 {
		return
	}

	duration := stats.TimeRange.End.Sub(stats.TimeRange.Start)
	fmt.Fprintf(w, "Time range:   %s - %s (%v)\n",
		stats.TimeRange.Start.UTC().Format(timeFormat),
		stats.TimeRange.End.UTC().Format(timeFormat),
		duration)
	fmt.Fprintf(w, "Errors:       %d\n", stats.Errors)

	fmt.Fprintln(w, "\nBy category:")
	for _, c := range []log.Category{log.CategoryOrientation, log.CategoryState, log.CategoryPermission, log.CategoryError} {
		if n := stats.EventsByCategory[c]; n > 0 {
			fmt.Fprintf(w, "  %s: %d\n", c, n)
		}
	}

	ids := make([]string, 0, len(stats.Sensors))
	for id := range stats.Sensors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintf(w, "\nSensors: %d\n", len(ids))
	for _, id := range ids {
		ss := stats.Sensors[id]
		fmt.Fprintf(w, "  %s (%s)\n", id, orDash(ss.Platform))
		fmt.Fprintf(w, "    Events:        %d over %v\n", ss.Events, ss.LastSeen.Sub(ss.FirstSeen))
		fmt.Fprintf(w, "    Orientation:   %d setup, %d sample, %d ignored\n",
			ss.Dispositions[log.DispositionSetup], ss.Dispositions[log.DispositionSample], ss.Dispositions[log.DispositionIgnored])
		fmt.Fprintf(w, "    State changes: %d (%d bearing updates)\n", ss.StateChanges, ss.BearingUpdate)
		if ss.Cycles > 0 {
			fmt.Fprintf(w, "    Permission:    %d cycle(s)", ss.Cycles)
			for step := log.PermissionRequested; step <= log.PermissionUndecided; step++ {
				if n := ss.Steps[step]; n > 0 && step != log.PermissionRequested {
					fmt.Fprintf(w, ", %d %s", n, step)
				}
			}
			fmt.Fprintln(w)
		}
		if ss.LastStatus != "" {
			fmt.Fprintf(w, "    Final state:   %s/%s bearing=%s\n", ss.LastStatus, ss.LastPerm, optFloat(ss.LastBearing))
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
