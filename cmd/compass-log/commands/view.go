// Package commands implements the compass-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/geotools/geotools-go/pkg/log"
)

// timeFormat is used for every timestamp the commands print.
const timeFormat = "2006-01-02T15:04:05.000000Z"

// ParseCategoryFlag parses a category name as given on the command line.
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "orientation", "o":
		return log.CategoryOrientation, nil
	case "state", "s":
		return log.CategoryState, nil
	case "permission", "p":
		return log.CategoryPermission, nil
	case "error", "e":
		return log.CategoryError, nil
	}
	return 0, fmt.Errorf("invalid category: %s (use orientation, state, permission, error)", s)
}

// RunView prints the events of the trace at path that match filter.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes one event as a header line plus indented details.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format(timeFormat)
	fmt.Fprintf(w, "%s [sensor:%s] %-11s %s\n", ts, shortenID(event.SensorID), event.Category, typeLabel(event))

	switch {
	case event.Orientation != nil:
		o := event.Orientation
		fmt.Fprintf(w, "  alpha=%s compass=%s absolute=%t", optFloat(o.Alpha), optFloat(o.CompassHeading), o.Absolute)
		if o.Heading != nil {
			fmt.Fprintf(w, " heading=%s", optFloat(o.Heading))
		}
		fmt.Fprintln(w)

	case event.StateChange != nil:
		sc := event.StateChange
		if sc.OldStatus == "" {
			fmt.Fprintf(w, "  %s/%s", sc.NewStatus, sc.NewPermission)
		} else {
			fmt.Fprintf(w, "  %s/%s -> %s/%s", sc.OldStatus, sc.OldPermission, sc.NewStatus, sc.NewPermission)
		}
		if sc.Bearing != nil {
			fmt.Fprintf(w, " bearing=%s", optFloat(sc.Bearing))
		}
		if sc.Reason != "" {
			fmt.Fprintf(w, " (%s)", sc.Reason)
		}
		fmt.Fprintln(w)

	case event.Permission != nil:
		fmt.Fprintf(w, "  cycle=%d\n", event.Permission.Cycle)

	case event.Error != nil:
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  %s: %s\n", event.Error.Context, event.Error.Message)
		} else {
			fmt.Fprintf(w, "  %s\n", event.Error.Message)
		}
	}
}

func typeLabel(event log.Event) string {
	switch {
	case event.Orientation != nil:
		return event.Orientation.Disposition.String()
	case event.StateChange != nil:
		return "Change"
	case event.Permission != nil:
		return event.Permission.Step.String()
	case event.Error != nil:
		return "Error"
	}
	return "Unknown"
}

func optFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func shortenID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "-"
	}
	return id
}
