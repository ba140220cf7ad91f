// Command compass-log views and analyzes bearing sensor trace files.
//
// Trace files are written by compass with the -trace flag.
//
// Usage:
//
//	compass-log <command> [flags] <file.ctrace>
//
// Commands:
//
//	view     View the trace in human-readable format
//	export   Export the trace to JSONL or CSV
//	filter   Filter the trace and write a new trace file
//	stats    Show statistics about the trace
//
// Examples:
//
//	# View permission steps only
//	compass-log view -category permission run.ctrace
//
//	# Export to CSV
//	compass-log export -format csv -o run.csv run.ctrace
//
//	# Keep one sensor's events
//	compass-log filter -sensor 0b7c1f2e-... -o one.ctrace run.ctrace
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/geotools/geotools-go/cmd/compass-log/commands"
)

const usage = `compass-log - Bearing Sensor Trace Analyzer

Usage:
  compass-log <command> [flags] <file.ctrace>

Commands:
  view     View the trace in human-readable format
  export   Export the trace to JSONL or CSV
  filter   Filter the trace and write a new trace file
  stats    Show statistics about the trace

Use "compass-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func newFlagSet(name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "compass-log %s - %s\n\nUsage:\n  compass-log %s [flags] <file.ctrace>\n\nFlags:\n", name, synopsis, name)
		fs.PrintDefaults()
	}
	return fs
}

// pathArg returns the single positional argument or exits.
func pathArg(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View the trace in human-readable format")
	category := fs.String("category", "", "Filter by category (orientation, state, permission, error)")
	sensor := fs.String("sensor", "", "Filter by sensor ID")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := pathArg(fs)

	filter, err := commands.BuildFilter(commands.FilterOptions{SensorID: *sensor, Category: *category})
	if err != nil {
		fail(err)
	}
	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export the trace to JSONL or CSV")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := pathArg(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter the trace and write a new trace file")
	output := fs.String("o", "", "Output file (required)")
	sensor := fs.String("sensor", "", "Filter by sensor ID")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	category := fs.String("category", "", "Filter by category (orientation, state, permission, error)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := pathArg(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:    *output,
		SensorID:  *sensor,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Category:  *category,
	}
	if err := commands.RunFilter(path, opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the trace")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := pathArg(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
