package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/geotools/geotools-go/pkg/log"
)

// RunExport writes the trace at path to output (stdout if empty) as
// jsonl or csv.
func RunExport(path, format, output string) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "jsonl" {
		return exportJSONL(reader, w)
	}
	return exportCSV(reader, w)
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

var csvHeader = []string{"timestamp", "sensor_id", "category", "type", "status", "permission", "bearing", "heading", "cycle", "message"}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := cw.Write(csvRow(event)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(event log.Event) []string {
	var status, permission, bearing, heading, cycle, message string
	switch {
	case event.Orientation != nil:
		if event.Orientation.Heading != nil {
			heading = optFloat(event.Orientation.Heading)
		}
	case event.StateChange != nil:
		status = event.StateChange.NewStatus
		permission = event.StateChange.NewPermission
		if event.StateChange.Bearing != nil {
			bearing = optFloat(event.StateChange.Bearing)
		}
		message = event.StateChange.Reason
	case event.Permission != nil:
		cycle = strconv.FormatUint(event.Permission.Cycle, 10)
	case event.Error != nil:
		message = event.Error.Message
	}

	return []string{
		event.Timestamp.UTC().Format(timeFormat),
		event.SensorID,
		event.Category.String(),
		typeLabel(event),
		status,
		permission,
		bearing,
		heading,
		cycle,
		message,
	}
}
