// Package log records machine-readable traces of bearing sensor activity.
//
// A trace captures every raw orientation event a sensor received, every
// state it published, and the outcome of every permission request. It is
// separate from operational logging (slog): operational logs explain what
// the program did, traces let a session be inspected or replayed later.
//
// # Basic Usage
//
//	// Development: echo trace events to the console
//	opts = append(opts, bearing.WithTraceLogger(log.NewSlogAdapter(slog.Default())))
//
//	// Recording: write a binary trace file
//	tl, _ := log.NewFileLogger("compass.ctrace")
//	opts = append(opts, bearing.WithTraceLogger(tl))
//
//	// Both
//	opts = append(opts, bearing.WithTraceLogger(log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    tl,
//	)))
//
// # Event Types
//
//   - Orientation: a raw platform event and what the sensor did with it
//   - State: a published state transition
//   - Permission: a permission cycle step (requested, granted, expired...)
//   - Error: a failure the sensor absorbed into its state
//
// # File Format
//
// Trace files are a sequence of CBOR-encoded events using integer keys,
// conventionally with the .ctrace extension. The compass-log command views,
// summarizes and exports them; the replay package can feed the recorded
// orientation events back into a sensor.
package log
