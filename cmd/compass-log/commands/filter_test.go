package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/geotools/geotools-go/pkg/log"
)

func TestFilterByCategory(t *testing.T) {
	path := createTestLogFile(t, session())
	output := filepath.Join(t.TempDir(), "filtered.ctrace")

	var buf bytes.Buffer
	err := RunFilter(path, FilterOptions{Output: output, Category: "state"}, &buf)
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Filtered 3 events") {
		t.Errorf("unexpected report: %q", buf.String())
	}

	r, err := log.NewReader(output)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	events, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range events {
		if e.Category != log.CategoryState {
			t.Errorf("unexpected category %s", e.Category)
		}
	}
}

func TestFilterByTimeRange(t *testing.T) {
	path := createTestLogFile(t, session())
	output := filepath.Join(t.TempDir(), "filtered.ctrace")

	opts := FilterOptions{
		Output:    output,
		TimeStart: "2026-03-14T09:00:00Z",
		TimeEnd:   "2026-03-14T09:00:00.1Z",
	}
	var buf bytes.Buffer
	if err := RunFilter(path, opts, &buf); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Filtered 7 events") {
		t.Errorf("unexpected report: %q", buf.String())
	}
}

func TestBuildFilterErrors(t *testing.T) {
	tests := []FilterOptions{
		{TimeStart: "yesterday"},
		{TimeEnd: "2026-13-01"},
		{Category: "frames"},
	}
	for _, opts := range tests {
		if _, err := BuildFilter(opts); err == nil {
			t.Errorf("BuildFilter(%+v) should fail", opts)
		}
	}
}

func TestBuildFilterSensor(t *testing.T) {
	f, err := BuildFilter(FilterOptions{SensorID: "abc", Category: "error"})
	if err != nil {
		t.Fatal(err)
	}
	if f.SensorID != "abc" || f.Category == nil || *f.Category != log.CategoryError {
		t.Errorf("unexpected filter %+v", f)
	}
}
