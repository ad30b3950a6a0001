package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeFileWithMtime creates a fixture file with a fixed modification
// time so mtime-fallback extraction is deterministic.
func writeFileWithMtime(t *testing.T, path string, content []byte, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestExtractTimestampMtimeFallback(t *testing.T) {
	mtime := time.Date(2019, 8, 23, 7, 15, 42, 0, time.UTC)

	tests := []struct {
		name string
		file string
	}{
		{"photo without EXIF", "broken.jpg"},
		{"video without mvhd", "broken.mp4"},
		{"container format with no metadata reader", "clip.avi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			writeFileWithMtime(t, path, []byte("no embedded metadata here"), mtime)

			ts := ExtractTimestamp(path)
			if !ts.Known() {
				t.Fatal("mtime fallback should yield a known timestamp")
			}
			if !ts.Time().Equal(mtime) {
				t.Errorf("Time() = %v, want %v", ts.Time(), mtime)
			}
		})
	}
}

func TestExtractTimestampMissingFile(t *testing.T) {
	ts := ExtractTimestamp(filepath.Join(t.TempDir(), "nope.jpg"))
	if ts.Known() {
		t.Error("unreadable file should yield an unknown timestamp")
	}
}

func TestKnownTimeTruncation(t *testing.T) {
	sub := time.Date(2021, 5, 12, 10, 30, 15, 987654321, time.UTC)
	ts := KnownTime(sub)
	if ts.Time().Nanosecond() != 0 {
		t.Errorf("KnownTime should truncate to whole seconds, got %v", ts.Time())
	}
	if !ts.Time().Equal(sub.Truncate(time.Second)) {
		t.Errorf("Time() = %v", ts.Time())
	}
}

func TestTimestampString(t *testing.T) {
	if got := UnknownTime().String(); got != "unknown" {
		t.Errorf("UnknownTime().String() = %q", got)
	}
	ts := KnownTime(time.Date(2021, 5, 12, 10, 30, 15, 0, time.UTC))
	if got := ts.String(); got != "2021-05-12 10:30:15" {
		t.Errorf("String() = %q", got)
	}
}
