package main

import (
	"time"
)

// Timestamp is a capture time that may be unknown. Known times are
// truncated to whole seconds so keys derived from EXIF metadata and
// from filesystem mtimes compare with the same granularity.
type Timestamp struct {
	t     time.Time
	known bool
}

// KnownTime wraps a concrete capture time.
func KnownTime(t time.Time) Timestamp {
	return Timestamp{t: t.Truncate(time.Second), known: true}
}

// UnknownTime is the timestamp for files whose capture time could not
// be determined at all.
func UnknownTime() Timestamp {
	return Timestamp{}
}

func (ts Timestamp) Known() bool     { return ts.known }
func (ts Timestamp) Time() time.Time { return ts.t }

func (ts Timestamp) String() string {
	if !ts.known {
		return "unknown"
	}
	return ts.t.Format("2006-01-02 15:04:05")
}

// MediaFile is one candidate file discovered in the source tree.
type MediaFile struct {
	Path  string
	Size  int64
	Taken Timestamp
}

// FileState is the terminal state of a file in the organize pipeline.
type FileState int

const (
	StateTransferred FileState = iota
	StatePlanned     // dry-run only: transfer skipped on purpose
	StateSkippedDuplicate
	StateAlreadyOrganized
	StateFailed
)

func (s FileState) String() string {
	return [...]string{"transferred", "planned", "duplicate", "already organized", "failed"}[s]
}

// FileRecord is the per-file outcome reported to the caller: source
// path plus destination or skip reason.
type FileRecord struct {
	Source  string
	Dest    string
	State   FileState
	Renamed bool
	Err     error
}

// RunStats accumulates counts for one organize run. Never persisted.
type RunStats struct {
	Processed        int
	Organized        int
	Duplicates       int
	AlreadyOrganized int
	Renamed          int
	Errors           int
}

// ScanProgress tracks scanning/organizing progress for the UI.
type ScanProgress struct {
	TotalFiles     int
	ProcessedFiles int
	CurrentFile    string
}

// Config holds one run's configuration.
type Config struct {
	SourceRoot string
	DestRoot   string
	Move       bool   // copy is the default
	DateFormat string // strftime template for destination directories
	FailFast   bool
	Extensions map[string]bool // lowercased, with leading dot
	Workers    int
	DryRun     bool
	NoCache    bool
}
