package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Engine orchestrates one organize run: traversal, extraction,
// dedup, planning and transfer. The duplicate index and stats are the
// only cross-worker mutable state.
type Engine struct {
	cfg     *Config
	index   *DuplicateIndex
	planner *Planner
	cache   *Cache

	mu       sync.Mutex
	stats    RunStats
	firstErr error
}

// NewEngine builds an engine for one run. cache may be nil.
func NewEngine(cfg *Config, cache *Cache) *Engine {
	return &Engine{
		cfg:     cfg,
		index:   NewDuplicateIndex(),
		planner: NewPlanner(cfg.DestRoot, cfg.DateFormat),
		cache:   cache,
	}
}

// ValidateConfig checks the roots before traversal begins. These are
// the only errors fatal to a whole run.
func ValidateConfig(cfg *Config) error {
	info, err := os.Stat(cfg.SourceRoot)
	if err != nil {
		return fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", cfg.SourceRoot)
	}
	if cfg.DestRoot == "" {
		return fmt.Errorf("destination directory not set")
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if len(cfg.Extensions) == 0 {
		return fmt.Errorf("extension allowlist is empty")
	}
	return nil
}

// Run executes the organize pipeline. Per-file outcomes are delivered
// through recordFn (may be nil); progress updates go to progressChan
// (may be nil, never blocks). Cancellation via ctx is honored between
// files; an in-flight transfer finishes or rolls back first.
func (e *Engine) Run(ctx context.Context, progressChan chan<- ScanProgress, recordFn func(FileRecord)) (RunStats, error) {
	if err := ValidateConfig(e.cfg); err != nil {
		return RunStats{}, err
	}

	files, traversalErrs := ScanMediaFiles(e.cfg, progressChan)
	for _, terr := range traversalErrs {
		e.bump(func(s *RunStats) { s.Errors++ })
		e.record(recordFn, FileRecord{Source: terr.Path, State: StateFailed, Err: terr})
	}

	// Resuming into a populated library: register what is already
	// there so earlier runs' output is not duplicated.
	if _, err := os.Stat(e.cfg.DestRoot); err == nil {
		e.index.SeedFromDestination(e.cfg.DestRoot, e.cfg.Extensions)
	}

	if e.cache != nil {
		valid := make(map[string]bool, len(files))
		for _, mf := range files {
			valid[mf.Path] = true
		}
		e.cache.PruneDeleted(valid)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg        sync.WaitGroup
		fileChan  = make(chan *MediaFile)
		processed int
		progMu    sync.Mutex
	)

	for i := 0; i < e.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for mf := range fileChan {
				rec := e.processFile(mf)
				e.record(recordFn, rec)
				if rec.State == StateFailed && e.cfg.FailFast {
					e.failFast(rec.Err)
					cancel()
				}

				progMu.Lock()
				processed++
				n := processed
				progMu.Unlock()
				if progressChan != nil {
					select {
					case progressChan <- ScanProgress{
						TotalFiles:     len(files),
						ProcessedFiles: n,
						CurrentFile:    mf.Path,
					}:
					default:
					}
				}
			}
		}()
	}

feed:
	for _, mf := range files {
		select {
		case <-ctx.Done():
			break feed
		case fileChan <- mf:
		}
	}
	close(fileChan)
	wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats, e.firstErr
}

// processFile drives one file through
// Discovered -> Extracted -> {Skipped | Planned} -> {Transferred | Failed}.
func (e *Engine) processFile(mf *MediaFile) FileRecord {
	mf.Taken = e.extract(mf)

	e.bump(func(s *RunStats) { s.Processed++ })

	if !e.index.Register(mf.Taken, mf.Size) {
		e.bump(func(s *RunStats) { s.Duplicates++ })
		return FileRecord{Source: mf.Path, State: StateSkippedDuplicate}
	}

	plan, err := e.planner.Plan(mf.Taken, filepath.Base(mf.Path), mf.Size)
	if err != nil {
		e.bump(func(s *RunStats) { s.Errors++ })
		return FileRecord{Source: mf.Path, State: StateFailed, Err: err}
	}

	if plan.AlreadyOrganized {
		e.bump(func(s *RunStats) { s.AlreadyOrganized++ })
		return FileRecord{Source: mf.Path, Dest: plan.DestPath, State: StateAlreadyOrganized}
	}

	if e.cfg.DryRun {
		e.bump(func(s *RunStats) {
			s.Organized++
			if plan.Renamed {
				s.Renamed++
			}
		})
		return FileRecord{Source: mf.Path, Dest: plan.DestPath, State: StatePlanned, Renamed: plan.Renamed}
	}

	if err := TransferFile(mf.Path, plan.DestPath, e.cfg.Move); err != nil {
		e.bump(func(s *RunStats) { s.Errors++ })
		return FileRecord{Source: mf.Path, Dest: plan.DestPath, State: StateFailed, Err: err}
	}

	e.bump(func(s *RunStats) {
		s.Organized++
		if plan.Renamed {
			s.Renamed++
		}
	})
	return FileRecord{Source: mf.Path, Dest: plan.DestPath, State: StateTransferred, Renamed: plan.Renamed}
}

// extract resolves the capture timestamp, consulting the cache first.
func (e *Engine) extract(mf *MediaFile) Timestamp {
	if e.cache != nil {
		if info, err := os.Stat(mf.Path); err == nil {
			if ts, ok := e.cache.Get(mf.Path, mf.Size, info.ModTime()); ok {
				return ts
			}
			ts := ExtractTimestamp(mf.Path)
			e.cache.Put(mf.Path, mf.Size, info.ModTime(), ts)
			return ts
		}
	}
	return ExtractTimestamp(mf.Path)
}

func (e *Engine) bump(fn func(*RunStats)) {
	e.mu.Lock()
	fn(&e.stats)
	e.mu.Unlock()
}

func (e *Engine) record(recordFn func(FileRecord), rec FileRecord) {
	if recordFn != nil {
		recordFn(rec)
	}
}

func (e *Engine) failFast(err error) {
	e.mu.Lock()
	if e.firstErr == nil {
		e.firstErr = err
	}
	e.mu.Unlock()
}
