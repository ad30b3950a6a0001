package main

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DuplicateKey identifies a photo or video by capture second and byte
// size, regardless of name or path.
type DuplicateKey struct {
	unix int64
	size int64
}

// DuplicateIndex records which keys have already been placed during
// one organize run. It grows monotonically and is safe for concurrent
// use by the worker pool.
type DuplicateIndex struct {
	mu   sync.Mutex
	seen map[DuplicateKey]struct{}
}

func NewDuplicateIndex() *DuplicateIndex {
	return &DuplicateIndex{seen: make(map[DuplicateKey]struct{})}
}

// Register atomically checks and records a (timestamp, size) key.
// Returns true if the key was not previously seen. Files with unknown
// timestamps are always accepted: unknowns never collide with each
// other, so a missing capture time can never cause a deletion.
func (ix *DuplicateIndex) Register(ts Timestamp, size int64) bool {
	if !ts.Known() {
		return true
	}
	key := DuplicateKey{unix: ts.Time().Unix(), size: size}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, dup := ix.seen[key]; dup {
		return false
	}
	ix.seen[key] = struct{}{}
	return true
}

// Len reports how many keys have been registered.
func (ix *DuplicateIndex) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.seen)
}

// SeedFromDestination walks an existing destination tree and registers
// every supported file already there, so resuming into a non-empty
// library skips files organized by earlier runs. The index itself is
// still rebuilt from scratch on every invocation.
func (ix *DuplicateIndex) SeedFromDestination(destRoot string, exts map[string]bool) int {
	seeded := 0

	filepath.Walk(destRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if info.Name() == cacheDirName || strings.HasPrefix(info.Name(), ".") && path != destRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if !isSupported(path, exts) {
			return nil
		}
		if ix.Register(ExtractTimestamp(path), info.Size()) {
			seeded++
		}
		return nil
	})

	return seeded
}
