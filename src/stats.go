package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// CollectionStats summarizes a media directory without organizing it.
type CollectionStats struct {
	Count       int
	TotalSize   int64
	ByExtension map[string]int
	Oldest      Timestamp
	Newest      Timestamp
}

// CollectStatistics walks root and gathers counts, sizes and the
// capture-date range of supported files.
func CollectStatistics(root string, exts map[string]bool) (CollectionStats, error) {
	stats := CollectionStats{ByExtension: make(map[string]int)}

	info, err := os.Stat(root)
	if err != nil {
		return stats, fmt.Errorf("stats directory: %w", err)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("%s is not a directory", root)
	}

	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if info.Name() == cacheDirName || strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !isSupported(path, exts) {
			return nil
		}

		stats.Count++
		stats.TotalSize += info.Size()
		stats.ByExtension[strings.ToLower(filepath.Ext(path))]++

		ts := ExtractTimestamp(path)
		if !ts.Known() {
			return nil
		}
		if !stats.Oldest.Known() || ts.Time().Before(stats.Oldest.Time()) {
			stats.Oldest = ts
		}
		if !stats.Newest.Known() || ts.Time().After(stats.Newest.Time()) {
			stats.Newest = ts
		}
		return nil
	})

	return stats, nil
}

// PrintStatistics renders collection statistics for the CLI.
func PrintStatistics(root string, stats CollectionStats) {
	fmt.Printf("Statistics for %s\n\n", root)
	fmt.Printf("  Total files: %d\n", stats.Count)
	fmt.Printf("  Total size:  %s\n", humanize.Bytes(uint64(stats.TotalSize)))

	if len(stats.ByExtension) > 0 {
		fmt.Println("\n  By extension:")
		exts := make([]string, 0, len(stats.ByExtension))
		for ext := range stats.ByExtension {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		for _, ext := range exts {
			fmt.Printf("    %-6s %d\n", ext, stats.ByExtension[ext])
		}
	}

	if stats.Oldest.Known() {
		fmt.Println("\n  Date range:")
		fmt.Printf("    Oldest: %s\n", stats.Oldest)
		fmt.Printf("    Newest: %s\n", stats.Newest)
	}
}
