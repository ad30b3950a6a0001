package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCollectStatistics(t *testing.T) {
	root := t.TempDir()
	oldest := time.Date(2018, 1, 5, 12, 0, 0, 0, time.UTC)
	newest := time.Date(2023, 11, 20, 8, 30, 0, 0, time.UTC)

	writeFileWithMtime(t, filepath.Join(root, "a.jpg"), []byte("1234"), oldest)
	writeFileWithMtime(t, filepath.Join(root, "b.JPG"), []byte("12345678"), newest)
	writeFileWithMtime(t, filepath.Join(root, "c.mp4"), []byte("12"), time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC))
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	// Cache directory contents are not part of the collection.
	cacheDir := filepath.Join(root, cacheDirName)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cacheDir, "stray.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	stats, err := CollectStatistics(root, DefaultExtensions())
	if err != nil {
		t.Fatalf("CollectStatistics: %v", err)
	}

	if stats.Count != 3 {
		t.Errorf("Count = %d, want 3", stats.Count)
	}
	if stats.TotalSize != 4+8+2 {
		t.Errorf("TotalSize = %d, want 14", stats.TotalSize)
	}
	if stats.ByExtension[".jpg"] != 2 {
		t.Errorf("ByExtension[.jpg] = %d, want 2 (case folded)", stats.ByExtension[".jpg"])
	}
	if stats.ByExtension[".mp4"] != 1 {
		t.Errorf("ByExtension[.mp4] = %d, want 1", stats.ByExtension[".mp4"])
	}
	if !stats.Oldest.Time().Equal(oldest) {
		t.Errorf("Oldest = %v, want %v", stats.Oldest, oldest)
	}
	if !stats.Newest.Time().Equal(newest) {
		t.Errorf("Newest = %v, want %v", stats.Newest, newest)
	}
}

func TestCollectStatisticsBadRoot(t *testing.T) {
	if _, err := CollectStatistics(filepath.Join(t.TempDir(), "nope"), DefaultExtensions()); err == nil {
		t.Error("missing root should error")
	}

	file := filepath.Join(t.TempDir(), "file.jpg")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := CollectStatistics(file, DefaultExtensions()); err == nil {
		t.Error("non-directory root should error")
	}
}
