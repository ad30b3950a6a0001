package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTransferFileCopy(t *testing.T) {
	src := filepath.Join(t.TempDir(), "photo.jpg")
	content := []byte("jpeg bytes go here")
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatal(err)
	}
	taken := time.Date(2021, 5, 12, 10, 30, 0, 0, time.UTC)
	if err := os.Chtimes(src, taken, taken); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "2021", "05", "12", "photo.jpg")
	if err := TransferFile(src, dst, false); err != nil {
		t.Fatalf("TransferFile(copy) error: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("destination missing: %v", err)
	}
	if string(got) != string(content) {
		t.Error("destination content differs from source")
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("copy must leave the source in place: %v", err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Truncate(time.Second).Equal(taken) {
		t.Errorf("destination mtime = %v, want %v", info.ModTime(), taken)
	}
}

func TestTransferFileMove(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	content := []byte("mp4 container bytes")
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "2021", "05", "12", "clip.mp4")
	if err := TransferFile(src, dst, true); err != nil {
		t.Fatalf("TransferFile(move) error: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("destination missing: %v", err)
	}
	if string(got) != string(content) {
		t.Error("destination content differs from source")
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("move must remove the source")
	}
}

func TestTransferFileMissingSource(t *testing.T) {
	destDir := t.TempDir()
	dst := filepath.Join(destDir, "photo.jpg")

	err := TransferFile(filepath.Join(t.TempDir(), "gone.jpg"), dst, false)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
		t.Error("failed transfer must not leave a destination file")
	}
	assertNoPartials(t, destDir)
}

func TestTransferFileNoPartialLeftovers(t *testing.T) {
	src := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(src, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}

	destDir := t.TempDir()
	if err := TransferFile(src, filepath.Join(destDir, "photo.jpg"), false); err != nil {
		t.Fatal(err)
	}
	assertNoPartials(t, destDir)
}

func assertNoPartials(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".partial-") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}
