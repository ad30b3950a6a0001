package main

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestParseExtensions(t *testing.T) {
	tests := []struct {
		name string
		list string
		want []string
	}{
		{"dotted", ".jpg,.png", []string{".jpg", ".png"}},
		{"bare", "jpg,png", []string{".jpg", ".png"}},
		{"mixed case and spaces", " JPG , .Mp4 ", []string{".jpg", ".mp4"}},
		{"empty entries dropped", "jpg,,png,", []string{".jpg", ".png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseExtensions(tt.list)
			var keys []string
			for k := range got {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			if len(keys) != len(tt.want) {
				t.Fatalf("got %v, want %v", keys, tt.want)
			}
			for i, k := range keys {
				if k != tt.want[i] {
					t.Errorf("got %v, want %v", keys, tt.want)
					break
				}
			}
		})
	}
}

func TestIsSupportedCaseInsensitive(t *testing.T) {
	exts := map[string]bool{".jpg": true}

	tests := []struct {
		path string
		want bool
	}{
		{"photo.jpg", true},
		{"PHOTO.JPG", true},
		{"Photo.Jpg", true},
		{"document.txt", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		if got := isSupported(tt.path, exts); got != tt.want {
			t.Errorf("isSupported(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestScanMediaFiles(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(src, "organized")

	mustWrite := func(rel string) {
		t.Helper()
		path := filepath.Join(src, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	mustWrite("trip/IMG_0001.jpg")
	mustWrite("trip/IMG_0002.JPG")
	mustWrite("trip/clip.mp4")
	mustWrite("trip/notes.txt")
	mustWrite(".hidden/secret.jpg")
	mustWrite("trip/.DS_Store")
	// The tool's own output must never be rescanned.
	mustWrite("organized/2020/01/01/old.jpg")

	cfg := &Config{
		SourceRoot: src,
		DestRoot:   dest,
		Extensions: DefaultExtensions(),
	}
	files, errs := ScanMediaFiles(cfg, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected traversal errors: %v", errs)
	}

	var got []string
	for _, mf := range files {
		rel, _ := filepath.Rel(src, mf.Path)
		got = append(got, rel)
	}
	sort.Strings(got)

	want := []string{
		filepath.Join("trip", "IMG_0001.jpg"),
		filepath.Join("trip", "IMG_0002.JPG"),
		filepath.Join("trip", "clip.mp4"),
	}
	if len(got) != len(want) {
		t.Fatalf("scanned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("scanned %v, want %v", got, want)
			break
		}
	}
}

func TestScanUncleanedDestinationExcluded(t *testing.T) {
	src := t.TempDir()
	sep := string(os.PathSeparator)

	if err := os.MkdirAll(filepath.Join(src, "organized", "2020"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "organized", "2020", "old.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "new.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	// A trailing separator must not defeat the own-output guard.
	cfg := &Config{
		SourceRoot: src,
		DestRoot:   src + sep + "organized" + sep,
		Extensions: DefaultExtensions(),
	}
	files, _ := ScanMediaFiles(cfg, nil)
	if len(files) != 1 || filepath.Base(files[0].Path) != "new.jpg" {
		t.Errorf("uncleaned destination re-ingested: %v", files)
	}
}

func TestScanRelativeDestinationExcluded(t *testing.T) {
	src := t.TempDir()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(src); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldwd) })

	if err := os.MkdirAll(filepath.Join("organized", "2020"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join("organized", "2020", "old.jpg"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("new.jpg", []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{
		SourceRoot: ".",
		DestRoot:   "./organized",
		Extensions: DefaultExtensions(),
	}
	files, _ := ScanMediaFiles(cfg, nil)
	if len(files) != 1 || filepath.Base(files[0].Path) != "new.jpg" {
		t.Errorf("relative destination re-ingested: %v", files)
	}
}

func TestScanJpegOnlyAllowlist(t *testing.T) {
	src := t.TempDir()

	for _, name := range []string{"a.jpg", "b.mp4", "c.png"} {
		if err := os.WriteFile(filepath.Join(src, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := &Config{
		SourceRoot: src,
		DestRoot:   filepath.Join(src, "out"),
		Extensions: ParseExtensions("jpg"),
	}
	files, _ := ScanMediaFiles(cfg, nil)
	if len(files) != 1 || filepath.Base(files[0].Path) != "a.jpg" {
		t.Errorf("allowlist should select only a.jpg, got %v", files)
	}
}
