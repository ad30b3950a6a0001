package main

import (
	"os"
	"path/filepath"
	"strings"
)

var (
	photoExtensions = map[string]bool{
		".jpg": true, ".jpeg": true, ".jpe": true, ".png": true,
		".gif": true, ".tiff": true, ".tif": true,
		".heic": true, ".heif": true,
	}

	videoExtensions = map[string]bool{
		".mp4": true, ".mov": true, ".avi": true,
		".mkv": true, ".m4v": true, ".3gp": true,
	}
)

// DefaultExtensions returns the default allowlist: all supported photo
// and video extensions.
func DefaultExtensions() map[string]bool {
	exts := make(map[string]bool, len(photoExtensions)+len(videoExtensions))
	for ext := range photoExtensions {
		exts[ext] = true
	}
	for ext := range videoExtensions {
		exts[ext] = true
	}
	return exts
}

// ParseExtensions builds an allowlist from a comma-separated list of
// suffixes, with or without leading dots.
func ParseExtensions(list string) map[string]bool {
	exts := make(map[string]bool)
	for _, e := range strings.Split(list, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return exts
}

// isSupported checks a path's extension against the allowlist,
// case-insensitively.
func isSupported(path string, exts map[string]bool) bool {
	return exts[strings.ToLower(filepath.Ext(path))]
}

// TraversalError records an unreadable directory or file entry; the
// subtree is skipped and the walk continues with siblings.
type TraversalError struct {
	Path string
	Err  error
}

func (e TraversalError) Error() string {
	return "traverse " + e.Path + ": " + e.Err.Error()
}

// ScanMediaFiles walks the source tree and collects supported media
// files. The destination subtree and the extraction cache directory
// are excluded so re-runs over an overlapping source/destination never
// recurse into the tool's own output.
func ScanMediaFiles(cfg *Config, progressChan chan<- ScanProgress) ([]*MediaFile, []TraversalError) {
	var (
		files []*MediaFile
		errs  []TraversalError
		count int
		skip  = scanExclusions(cfg)
	)

	// Walk from a cleaned absolute root so every visited path compares
	// against the exclusion set in the same form.
	root := cfg.SourceRoot
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			errs = append(errs, TraversalError{Path: path, Err: err})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if skip[path] || strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if !isSupported(path, cfg.Extensions) {
			return nil
		}

		files = append(files, &MediaFile{Path: path, Size: info.Size()})
		count++

		if progressChan != nil {
			select {
			case progressChan <- ScanProgress{
				TotalFiles:     count,
				ProcessedFiles: count,
				CurrentFile:    path,
			}:
			default:
			}
		}
		return nil
	})

	return files, errs
}

// scanExclusions returns the directories the walk must never descend
// into: the destination root (when it sits under the source) and the
// cache directory. Entries are cleaned absolute paths so a trailing
// slash or a relative destination cannot defeat the guard.
func scanExclusions(cfg *Config) map[string]bool {
	skip := make(map[string]bool)
	dest := filepath.Clean(cfg.DestRoot)
	if abs, err := filepath.Abs(dest); err == nil {
		dest = abs
	}
	skip[dest] = true
	skip[filepath.Join(dest, cacheDirName)] = true
	return skip
}
