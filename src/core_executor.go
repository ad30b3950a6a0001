package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// TransferFile puts src at dst by copy or move. The operation is
// all-or-nothing for a single file: either the file ends fully at dst
// or an error is returned and src is untouched. Move deletes the
// source only after the destination has been written and its size
// verified, so there is never a moment with zero copies of the file.
func TransferFile(src, dst string, move bool) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create destination dir: %w", err)
	}

	if move {
		// Rename first: atomic and cheap on the same device.
		if err := os.Rename(src, dst); err == nil {
			return nil
		}
		// Cross-device (or otherwise un-renameable): copy, verify,
		// then delete the source.
		if err := copyVerified(src, dst); err != nil {
			return err
		}
		if err := os.Remove(src); err != nil {
			return fmt.Errorf("remove source after copy: %w", err)
		}
		return nil
	}

	return copyVerified(src, dst)
}

// copyVerified copies src into dst via a temporary file in the
// destination directory, verifies the byte count, and renames it into
// place. A partial write never becomes visible at dst; the temp file
// is removed on any failure.
func copyVerified(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	tmp := dst + ".partial-" + uuid.NewString()[:8]
	tmpFile, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	written, err := io.Copy(tmpFile, srcFile)
	if err == nil {
		err = tmpFile.Sync()
	}
	if closeErr := tmpFile.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written != srcInfo.Size() {
		err = fmt.Errorf("wrote %d of %d bytes", written, srcInfo.Size())
	}
	if err == nil {
		err = os.Rename(tmp, dst)
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("copy %s: %w", src, err)
	}

	// Preserve the source mtime so capture-time fallbacks survive the
	// transfer; best effort only.
	os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())

	return nil
}
