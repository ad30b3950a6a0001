package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	mp4 "github.com/abema/go-mp4"
	"github.com/rwcarlsen/goexif/exif"
)

// appleEpochOffset is the number of seconds between the Apple/Mac
// epoch (1904-01-01) and the Unix epoch (1970-01-01). ISO BMFF
// containers store mvhd creation time against the former.
const appleEpochOffset = 2082844800

// isoBMFFExtensions lists video containers that carry a creation time
// in the moov>mvhd box.
var isoBMFFExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".m4v": true, ".3gp": true,
}

// ExtractTimestamp determines the best available capture time for a
// file: embedded metadata first (EXIF for photos, mvhd for video
// containers), then filesystem mtime. It never fails the run; when
// even the stat is impossible the timestamp is unknown and the engine
// logs and continues.
func ExtractTimestamp(path string) Timestamp {
	ext := strings.ToLower(filepath.Ext(path))

	if photoExtensions[ext] {
		if t, err := exifCaptureTime(path); err == nil {
			return KnownTime(t)
		}
	}
	if isoBMFFExtensions[ext] {
		if t, err := videoCreationTime(path); err == nil {
			return KnownTime(t)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return UnknownTime()
	}
	return KnownTime(info.ModTime())
}

// exifCaptureTime reads DateTimeOriginal (with goexif's DateTime
// fallback chain) from a photo's EXIF block.
func exifCaptureTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, err
	}
	return x.DateTime()
}

// videoCreationTime reads the moov>mvhd box of an ISO BMFF container.
// Returns an error for zero or pre-epoch times so the caller falls
// back to the filesystem mtime.
func videoCreationTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	boxes, err := mp4.ExtractBoxesWithPayload(f, nil, []mp4.BoxPath{
		{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()},
	})
	if err != nil {
		return time.Time{}, err
	}

	for _, box := range boxes {
		mvhd, ok := box.Payload.(*mp4.Mvhd)
		if !ok {
			continue
		}
		created := mvhd.GetCreationTime()
		if created == 0 {
			break
		}
		t := time.Unix(int64(created)-appleEpochOffset, 0).UTC()
		if t.Year() < 1970 {
			break
		}
		return t, nil
	}
	return time.Time{}, errNoCreationTime
}

var errNoCreationTime = errors.New("no usable creation time in container")
