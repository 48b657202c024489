// Package util lists the frame files written by the sampler.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FramePrefix starts every frame file name: frame-<n>.<ext>.
const FramePrefix = "frame-"

// FrameFileName returns the file name of frame n with the given extension
// (including the dot).
func FrameFileName(n int, ext string) string {
	return fmt.Sprintf("%s%d%s", FramePrefix, n, ext)
}

// ParseFrameNumber extracts n from a name produced by FrameFileName.
func ParseFrameNumber(name string) (int, error) {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if !strings.HasPrefix(stem, FramePrefix) {
		return 0, errors.Errorf("%q is not a frame file", base)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(stem, FramePrefix))
	if err != nil {
		return 0, errors.Wrapf(err, "frame number of %q", base)
	}
	return n, nil
}

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file. Empty unless requested.
	Data []byte
	// Frame is the frame number of the image file.
	Frame int
}

// LoadDirectoryImageFiles reads all frame files from a directory, ordered by
// frame number. Files that are not images or do not follow the frame naming
// scheme are skipped.
//
// Arguments:
// - dir: Directory path containing image files.
// - withData: Whether to read each file's bytes into Data.
//
// Returns:
// - []ImageFile: Slice of ImageFile sorted by Frame.
// - error: Error if listing or reading fails.
func LoadDirectoryImageFiles(dir string, withData bool) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "list %q", dir)
	}

	var images []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		switch strings.ToLower(filepath.Ext(file.Name())) {
		case ".jpg", ".jpeg", ".png", ".webp":
		default:
			continue
		}
		frame, err := ParseFrameNumber(file.Name())
		if err != nil {
			continue
		}

		imgPath := filepath.Join(dir, file.Name())
		img := ImageFile{Path: imgPath, Frame: frame}
		if withData {
			if img.Data, err = os.ReadFile(imgPath); err != nil {
				return nil, errors.Wrapf(err, "read %q", imgPath)
			}
		}
		images = append(images, img)
	}

	sort.Slice(images, func(i, j int) bool {
		return images[i].Frame < images[j].Frame
	})

	return images, nil
}
