package imaging

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// JPEGQuality is the quality used for every JPEG this package writes.
const JPEGQuality = 95

// EncodeJPEG encodes img as a JPEG at JPEGQuality and returns the bytes.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes img as a JPEG inside dir, creating dir if needed.
//
// Parameters:
//   - img: The image to write.
//   - dir: The target directory. Missing parents are created with mode 0755.
//   - name: The file name, e.g. "tag_0.jpg". The extension selects the format.
//
// Returns:
//   - string: The path of the written file.
//   - error: Non-nil if the directory or file cannot be written.
//
// An existing file with the same name is overwritten.
func Save(img image.Image, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := imaging.Save(img, path, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path, nil
}
