package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Source is a photograph loaded from disk.
//
// Data holds the file exactly as read so it can be uploaded to the detection
// service unchanged; Image is the decoded raster the detections refer to.
// A Source is never modified after Load returns.
type Source struct {
	// Path is the file the image was read from.
	Path string

	// Format is the name reported by the decoder: "png", "jpeg", "gif",
	// "bmp", "tiff" or "webp".
	Format string

	// Data is the raw encoded file content.
	Data []byte

	// Image is the decoded raster.
	Image image.Image
}

// Width returns the width of the decoded image in pixels.
func (s *Source) Width() int {
	return s.Image.Bounds().Dx()
}

// Height returns the height of the decoded image in pixels.
func (s *Source) Height() int {
	return s.Image.Bounds().Dy()
}

// Load reads and decodes the image at path.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats are
//     PNG, JPEG, GIF, BMP, TIFF and WebP.
//
// Returns:
//   - *Source: The raw file content together with the decoded raster. The
//     concrete raster type depends on the format and color model (e.g.,
//     *image.RGBA, *image.NRGBA, *image.YCbCr).
//   - error: Non-nil if the file cannot be read or decoded.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a supported image format
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, format, err := Decode(data)
	if err != nil {
		return nil, err
	}

	return &Source{
		Path:   path,
		Format: format,
		Data:   data,
		Image:  img,
	}, nil
}

// Decode decodes an in-memory encoded image.
//
// Returns the decoded raster and the format name reported by the registered
// decoder, or an error if data is not a supported image.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// IsSupportedExt reports whether name has the extension of a format Load can decode.
func IsSupportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}
