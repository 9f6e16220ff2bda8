package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/pricetag-ocr/internal/geometry"
)

// ErrInvalidRegion is returned when a crop region is empty or does not fit
// inside the source image.
var ErrInvalidRegion = errors.New("invalid crop region")

// Crop copies the region described by box out of img into a new buffer.
//
// Parameters:
//   - img: The source image. Its bounds need not start at (0,0); the box is
//     offset by img.Bounds().Min.
//   - box: The region to copy, relative to the image origin.
//
// Returns:
//   - *image.NRGBA: A new buffer of exactly box.Width x box.Height pixels whose
//     bounds start at (0,0).
//   - error: Non-nil if the region cannot be cropped.
//
// The source image is not modified. Cropping the same box twice yields
// identical buffers.
//
// # Errors
//
//   - Returns ErrInvalidRegion if the box has zero width or height
//   - Returns ErrInvalidRegion if the box has a negative origin
//   - Returns ErrInvalidRegion if the box extends past the image bounds
func Crop(img image.Image, box geometry.PixelBox) (*image.NRGBA, error) {
	if box.Empty() {
		return nil, fmt.Errorf("%w: empty box %dx%d", ErrInvalidRegion, box.Width, box.Height)
	}

	bounds := img.Bounds()
	if box.Left < 0 || box.Top < 0 {
		return nil, fmt.Errorf("%w: origin (%d,%d) is negative", ErrInvalidRegion, box.Left, box.Top)
	}

	region := box.Rect().Add(bounds.Min)
	if !region.In(bounds) {
		return nil, fmt.Errorf("%w: region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			ErrInvalidRegion, region.Min.X, region.Min.Y, region.Max.X, region.Max.Y,
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	return imaging.Crop(img, region), nil
}
