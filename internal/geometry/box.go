// Package geometry converts detector output boxes into pixel rectangles.
//
// Object detectors report boxes as fractions (0.0 to 1.0) of the image width
// and height. Before a region can be cropped it must be denormalized against
// the size of the concrete image and, because the price-tag model tends to
// emit boxes that are tighter than the physical tag, grown around its center.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner. A PixelBox
// covers the half-open range [Left, Left+Width) x [Top, Top+Height).
package geometry

import "image"

// ExpansionFactor is the multiplier applied to the width and height of every
// detected box. The model was trained on a small set of tightly annotated
// tags and consistently under-sizes its predictions; 2.0 recovers the full tag
// on the sample photos. Lower it once the training set improves.
const ExpansionFactor = 2.0

// NormalizedBox is a detection rectangle expressed as fractions of the image size.
type NormalizedBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PixelBox is a rectangle in absolute pixel coordinates of a specific image.
type PixelBox struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the box covers no pixels.
func (b PixelBox) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Rect returns the box as an image.Rectangle.
func (b PixelBox) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Left+b.Width, b.Top+b.Height)
}

// Denormalize converts a normalized box to pixels, truncating toward zero.
// The result is not clamped to the image.
func Denormalize(nb NormalizedBox, imageWidth, imageHeight int) PixelBox {
	return PixelBox{
		Left:   int(nb.Left * float64(imageWidth)),
		Top:    int(nb.Top * float64(imageHeight)),
		Width:  int(nb.Width * float64(imageWidth)),
		Height: int(nb.Height * float64(imageHeight)),
	}
}

// CorrectBox denormalizes nb against the image size and expands it by
// ExpansionFactor around its center.
//
// The left/top edge moves outward by half the original width/height and is
// clamped at 0. The width/height is multiplied by ExpansionFactor and clamped
// so the box never extends past the right/bottom edge of the image. The
// returned box always satisfies 0 <= Left, 0 <= Top, Left+Width <= imageWidth
// and Top+Height <= imageHeight.
//
// A detection whose width or height denormalizes to 0 yields a box with zero
// width or height; callers should check Empty and skip it.
func CorrectBox(nb NormalizedBox, imageWidth, imageHeight int) PixelBox {
	if imageWidth <= 0 || imageHeight <= 0 {
		return PixelBox{}
	}
	b := Denormalize(nb, imageWidth, imageHeight)

	left, width := expand(b.Left, b.Width, imageWidth)
	top, height := expand(b.Top, b.Height, imageHeight)

	return PixelBox{Left: left, Top: top, Width: width, Height: height}
}

// expand grows a single axis [start, start+size) inside [0, limit).
func expand(start, size, limit int) (int, int) {
	if size < 0 {
		size = 0
	}
	start = clamp(start-size/2, 0, limit)
	grown := int(float64(size) * ExpansionFactor)
	return start, clamp(grown, 0, limit-start)
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
