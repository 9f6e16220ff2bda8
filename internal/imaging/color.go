package imaging

import (
	"fmt"
	"image"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// TagColor describes the most common color of a cropped tag.
//
// Stores color-code their tags (e.g. yellow for discounts), so the dominant
// color is reported next to the recognized text.
type TagColor struct {
	// Hex is the quantized color in "#rrggbb" form.
	Hex string `json:"hex"`

	// Name is a coarse color name such as "yellow" or "white".
	Name string `json:"name"`

	// Percentage is the share of pixels in the dominant bucket (0-100).
	Percentage float64 `json:"percentage"`

	// HSL is the quantized color in HSL space.
	HSL HSLColor `json:"hsl"`
}

type rgbKey struct {
	r, g, b uint8
}

// DominantColor returns the most frequent color of img.
//
// Parameters:
//   - img: The image to sample. Every pixel is counted.
//
// Returns:
//   - *TagColor: The most frequent quantized color, its coarse name, its
//     share of all pixels and its HSL form.
//   - error: Non-nil if img has no pixels.
//
// # Color Quantization
//
// To group similar colors, each 8-bit RGB component is quantized to a multiple
// of 16 before counting:
//
//	quantized = (original / 16) * 16
//
// Ties are broken by the lexically smallest hex value so the result is
// deterministic.
func DominantColor(img image.Image) (*TagColor, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("cannot sample color of empty image")
	}

	counts := make(map[rgbKey]int)
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			counts[rgbKey{
				r: uint8((r >> 8) / 16 * 16),
				g: uint8((g >> 8) / 16 * 16),
				b: uint8((b >> 8) / 16 * 16),
			}]++
			total++
		}
	}

	type bucket struct {
		c   colorful.Color
		hex string
		n   int
	}
	buckets := make([]bucket, 0, len(counts))
	for k, n := range counts {
		c := colorful.Color{R: float64(k.r) / 255.0, G: float64(k.g) / 255.0, B: float64(k.b) / 255.0}
		buckets = append(buckets, bucket{c: c, hex: c.Hex(), n: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].n != buckets[j].n {
			return buckets[i].n > buckets[j].n
		}
		return buckets[i].hex < buckets[j].hex
	})

	top := buckets[0]
	h, s, l := top.c.Hsl()

	return &TagColor{
		Hex:        top.hex,
		Name:       colorName(h, s, l),
		Percentage: float64(top.n) * 100 / float64(total),
		HSL:        HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
	}, nil
}

// colorName maps an HSL color to a coarse human-readable name.
func colorName(h, s, l float64) string {
	switch {
	case l < 0.2:
		return "black"
	case l > 0.85:
		return "white"
	case s < 0.15:
		return "gray"
	}

	switch {
	case h < 15 || h >= 330:
		return "red"
	case h < 45:
		return "orange"
	case h < 70:
		return "yellow"
	case h < 170:
		return "green"
	case h < 260:
		return "blue"
	default:
		return "purple"
	}
}
