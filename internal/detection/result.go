package detection

import (
	"context"

	"github.com/ironsheep/pricetag-ocr/internal/geometry"
)

// DefaultLabel is the tag name the price-tag model assigns to price tags.
const DefaultLabel = "PriceTag"

// DefaultThreshold is the probability a detection must exceed to be processed.
const DefaultThreshold = 0.5

// Detector finds labeled objects in an encoded image.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]Result, error)
}

// Result is a single object reported by a detector.
type Result struct {
	// Label is the class name assigned by the model (e.g. "PriceTag").
	Label string `json:"label"`

	// Probability is the model's confidence in the range 0.0 to 1.0.
	Probability float64 `json:"probability"`

	// Box is the object's bounding box as fractions of the image size.
	Box geometry.NormalizedBox `json:"box"`
}

// Filter selects the detections worth cropping.
type Filter struct {
	// Labels lists the accepted class names. Matching is exact.
	Labels []string

	// Threshold is the exclusive lower bound on Probability.
	Threshold float64
}

// DefaultFilter accepts price tags detected with more than 50% probability.
func DefaultFilter() Filter {
	return Filter{Labels: []string{DefaultLabel}, Threshold: DefaultThreshold}
}

// Accept reports whether r has an accepted label and a probability strictly
// greater than the threshold. A probability equal to the threshold is rejected.
func (f Filter) Accept(r Result) bool {
	if r.Probability <= f.Threshold {
		return false
	}
	for _, l := range f.Labels {
		if l == r.Label {
			return true
		}
	}
	return false
}

// Apply returns the accepted results in their original order.
func (f Filter) Apply(results []Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if f.Accept(r) {
			out = append(out, r)
		}
	}
	return out
}

// DetectorFunc adapts an ordinary function to the Detector interface.
type DetectorFunc func(ctx context.Context, image []byte) ([]Result, error)

// Detect calls f(ctx, image).
func (f DetectorFunc) Detect(ctx context.Context, image []byte) ([]Result, error) {
	return f(ctx, image)
}
