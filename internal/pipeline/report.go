package pipeline

import (
	"errors"

	"github.com/ironsheep/pricetag-ocr/internal/detection"
	"github.com/ironsheep/pricetag-ocr/internal/geometry"
	"github.com/ironsheep/pricetag-ocr/internal/imaging"
)

// TagResult is the outcome of processing one detected tag.
type TagResult struct {
	// Index is the tag's sequence number; the crop is saved as tag_<Index>.jpg.
	Index int `json:"index"`

	// Detection is the detector output the tag came from.
	Detection detection.Result `json:"detection"`

	// Box is the corrected pixel region that was cropped.
	Box geometry.PixelBox `json:"box"`

	// Path is where the crop was written. Empty if saving failed.
	Path string `json:"path,omitempty"`

	// Color is the tag's dominant color, when it could be sampled.
	Color *imaging.TagColor `json:"color,omitempty"`

	// Lines is the recognized text in reading order.
	Lines []string `json:"lines"`

	// Err is a *TagError when any stage failed.
	Err error `json:"-"`
}

// Report summarizes the processing of one image.
type Report struct {
	// ImagePath is the processed photo.
	ImagePath string `json:"image_path"`

	// Detected is the number of objects the detector returned.
	Detected int `json:"detected"`

	// Qualified is the number of detections that passed the filter.
	Qualified int `json:"qualified"`

	// Skipped counts qualified detections whose corrected box was empty.
	Skipped int `json:"skipped"`

	// Tags holds one result per processed tag, ordered by Index.
	Tags []TagResult `json:"tags"`
}

// Processed returns the number of tags that were attempted.
func (r *Report) Processed() int {
	return len(r.Tags)
}

// Failed returns the number of tags that ended with an error.
func (r *Report) Failed() int {
	n := 0
	for _, t := range r.Tags {
		if t.Err != nil {
			n++
		}
	}
	return n
}

// Err joins the errors of all failed tags, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, t := range r.Tags {
		if t.Err != nil {
			errs = append(errs, t.Err)
		}
	}
	return errors.Join(errs...)
}
