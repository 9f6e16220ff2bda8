// Package pipeline turns a shelf photo into recognized price-tag text.
//
// For every input image a Processor runs the following steps:
//
//  1. Load the photo and send it to the detector once.
//  2. Keep detections whose label is configured and whose probability is
//     strictly above the threshold, in detector order.
//  3. Convert each kept box to pixels and expand it (geometry.CorrectBox).
//     Empty boxes are logged and skipped without consuming a tag index.
//  4. For each remaining box: crop, save as tag_<n>.jpg, upload to the OCR
//     service and report the recognized lines.
//
// Image-level failures (unreadable photo, detector unreachable or rejecting
// credentials) end processing of that image and are returned as errors.
// Failures in step 4 are isolated to their tag: they are recorded as a
// *TagError in the Report and the remaining tags are still processed.
//
// Tags run sequentially by default. With more than one worker they run on a
// bounded pool sharing the read-only source image; each tag's console block is
// written as a unit, but blocks may appear in any order.
package pipeline
