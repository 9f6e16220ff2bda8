// Package imaging provides the raster operations used by the price-tag pipeline.
//
// This package loads source photographs, cuts detected tag regions out of them,
// prepares crops for upload to the OCR service and encodes them for storage.
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Coordinate System
//
// Crop regions are geometry.PixelBox values relative to the image origin:
//   - (Left, Top) is inclusive
//   - (Left+Width, Top+Height) is exclusive
//
// Images whose bounds do not start at (0,0) are handled by offsetting the box
// by the image's minimum point.
//
// # Supported Formats
//
// Load decodes PNG, JPEG and GIF through the standard library and BMP, TIFF and
// WebP through golang.org/x/image. Crops are always written as JPEG.
//
// # Thread Safety
//
// Every function is stateless and never mutates its input image, so a single
// decoded source may be shared read-only between goroutines cropping different
// regions.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Empty crop regions or regions outside the image bounds (ErrInvalidRegion)
//   - File I/O errors during image loading or saving
//   - Encoding errors during image output
package imaging
