// Package imaging provides the raster, calibration and rendering layer for
// fiducial measurement.
//
// Input files (TIFF, PNG, JPEG, GIF, BMP) are decoded and reduced to an 8-bit
// grayscale Raster. Everything downstream of decoding works on Raster values
// and plain integer coordinates; color only reappears when annotated images
// and profile plots are rendered for output.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: column (0 = leftmost pixel)
//   - Y: row (0 = topmost pixel)
//   - A CropWindow is expressed as margins excluded from each edge, so the
//     interior is [Left, Width-Right) x [Top, Height-Bottom)
//
// # Calibration
//
// A Calibration is derived from the raster width and the real-world width of
// the full image. The same pixels-per-unit ratio is applied to both axes.
//
// # Rendering
//
// Annotate draws crop lines, the averaged band, detected marks and measurement
// arrows on a colour copy of a raster. PlotProfile renders a 1200x800 line
// chart of a raw and smoothed profile with gonum/plot. Both use the package palette defined in
// color.go and never modify their inputs.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Rasters are treated as
// immutable once built, so detection may run on the same cached raster from
// several goroutines.
//
// # Error Handling
//
// Functions return errors wrapping the package sentinels:
//   - ErrMissingFile when an input path does not resolve to a regular file
//   - ErrInvalidCrop when crop margins leave no interior
//   - ErrInvalidWidth when the real-world width is not a positive number
//
// Decode and encode failures are wrapped with the offending path.
package imaging
