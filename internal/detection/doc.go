// Package detection locates pairs of fiducial marks in grayscale micrographs
// and measures the physical distance between them.
//
// # Algorithm Overview
//
// Every measurement is built from passes. A pass scans one axis of a cropped
// region:
//
//  1. Profile extraction: average the region along the axis, giving one mean
//     intensity per row (AxisRows) or per column (AxisColumns). Row profiles
//     are restricted to a centred band of columns.
//  2. Smoothing: apply a Savitzky-Golay filter several times. Iterating a
//     small window suppresses noise and collapses secondary wiggles around a
//     genuine edge into a single extremum without moving it.
//  3. Extrema: every index where the slope of the smoothed profile changes
//     sign, classified as a minimum or a maximum.
//  4. Spike selection: each (min, max, min) triple is a spike candidate with
//     prominence (p[max]-p[min1]) + (p[max]-p[min2]). Candidates that are too
//     wide or too far from both ends of the profile are ignored; the two most
//     prominent of the rest are the marks.
//
// Detect runs a horizontal pass (rows) to find the top and bottom edges
// of the sample, shrinks the window to the strip between them, and runs a
// vertical pass (columns) inside that strip.
//
// # Coordinate System
//
// Positions in a DetectionResult are reported twice: Local, relative to the
// cropped region, and Absolute, in the coordinates of the original raster.
//
// # Units
//
// Pixel separations are converted with an imaging.Calibration, derived from
// the raster width and the caller-supplied real-world width. The same pixel
// pitch applies to both axes.
//
// # Limitations
//
//   - Extrema are located to the nearest sample; there is no sub-pixel fit.
//   - A flat run yields at most one extremum, placed at its midpoint.
//   - Exactly two marks are reported per pass.
package detection
