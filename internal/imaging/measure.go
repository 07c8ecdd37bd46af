package imaging

import (
	"fmt"
	"math"
)

// Calibration converts pixel separations to physical units.
//
// The pixel pitch is derived from the horizontal raster dimension and the
// caller-supplied real-world width of the full image; it applies equally to
// both axes.
type Calibration struct {
	// PixelsPerUnit is the number of pixels per physical unit.
	PixelsPerUnit float64 `json:"pixels_per_unit"`

	// Unit is a display label for the physical unit, e.g. "microns".
	Unit string `json:"unit"`
}

// NewCalibration builds a calibration for an image rasterWidth pixels wide
// that spans realWidth physical units.
func NewCalibration(rasterWidth int, realWidth float64, unit string) (Calibration, error) {
	if math.IsNaN(realWidth) || math.IsInf(realWidth, 0) || realWidth <= 0 {
		return Calibration{}, fmt.Errorf("%w: %v", ErrInvalidWidth, realWidth)
	}
	if rasterWidth <= 0 {
		return Calibration{}, fmt.Errorf("%w: raster width %d", ErrInvalidCrop, rasterWidth)
	}
	return Calibration{
		PixelsPerUnit: float64(rasterWidth) / realWidth,
		Unit:          unit,
	}, nil
}

// Distance converts the separation between two pixel positions on one axis
// to physical units. The result does not depend on argument order.
func (c Calibration) Distance(a, b int) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	return float64(d) / c.PixelsPerUnit
}

// Label formats a physical distance rounded to three decimals with the unit.
func (c Calibration) Label(distance float64) string {
	if c.Unit == "" {
		return fmt.Sprintf("%g", roundTo(distance, 3))
	}
	return fmt.Sprintf("%g %s", roundTo(distance, 3), c.Unit)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
