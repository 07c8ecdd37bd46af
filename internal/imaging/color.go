package imaging

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Annotation palette. The crop, band and refined-window colours follow the
// conventions of the existing lab tooling: red for user input, green for
// derived windows.
var (
	ColorCrop       = mustHex("#FF0000")
	ColorCentre     = mustHex("#00FF00")
	ColorScale      = mustHex("#FF00FF")
	ColorBand       = mustHex("#00FF00")
	ColorHorizontal = mustHex("#FFFF00")
	ColorRefined    = mustHex("#00FF00")
	ColorVertical   = mustHex("#0064FF")
)

// Plot palette for the profile diagnostics.
var (
	ColorPlotRaw      = mustHex("#0000FF")
	ColorPlotSmoothed = mustHex("#FF0000")
	ColorPlotMin      = mustHex("#008000")
	ColorPlotMax      = mustHex("#FFA500")
	ColorPlotAxis     = mustHex("#000000")
)

// ParseColor parses a "#RRGGBB" or "#RGB" hex colour.
func ParseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return c, nil
}

// mustHex is ParseColor for the fixed palettes above.
func mustHex(hex string) color.Color {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}
