package detection

import (
	"fmt"

	"github.com/ironsheep/fiducial-tools-mcp/internal/imaging"
)

// Axis selects which dimension of a region a profile runs along.
type Axis int

const (
	// AxisRows produces one sample per row; used to find horizontal marks.
	AxisRows Axis = iota
	// AxisColumns produces one sample per column; used to find vertical marks.
	AxisColumns
)

func (a Axis) String() string {
	switch a {
	case AxisRows:
		return "rows"
	case AxisColumns:
		return "columns"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// MarshalText encodes the axis by name.
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Polarity tells a pass whether marks are brighter or darker than their
// surroundings.
type Polarity int

const (
	// PolarityBright looks for bright lines: profile maxima are marks.
	PolarityBright Polarity = iota
	// PolarityDark looks for dark lines by inverting the profile first.
	PolarityDark
)

func (p Polarity) String() string {
	if p == PolarityDark {
		return "dark"
	}
	return "bright"
}

// MarshalText encodes the polarity by name.
func (p Polarity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePolarity accepts "bright" or "dark"; the empty string is bright.
func ParsePolarity(s string) (Polarity, error) {
	switch s {
	case "", "bright":
		return PolarityBright, nil
	case "dark":
		return PolarityDark, nil
	}
	return PolarityBright, fmt.Errorf("%w: unknown polarity %q", ErrInvalidParams, s)
}

// Profile is a 1-D sequence of mean intensities along one axis.
type Profile []float64

// ExtractProfile averages region along axis.
//
// For AxisRows each sample is the mean of one row restricted to a band of
// band columns centred on the region; for AxisColumns each sample is the mean
// of one column restricted to a centred band of band rows. A band that is
// zero, negative, or wider than the region covers the full extent.
func ExtractProfile(region *imaging.Raster, axis Axis, band int) (Profile, error) {
	if region.Empty() {
		return nil, fmt.Errorf("%w: empty region", imaging.ErrInvalidCrop)
	}

	switch axis {
	case AxisRows:
		lo, hi := centredBand(region.Width, band)
		p := make(Profile, region.Height)
		for y := 0; y < region.Height; y++ {
			var sum float64
			for x := lo; x < hi; x++ {
				sum += float64(region.At(x, y))
			}
			p[y] = sum / float64(hi-lo)
		}
		return p, nil

	case AxisColumns:
		lo, hi := centredBand(region.Height, band)
		sums := make([]float64, region.Width)
		for y := lo; y < hi; y++ {
			row := region.Pix[y*region.Width : (y+1)*region.Width]
			for x, v := range row {
				sums[x] += float64(v)
			}
		}
		p := make(Profile, region.Width)
		for x, s := range sums {
			p[x] = s / float64(hi-lo)
		}
		return p, nil
	}

	return nil, fmt.Errorf("%w: unknown axis %v", ErrInvalidParams, axis)
}

// centredBand returns the half-open range [lo, hi) of width band centred in
// [0, extent), clamped to the extent.
func centredBand(extent, band int) (int, int) {
	if band <= 0 || band >= extent {
		return 0, extent
	}
	lo := extent/2 - band/2
	if lo < 0 {
		lo = 0
	}
	hi := lo + band
	if hi > extent {
		hi = extent
	}
	return lo, hi
}

// Invert maps every sample v to 255-v, turning dark marks into spikes.
func (p Profile) Invert() Profile {
	out := make(Profile, len(p))
	for i, v := range p {
		out[i] = 255 - v
	}
	return out
}
