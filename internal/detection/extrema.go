package detection

// ExtremumKind classifies a turning point of a profile.
type ExtremumKind int

const (
	// Min is a local minimum: the slope changes from falling to rising.
	Min ExtremumKind = iota
	// Max is a local maximum: the slope changes from rising to falling.
	Max
)

func (k ExtremumKind) String() string {
	if k == Max {
		return "max"
	}
	return "min"
}

// MarshalText encodes the kind as "min" or "max".
func (k ExtremumKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Extremum is a turning point at Index of a profile.
type Extremum struct {
	Index int          `json:"index"`
	Kind  ExtremumKind `json:"kind"`
}

// ExtremumList holds extrema in increasing index order. Kinds strictly
// alternate.
type ExtremumList []Extremum

// flatTolerance is the largest first difference treated as zero slope.
// Profiles are 8-bit means, so anything this small is rounding noise left by
// the smoothing filter rather than image content.
const flatTolerance = 1e-9

// FindExtrema scans p left to right and reports every point where the sign
// of the slope changes: + to - is a Max, - to + is a Min.
//
// Zero slopes are skipped, so a flat run never starts an extremum of its
// own. When a flat run separates two opposite slopes, the extremum is placed
// at the middle of the run.
func FindExtrema(p Profile) ExtremumList {
	var out ExtremumList

	prevSign := 0
	prevAt := 0 // index of the last non-zero difference
	for i := 0; i+1 < len(p); i++ {
		s := slopeSign(p[i+1] - p[i])
		if s == 0 {
			continue
		}
		if prevSign != 0 && s != prevSign {
			kind := Min
			if prevSign > 0 {
				kind = Max
			}
			out = append(out, Extremum{Index: (prevAt + 1 + i) / 2, Kind: kind})
		}
		prevSign = s
		prevAt = i
	}
	return out
}

// Indices returns the indices of extrema of the given kind.
func (l ExtremumList) Indices(kind ExtremumKind) []int {
	var idx []int
	for _, e := range l {
		if e.Kind == kind {
			idx = append(idx, e.Index)
		}
	}
	return idx
}

func slopeSign(d float64) int {
	switch {
	case d > flatTolerance:
		return 1
	case d < -flatTolerance:
		return -1
	}
	return 0
}
