package detection

// Candidate is a spike: a maximum flanked by the minima on either side of it.
// The zero Candidate marks an empty selection slot.
type Candidate struct {
	Left  int `json:"left"`
	Peak  int `json:"peak"`
	Right int `json:"right"`

	// Height is the profile value at Peak.
	Height float64 `json:"height"`

	// Prominence is (p[Peak]-p[Left]) + (p[Peak]-p[Right]).
	Prominence float64 `json:"prominence"`
}

// Width is the distance between the flanking minima.
func (c Candidate) Width() int {
	return c.Right - c.Left
}

// Empty reports whether c is an unfilled slot.
func (c Candidate) Empty() bool {
	return c.Prominence == 0 && c.Peak == 0
}

// SpikeLimits bounds which candidates may be selected.
type SpikeLimits struct {
	// PeakWidthMax rejects candidates whose flanking minima are this many
	// samples apart or more. Genuine marks are sharp.
	PeakWidthMax int `json:"peak_width_max"`

	// PeakDistMax rejects candidates whose peak is this many samples or more
	// from both ends of the profile. Marks sit near the crop boundaries.
	PeakDistMax int `json:"peak_dist_max"`
}

// DefaultSpikeLimits returns the limits used when none are configured.
func DefaultSpikeLimits() SpikeLimits {
	return SpikeLimits{PeakWidthMax: 80, PeakDistMax: 1000}
}

// eligible applies the width and position limits to c in a profile of
// length n.
func (l SpikeLimits) eligible(c Candidate, n int) bool {
	if c.Width() >= l.PeakWidthMax {
		return false
	}
	return c.Peak < l.PeakDistMax || c.Peak > n-l.PeakDistMax
}

// SpikePair is the result of spike selection. First holds the more prominent
// spike; empty slots hold the zero Candidate.
type SpikePair struct {
	First  Candidate `json:"first"`
	Second Candidate `json:"second"`
}

// Found returns the number of filled slots.
func (p SpikePair) Found() int {
	n := 0
	if !p.First.Empty() {
		n++
	}
	if !p.Second.Empty() {
		n++
	}
	return n
}

// Peaks returns the peak indices of both slots.
func (p SpikePair) Peaks() [2]int {
	return [2]int{p.First.Peak, p.Second.Peak}
}

// Candidates returns every (min, max, min) triple of ext in p, in order,
// without applying any limits.
func Candidates(p Profile, ext ExtremumList) []Candidate {
	var out []Candidate
	for i := 0; i+2 < len(ext); i++ {
		a, b, c := ext[i], ext[i+1], ext[i+2]
		if a.Kind != Min || b.Kind != Max || c.Kind != Min {
			continue
		}
		out = append(out, Candidate{
			Left:       a.Index,
			Peak:       b.Index,
			Right:      c.Index,
			Height:     p[b.Index],
			Prominence: (p[b.Index] - p[a.Index]) + (p[b.Index] - p[c.Index]),
		})
	}
	return out
}

// SelectSpikePair streams over the candidates of ext left to right and keeps
// the two most prominent eligible ones.
//
// If fewer than two candidates are eligible, the missing slots stay empty;
// callers decide whether that is an error.
func SelectSpikePair(p Profile, ext ExtremumList, limits SpikeLimits) SpikePair {
	var best topTwo
	for _, c := range Candidates(p, ext) {
		if limits.eligible(c, len(p)) {
			best.offer(c)
		}
	}
	return best.pair()
}

// topTwo is the running two-slot selection.
//
// A new candidate competes only with the weaker slot, and slot 0 counts as
// the weaker one when both hold equal prominence. It replaces that slot only
// when strictly more prominent. Consequently, once both slots hold the same
// prominence, a later candidate with that same prominence is dropped and the
// earlier ones are kept.
type topTwo struct {
	slots [2]Candidate
}

// offer considers c and reports whether it was kept.
func (t *topTwo) offer(c Candidate) bool {
	target := 0
	if t.slots[1].Prominence < t.slots[0].Prominence {
		target = 1
	}
	if c.Prominence > t.slots[target].Prominence {
		t.slots[target] = c
		return true
	}
	return false
}

// pair orders the slots by prominence, breaking ties toward the earlier
// peak, with empty slots last.
func (t *topTwo) pair() SpikePair {
	a, b := t.slots[0], t.slots[1]
	if a.Empty() || (!b.Empty() && ranksBefore(b, a)) {
		a, b = b, a
	}
	return SpikePair{First: a, Second: b}
}

func ranksBefore(x, y Candidate) bool {
	if x.Prominence != y.Prominence {
		return x.Prominence > y.Prominence
	}
	return x.Peak < y.Peak
}
