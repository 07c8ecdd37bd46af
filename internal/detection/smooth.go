package detection

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Smoother is an iterated Savitzky-Golay filter.
//
// Each iteration fits a polynomial of the given degree to every run of Window
// samples by least squares and replaces the centre sample with the fitted
// value. The first and last Window/2 samples take their values from the
// polynomial fitted to the first and last full window respectively, so the
// output has the same length as the input and no padding is invented.
type Smoother struct {
	Window     int `json:"window"`
	Degree     int `json:"degree"`
	Iterations int `json:"iterations"`
}

// DefaultIterations is the number of filter passes used by both default
// smoothers.
const DefaultIterations = 10

// HorizontalSmoother is the default filter for row profiles.
func HorizontalSmoother() Smoother {
	return Smoother{Window: 9, Degree: 2, Iterations: DefaultIterations}
}

// VerticalSmoother is the default filter for column profiles, which are
// usually longer and noisier than row profiles.
func VerticalSmoother() Smoother {
	return Smoother{Window: 21, Degree: 2, Iterations: DefaultIterations}
}

// Validate checks the filter against a profile of length n.
func (s Smoother) Validate(n int) error {
	switch {
	case s.Window <= 0 || s.Window%2 == 0:
		return fmt.Errorf("%w: window %d must be odd and positive", ErrInvalidSmoothingWindow, s.Window)
	case s.Degree < 0 || s.Degree >= s.Window:
		return fmt.Errorf("%w: degree %d must be in [0, window %d)", ErrInvalidSmoothingWindow, s.Degree, s.Window)
	case s.Window >= n:
		return fmt.Errorf("%w: window %d must be less than profile length %d", ErrInvalidSmoothingWindow, s.Window, n)
	case s.Iterations < 1:
		return fmt.Errorf("%w: iterations %d must be at least 1", ErrInvalidSmoothingWindow, s.Iterations)
	}
	return nil
}

// Apply returns the profile smoothed Iterations times. The input is not
// modified.
func (s Smoother) Apply(p Profile) (Profile, error) {
	if err := s.Validate(len(p)); err != nil {
		return nil, err
	}

	hat, err := savgolHat(s.Window, s.Degree)
	if err != nil {
		return nil, err
	}

	out := p
	for i := 0; i < s.Iterations; i++ {
		out = applyHat(hat, s.Window, out)
	}
	return out, nil
}

// savgolHat returns the window x window least-squares projection matrix
// H = A (AᵀA)⁻¹ Aᵀ for the Vandermonde design A[i][k] = (i - window/2)^k.
// Row i of H gives the weights that evaluate the fitted polynomial at
// window position i.
func savgolHat(window, degree int) (*mat.Dense, error) {
	half := window / 2

	a := mat.NewDense(window, degree+1, nil)
	for i := 0; i < window; i++ {
		t := float64(i - half)
		v := 1.0
		for k := 0; k <= degree; k++ {
			a.Set(i, k, v)
			v *= t
		}
	}

	ident := mat.NewDense(window, window, nil)
	for i := 0; i < window; i++ {
		ident.Set(i, i, 1)
	}

	var qr mat.QR
	qr.Factorize(a)

	var pinv mat.Dense
	if err := qr.SolveTo(&pinv, false, ident); err != nil {
		return nil, fmt.Errorf("savitzky-golay fit (window %d, degree %d): %w", window, degree, err)
	}

	var hat mat.Dense
	hat.Mul(a, &pinv)
	return &hat, nil
}

// applyHat runs one filter pass. len(in) must exceed window.
func applyHat(hat *mat.Dense, window int, in Profile) Profile {
	n := len(in)
	half := window / 2
	out := make(Profile, n)

	centre := hat.RawRowView(half)
	for i := half; i < n-half; i++ {
		out[i] = dot(centre, in[i-half:i+half+1])
	}

	head := in[:window]
	tail := in[n-window:]
	for i := 0; i < half; i++ {
		out[i] = dot(hat.RawRowView(i), head)
		out[n-half+i] = dot(hat.RawRowView(half+1+i), tail)
	}
	return out
}

func dot(w []float64, x []float64) float64 {
	var s float64
	for j, v := range w {
		s += v * x[j]
	}
	return s
}
