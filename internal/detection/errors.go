package detection

import "errors"

var (
	// ErrInvalidSmoothingWindow is returned when a Savitzky-Golay window is
	// even, not larger than the polynomial degree, or not shorter than the
	// profile it is applied to.
	ErrInvalidSmoothingWindow = errors.New("invalid smoothing window")

	// ErrNoMarksFound is returned when a pass finds fewer than two eligible
	// spikes.
	ErrNoMarksFound = errors.New("no marks found")

	// ErrDegenerateRefinedCrop is returned when the horizontal marks are too
	// close together to leave a window for the vertical pass.
	ErrDegenerateRefinedCrop = errors.New("no sample edges detected: refined crop is empty")

	// ErrInvalidParams is returned for out-of-range detection parameters not
	// covered by a more specific error.
	ErrInvalidParams = errors.New("invalid detection parameters")
)
