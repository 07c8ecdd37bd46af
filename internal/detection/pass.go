package detection

import (
	"fmt"

	"github.com/ironsheep/fiducial-tools-mcp/internal/imaging"
)

// PassConfig configures one detection pass.
type PassConfig struct {
	Axis     Axis        `json:"axis"`
	Band     int         `json:"band"`
	Smoother Smoother    `json:"smoother"`
	Limits   SpikeLimits `json:"limits"`
	Polarity Polarity    `json:"polarity"`
}

// DetectionResult is the outcome of one pass.
type DetectionResult struct {
	Axis   Axis               `json:"axis"`
	Window imaging.CropWindow `json:"window"`

	// Local holds the two mark positions in the cropped region, First then
	// Second spike. Absolute holds the same positions in raster coordinates.
	Local    [2]int `json:"local"`
	Absolute [2]int `json:"absolute"`

	PixelDistance int     `json:"pixel_distance"`
	Distance      float64 `json:"distance"`

	Pair SpikePair `json:"pair"`

	// Diagnostics, for plots. Profile is in the polarity used for detection.
	Profile  Profile      `json:"-"`
	Smoothed Profile      `json:"-"`
	Extrema  ExtremumList `json:"-"`
}

// Analysis is the intermediate state of a pass up to spike selection.
type Analysis struct {
	Profile  Profile
	Smoothed Profile
	Extrema  ExtremumList
	Pair     SpikePair
}

// AnalyzeRegion runs extraction, smoothing, extremum finding and spike
// selection over an already cropped region. It never fails for lack of
// marks; see RunPass for that.
func AnalyzeRegion(region *imaging.Raster, cfg PassConfig) (*Analysis, error) {
	profile, err := ExtractProfile(region, cfg.Axis, cfg.Band)
	if err != nil {
		return nil, err
	}
	if cfg.Polarity == PolarityDark {
		profile = profile.Invert()
	}

	smoothed, err := cfg.Smoother.Apply(profile)
	if err != nil {
		return nil, fmt.Errorf("%s pass: %w", cfg.Axis, err)
	}

	ext := FindExtrema(smoothed)
	return &Analysis{
		Profile:  profile,
		Smoothed: smoothed,
		Extrema:  ext,
		Pair:     SelectSpikePair(smoothed, ext, cfg.Limits),
	}, nil
}

// RunPass crops r to window, analyses the region along cfg.Axis, and
// converts the selected mark separation to physical units with cal.
func RunPass(r *imaging.Raster, window imaging.CropWindow, cfg PassConfig, cal imaging.Calibration) (*DetectionResult, error) {
	region, err := r.Crop(window)
	if err != nil {
		return nil, fmt.Errorf("%s pass: %w", cfg.Axis, err)
	}

	an, err := AnalyzeRegion(region, cfg)
	if err != nil {
		return nil, err
	}

	if found := an.Pair.Found(); found < 2 {
		return nil, fmt.Errorf("%w: %s pass found %d of 2 spikes among %d extrema (peak_width_max=%d, peak_dist_max=%d, profile length %d)",
			ErrNoMarksFound, cfg.Axis, found, len(an.Extrema), cfg.Limits.PeakWidthMax, cfg.Limits.PeakDistMax, len(an.Profile))
	}

	local := an.Pair.Peaks()
	offset := window.Top
	if cfg.Axis == AxisColumns {
		offset = window.Left
	}

	return &DetectionResult{
		Axis:          cfg.Axis,
		Window:        window,
		Local:         local,
		Absolute:      [2]int{local[0] + offset, local[1] + offset},
		PixelDistance: absInt(local[0] - local[1]),
		Distance:      cal.Distance(local[0], local[1]),
		Pair:          an.Pair,
		Profile:       an.Profile,
		Smoothed:      an.Smoothed,
		Extrema:       an.Extrema,
	}, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
