package detection

import (
	"fmt"
	"image"

	"github.com/ironsheep/fiducial-tools-mcp/internal/imaging"
)

// Params configures a full two-pass measurement.
type Params struct {
	// RealWidth is the width of the whole image in physical units.
	RealWidth float64 `json:"real_width"`
	Unit      string  `json:"unit"`

	// Crop is the user crop applied before the horizontal pass.
	Crop imaging.CropWindow `json:"crop"`

	// BandWidth is the number of central columns averaged by the horizontal
	// pass. Zero or oversize means the full crop width.
	BandWidth int `json:"band_width"`

	// VerticalCropExtra is removed inside each horizontal mark before the
	// vertical pass, so the marks themselves do not disturb it.
	VerticalCropExtra int `json:"vertical_crop_extra"`

	Limits   SpikeLimits `json:"limits"`
	Polarity Polarity    `json:"polarity"`

	Horizontal Smoother `json:"horizontal_smoother"`
	Vertical   Smoother `json:"vertical_smoother"`
}

// DefaultParams returns the parameters tuned for the TEM micrographs the
// tool was built for.
func DefaultParams() Params {
	return Params{
		RealWidth:         10.0,
		Unit:              "microns",
		Crop:              imaging.CropWindow{Top: 100, Bottom: 300, Left: 100, Right: 100},
		BandWidth:         2000,
		VerticalCropExtra: 50,
		Limits:            DefaultSpikeLimits(),
		Polarity:          PolarityBright,
		Horizontal:        HorizontalSmoother(),
		Vertical:          VerticalSmoother(),
	}
}

// Validate checks parameters that do not depend on the image.
func (p Params) Validate() error {
	if _, err := imaging.NewCalibration(1, p.RealWidth, p.Unit); err != nil {
		return err
	}
	switch {
	case p.BandWidth < 0:
		return fmt.Errorf("%w: band_width %d is negative", ErrInvalidParams, p.BandWidth)
	case p.VerticalCropExtra < 0:
		return fmt.Errorf("%w: vertical_crop_extra %d is negative", ErrInvalidParams, p.VerticalCropExtra)
	case p.Limits.PeakWidthMax <= 0:
		return fmt.Errorf("%w: peak_width_max %d must be positive", ErrInvalidParams, p.Limits.PeakWidthMax)
	case p.Limits.PeakDistMax <= 0:
		return fmt.Errorf("%w: peak_dist_max %d must be positive", ErrInvalidParams, p.Limits.PeakDistMax)
	}
	return nil
}

// HorizontalPass is the pass configuration for the sample's top and bottom
// edges.
func (p Params) HorizontalPass() PassConfig {
	return PassConfig{
		Axis:     AxisRows,
		Band:     p.BandWidth,
		Smoother: p.Horizontal,
		Limits:   p.Limits,
		Polarity: p.Polarity,
	}
}

// VerticalPass is the pass configuration for the vertical marks. It always
// averages every row of its window.
func (p Params) VerticalPass() PassConfig {
	return PassConfig{
		Axis:     AxisColumns,
		Smoother: p.Vertical,
		Limits:   p.Limits,
		Polarity: p.Polarity,
	}
}

// Measurement is the result of a full two-pass analysis.
type Measurement struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	Calibration imaging.Calibration `json:"calibration"`
	RealWidth   float64             `json:"real_width"`

	Crop        imaging.CropWindow `json:"crop"`
	RefinedCrop imaging.CropWindow `json:"refined_crop"`

	// Band is the absolute column range [start, end) averaged by the
	// horizontal pass.
	Band [2]int `json:"band"`

	Horizontal *DetectionResult `json:"horizontal"`
	Vertical   *DetectionResult `json:"vertical"`
}

// Detect runs the horizontal pass over p.Crop, derives the refined window,
// and runs the vertical pass inside it. The first failure aborts the
// measurement.
func Detect(r *imaging.Raster, p Params) (*Measurement, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if r.Empty() {
		return nil, fmt.Errorf("%w: empty raster", imaging.ErrInvalidCrop)
	}
	if err := p.Crop.Validate(r.Width, r.Height); err != nil {
		return nil, err
	}

	cal, err := imaging.NewCalibration(r.Width, p.RealWidth, p.Unit)
	if err != nil {
		return nil, err
	}

	horiz, err := RunPass(r, p.Crop, p.HorizontalPass(), cal)
	if err != nil {
		return nil, err
	}

	refined, err := RefineWindow(r.Height, p.Crop, horiz, p.VerticalCropExtra)
	if err != nil {
		return nil, err
	}

	vert, err := RunPass(r, refined, p.VerticalPass(), cal)
	if err != nil {
		return nil, err
	}

	cropW := r.Width - p.Crop.Left - p.Crop.Right
	lo, hi := centredBand(cropW, p.BandWidth)

	return &Measurement{
		Width:       r.Width,
		Height:      r.Height,
		Calibration: cal,
		RealWidth:   p.RealWidth,
		Crop:        p.Crop,
		RefinedCrop: refined,
		Band:        [2]int{lo + p.Crop.Left, hi + p.Crop.Left},
		Horizontal:  horiz,
		Vertical:    vert,
	}, nil
}

// RefineWindow computes the vertical-pass window from a horizontal result:
// the strip between the two marks, shrunk by extra on each side, spanning
// the user crop's columns.
func RefineWindow(height int, crop imaging.CropWindow, horiz *DetectionResult, extra int) (imaging.CropWindow, error) {
	a, b := horiz.Local[0], horiz.Local[1]
	if a > b {
		a, b = b, a
	}
	lo := a + extra
	hi := b - extra
	if hi-lo <= 0 {
		return imaging.CropWindow{}, fmt.Errorf("%w: marks at rows %d and %d leave %d rows after removing %d on each side",
			ErrDegenerateRefinedCrop, a+crop.Top, b+crop.Top, hi-lo, extra)
	}

	return imaging.CropWindow{
		Top:    crop.Top + lo,
		Bottom: height - (crop.Top + hi),
		Left:   crop.Left,
		Right:  crop.Right,
	}, nil
}

// Annotation returns the geometry to draw for this measurement.
func (m *Measurement) Annotation() imaging.Annotation {
	return imaging.Annotation{
		Crop:            m.Crop,
		ScaleLabel:      m.Calibration.Label(m.RealWidth),
		Band:            m.Band,
		HorizontalMarks: m.Horizontal.Absolute,
		HorizontalLabel: m.Calibration.Label(m.Horizontal.Distance),
		RefinedTop:      m.RefinedCrop.Top,
		RefinedBottom:   m.Height - m.RefinedCrop.Bottom,
		VerticalMarks:   m.Vertical.Absolute,
		VerticalLabel:   m.Calibration.Label(m.Vertical.Distance),
	}
}

// PlotData returns the diagnostic chart content for one pass.
func (r *DetectionResult) PlotData() imaging.PlotData {
	d := imaging.PlotData{
		Raw:      r.Profile,
		Smoothed: r.Smoothed,
		Minima:   r.Extrema.Indices(Min),
		Maxima:   r.Extrema.Indices(Max),
		Spikes:   [2]int{-1, -1},
		YLabel:   "Average gray level",
	}
	if !r.Pair.First.Empty() {
		d.Spikes[0] = r.Pair.First.Peak
	}
	if !r.Pair.Second.Empty() {
		d.Spikes[1] = r.Pair.Second.Peak
	}

	if r.Axis == AxisRows {
		d.Title = "Average gray level of each row vs pixel distance from the top"
		d.XLabel = "Distance from top of image, [pixels]"
		d.TickStep = 200
	} else {
		d.Title = "Average gray level of each column vs pixel distance from the left"
		d.XLabel = "Distance from the left of image, [pixels]"
		d.TickStep = 500
	}
	return d
}

// Render draws the annotated image and both diagnostic plots.
func (m *Measurement) Render(r *imaging.Raster) (annotated, horizontal, vertical *image.NRGBA, err error) {
	if horizontal, err = imaging.PlotProfile(m.Horizontal.PlotData()); err != nil {
		return nil, nil, nil, err
	}
	if vertical, err = imaging.PlotProfile(m.Vertical.PlotData()); err != nil {
		return nil, nil, nil, err
	}
	return imaging.Annotate(r, m.Annotation()), horizontal, vertical, nil
}
