package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/disintegration/imaging"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	plotWidth  = 1200
	plotHeight = 800
	plotDPI    = 96
)

// PlotData is the content of one profile diagnostic chart.
type PlotData struct {
	Title  string
	XLabel string
	YLabel string

	// Raw is the unsmoothed profile; Smoothed has the same length.
	Raw      []float64
	Smoothed []float64

	// Minima and Maxima are indices into Smoothed.
	Minima []int
	Maxima []int

	// Spikes are the selected peak indices, labelled "Spike 1", "Spike 2".
	// A negative index is not drawn.
	Spikes [2]int

	// TickStep is the spacing of x-axis ticks in samples. Zero picks 200.
	TickStep int
}

// PlotProfile renders a 1200x800 line chart of a profile and its smoothed
// version with the detected extrema and selected spikes marked.
func PlotProfile(d PlotData) (*image.NRGBA, error) {
	p := plot.New()
	p.Title.Text = d.Title
	p.X.Label.Text = d.XLabel
	p.Y.Label.Text = d.YLabel
	p.X.LineStyle.Color = ColorPlotAxis
	p.Y.LineStyle.Color = ColorPlotAxis
	p.Legend.Top = true

	n := len(d.Raw)
	if len(d.Smoothed) > n {
		n = len(d.Smoothed)
	}
	var ticks []plot.Tick
	for _, t := range xTicks(n, d.TickStep) {
		ticks = append(ticks, plot.Tick{Value: float64(t), Label: strconv.Itoa(t)})
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)

	if err := addSeries(p, "raw average", d.Raw, ColorPlotRaw); err != nil {
		return nil, err
	}
	if err := addSeries(p, "savitzky-golay filter", d.Smoothed, ColorPlotSmoothed); err != nil {
		return nil, err
	}
	if err := addMarkers(p, "min", d.Smoothed, d.Minima, ColorPlotMin); err != nil {
		return nil, err
	}
	if err := addMarkers(p, "max", d.Smoothed, d.Maxima, ColorPlotMax); err != nil {
		return nil, err
	}

	var spikes plotter.XYLabels
	for k, i := range d.Spikes {
		if i < 0 || i >= len(d.Smoothed) {
			continue
		}
		spikes.XYs = append(spikes.XYs, plotter.XY{X: float64(i), Y: d.Smoothed[i]})
		spikes.Labels = append(spikes.Labels, fmt.Sprintf("Spike %d", k+1))
	}
	if len(spikes.XYs) > 0 {
		labels, err := plotter.NewLabels(spikes)
		if err != nil {
			return nil, fmt.Errorf("failed to label spikes: %w", err)
		}
		p.Add(labels)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(plotWidth*vg.Inch/plotDPI, plotHeight*vg.Inch/plotDPI),
		vgimg.UseDPI(plotDPI),
	)
	p.Draw(draw.New(c))
	return imaging.Clone(c.Image()), nil
}

func addSeries(p *plot.Plot, name string, values []float64, col color.Color) error {
	if len(values) == 0 {
		return nil
	}
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i] = plotter.XY{X: float64(i), Y: v}
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("failed to plot %s: %w", name, err)
	}
	line.LineStyle.Color = col
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

func addMarkers(p *plot.Plot, name string, values []float64, idx []int, col color.Color) error {
	var xys plotter.XYs
	for _, i := range idx {
		if i >= 0 && i < len(values) {
			xys = append(xys, plotter.XY{X: float64(i), Y: values[i]})
		}
	}
	if len(xys) == 0 {
		return nil
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("failed to plot %s: %w", name, err)
	}
	sc.GlyphStyle.Color = col
	sc.GlyphStyle.Radius = vg.Points(3)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(sc)
	p.Legend.Add(name, sc)
	return nil
}

// xTicks returns tick positions every step samples, always ending with the
// last sample so the full extent is labelled.
func xTicks(n, step int) []int {
	if n <= 0 {
		return nil
	}
	if step <= 0 {
		step = 200
	}
	var ticks []int
	for t := 0; t < n; t += step {
		ticks = append(ticks, t)
	}
	if last := n - 1; ticks[len(ticks)-1] != last {
		ticks = append(ticks, last)
	}
	return ticks
}
