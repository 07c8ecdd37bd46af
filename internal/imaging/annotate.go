package imaging

import (
	"image"
)

// Annotation is the geometry drawn on top of an analysed raster. All
// positions are absolute raster coordinates.
type Annotation struct {
	// Crop is the user crop window.
	Crop CropWindow

	// ScaleLabel describes the real-world width of the full image.
	ScaleLabel string

	// Band holds the first and last+1 columns averaged by the horizontal pass.
	Band [2]int

	// HorizontalMarks are the rows of the two horizontal marks.
	HorizontalMarks [2]int
	HorizontalLabel string

	// RefinedTop and RefinedBottom bound the rows scanned by the vertical pass.
	RefinedTop    int
	RefinedBottom int

	// VerticalMarks are the columns of the two vertical marks.
	VerticalMarks [2]int
	VerticalLabel string
}

// Annotate draws the annotation onto a colour copy of r. The raster itself is
// not modified.
func Annotate(r *Raster, a Annotation) *image.NRGBA {
	c := newCanvas(r.Gray())
	w, h := r.Width, r.Height
	scale := labelScale(w)

	// User crop and its centre.
	c.line(0, h-a.Crop.Bottom, w, h-a.Crop.Bottom, 5, ColorCrop)
	c.line(0, a.Crop.Top, w, a.Crop.Top, 5, ColorCrop)
	c.line(a.Crop.Left, 0, a.Crop.Left, h, 5, ColorCrop)
	c.line(w-a.Crop.Right, 0, w-a.Crop.Right, h, 5, ColorCrop)

	centre := a.Crop.Centre(w, h)
	centreX, centreY := centre.X, centre.Y
	c.circle(centreX, centreY, 10, 3, ColorCentre)

	// Full-width scale arrow in the bottom margin.
	scaleY := h - a.Crop.Bottom/2
	c.doubleArrow(0, scaleY, w, scaleY, 6, 0.04, ColorScale)
	c.text(centreX-textWidth(a.ScaleLabel, scale)/2, scaleY-15, a.ScaleLabel, scale, ColorScale)

	// Band averaged by the horizontal pass.
	c.line(a.Band[0], 0, a.Band[0], h, 2, ColorBand)
	c.line(a.Band[1], 0, a.Band[1], h, 2, ColorBand)

	// Horizontal marks with a vertical measurement arrow at three quarters width.
	for _, y := range a.HorizontalMarks {
		c.line(0, y, w, y, 3, ColorHorizontal)
	}
	arrowX := w * 3 / 4
	c.doubleArrow(arrowX, a.HorizontalMarks[0], arrowX, a.HorizontalMarks[1], 6, 0.04, ColorHorizontal)
	c.text(arrowX+10, centreY, a.HorizontalLabel, scale, ColorHorizontal)

	// Window scanned by the vertical pass.
	c.line(0, a.RefinedTop, w, a.RefinedTop, 2, ColorRefined)
	c.line(0, a.RefinedBottom, w, a.RefinedBottom, 2, ColorRefined)

	// Vertical marks with a horizontal measurement arrow above the bottom crop.
	for _, x := range a.VerticalMarks {
		c.line(x, 0, x, h, 3, ColorVertical)
	}
	arrowY := h - a.Crop.Bottom - 50
	left, right := a.VerticalMarks[0], a.VerticalMarks[1]
	if left > right {
		left, right = right, left
	}
	c.doubleArrow(left, arrowY, right, arrowY, 6, 0.04, ColorVertical)
	c.text(centreX-textWidth(a.VerticalLabel, scale)/2, arrowY-20, a.VerticalLabel, scale, ColorVertical)

	return c.img
}

// labelScale picks a text magnification so labels stay legible on large
// micrographs: roughly 1x per 800 pixels of width.
func labelScale(width int) int {
	s := width / 800
	if s < 1 {
		return 1
	}
	return s
}
