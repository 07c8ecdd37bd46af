package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// canvas wraps an NRGBA image with the few drawing primitives the annotation
// renderer needs. All primitives clip silently at the image bounds.
type canvas struct {
	img *image.NRGBA
}

// newCanvas returns a canvas holding a colour copy of src.
func newCanvas(src image.Image) *canvas {
	return &canvas{img: imaging.Clone(src)}
}

func (c *canvas) set(x, y int, col color.Color) {
	if image.Pt(x, y).In(c.img.Rect) {
		c.img.Set(x, y, col)
	}
}

// dot fills a square brush of side thickness centred on (x, y).
func (c *canvas) dot(x, y, thickness int, col color.Color) {
	if thickness <= 1 {
		c.set(x, y, col)
		return
	}
	lo := -(thickness - 1) / 2
	hi := thickness / 2
	for dy := lo; dy <= hi; dy++ {
		for dx := lo; dx <= hi; dx++ {
			c.set(x+dx, y+dy, col)
		}
	}
}

// line draws a Bresenham line with a square brush.
func (c *canvas) line(x0, y0, x1, y1, thickness int, col color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.dot(x0, y0, thickness, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// arrow draws a line from (x0,y0) to (x1,y1) with a head at the far end.
// tip is the head length as a fraction of the line length.
func (c *canvas) arrow(x0, y0, x1, y1, thickness int, tip float64, col color.Color) {
	c.line(x0, y0, x1, y1, thickness, col)

	length := math.Hypot(float64(x1-x0), float64(y1-y0))
	if length == 0 {
		return
	}
	head := tip * length
	angle := math.Atan2(float64(y1-y0), float64(x1-x0))
	for _, side := range []float64{math.Pi / 4, -math.Pi / 4} {
		hx := x1 - int(math.Round(head*math.Cos(angle+side)))
		hy := y1 - int(math.Round(head*math.Sin(angle+side)))
		c.line(x1, y1, hx, hy, thickness, col)
	}
}

// doubleArrow draws an arrow with heads at both ends.
func (c *canvas) doubleArrow(x0, y0, x1, y1, thickness int, tip float64, col color.Color) {
	c.arrow(x0, y0, x1, y1, thickness, tip, col)
	c.arrow(x1, y1, x0, y0, thickness, tip, col)
}

// circle draws a ring of the given radius.
func (c *canvas) circle(cx, cy, radius, thickness int, col color.Color) {
	steps := int(2*math.Pi*float64(radius)) + 8
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Round(float64(radius)*math.Cos(a)))
		y := cy + int(math.Round(float64(radius)*math.Sin(a)))
		c.dot(x, y, thickness, col)
	}
}

// text draws s with its baseline-left corner at (x, y), magnified by scale.
//
// Glyphs come from the 7x13 basicfont face; larger sizes are produced by a
// nearest-neighbour resize so strokes stay crisp on large micrographs.
func (c *canvas) text(x, y int, s string, scale int, col color.Color) {
	if s == "" {
		return
	}
	if scale < 1 {
		scale = 1
	}

	face := basicfont.Face7x13
	w := font.MeasureString(face, s).Ceil()
	h := face.Height
	glyphs := image.NewNRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(s)

	if scale > 1 {
		glyphs = imaging.Resize(glyphs, w*scale, h*scale, imaging.NearestNeighbor)
	}
	c.img = imaging.Overlay(c.img, glyphs, image.Pt(x, y-face.Ascent*scale), 1.0)
}

// textWidth returns the rendered width of s at the given scale.
func textWidth(s string, scale int) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil() * scale
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
