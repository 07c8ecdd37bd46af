package imaging

import (
	"errors"
	"image"

	"github.com/anthonynsimon/bild/effect"
)

var (
	// ErrMissingFile is returned when an input path does not resolve to a file.
	ErrMissingFile = errors.New("input file does not exist")

	// ErrInvalidCrop is returned when crop margins leave no interior region.
	ErrInvalidCrop = errors.New("invalid crop window")

	// ErrInvalidWidth is returned when the real-world image width is not positive.
	ErrInvalidWidth = errors.New("invalid real-world width")
)

// Raster is an 8-bit grayscale sample grid stored row-major.
//
// A Raster is treated as immutable once built; Crop returns a copy.
type Raster struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRaster allocates a zeroed raster of the given size.
func NewRaster(width, height int) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// RasterFromImage converts any decoded image to an 8-bit grayscale raster.
//
// Color images are reduced to luminance with bild's Grayscale effect; images
// that are already *image.Gray are copied without conversion.
func RasterFromImage(img image.Image) *Raster {
	b := img.Bounds()
	r := NewRaster(b.Dx(), b.Dy())

	if gray, ok := img.(*image.Gray); ok {
		for y := 0; y < r.Height; y++ {
			row := gray.Pix[y*gray.Stride:]
			copy(r.Pix[y*r.Width:(y+1)*r.Width], row[:r.Width])
		}
		return r
	}

	// Grayscale writes the luminance to all three color channels.
	lum := effect.Grayscale(img)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			r.Set(x, y, lum.Pix[y*lum.Stride+x*4])
		}
	}
	return r
}

// At returns the sample at column x, row y.
func (r *Raster) At(x, y int) uint8 {
	return r.Pix[y*r.Width+x]
}

// Set stores a sample at column x, row y.
func (r *Raster) Set(x, y int, v uint8) {
	r.Pix[y*r.Width+x] = v
}

// Empty reports whether the raster has no samples.
func (r *Raster) Empty() bool {
	return r == nil || r.Width <= 0 || r.Height <= 0
}

// Gray returns the raster as a standard library grayscale image sharing no memory.
func (r *Raster) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	copy(img.Pix, r.Pix)
	return img
}
