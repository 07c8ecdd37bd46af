package imaging

import (
	"fmt"
	"image"
)

// CropWindow defines a sub-rectangle by the number of pixels excluded from
// each edge of a raster.
//
// Margins rather than corners are used because the same window is applied to
// micrographs of different sizes: "ignore the 300 rows of the scale bar at the
// bottom" stays correct whatever the height.
type CropWindow struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
	Right  int `json:"right"`
}

// Validate checks that the margins are non-negative and leave a positive
// interior for a raster of the given size.
//
// # Errors
//
//   - ErrInvalidCrop if any margin is negative
//   - ErrInvalidCrop if left+right >= width or top+bottom >= height
func (w CropWindow) Validate(width, height int) error {
	if w.Top < 0 || w.Bottom < 0 || w.Left < 0 || w.Right < 0 {
		return fmt.Errorf("%w: negative margin (top=%d bottom=%d left=%d right=%d)",
			ErrInvalidCrop, w.Top, w.Bottom, w.Left, w.Right)
	}
	if iw := width - w.Left - w.Right; iw <= 0 {
		return fmt.Errorf("%w: left=%d right=%d leave width %d of %d",
			ErrInvalidCrop, w.Left, w.Right, iw, width)
	}
	if ih := height - w.Top - w.Bottom; ih <= 0 {
		return fmt.Errorf("%w: top=%d bottom=%d leave height %d of %d",
			ErrInvalidCrop, w.Top, w.Bottom, ih, height)
	}
	return nil
}

// Rect returns the interior rectangle in raster coordinates. The result is
// only meaningful for a window that passes Validate.
func (w CropWindow) Rect(width, height int) image.Rectangle {
	return image.Rect(w.Left, w.Top, width-w.Right, height-w.Bottom)
}

// Centre returns the centre of the interior in raster coordinates.
func (w CropWindow) Centre(width, height int) image.Point {
	r := w.Rect(width, height)
	return image.Pt(r.Min.X+r.Dx()/2, r.Min.Y+r.Dy()/2)
}

// Crop copies the interior of the window out of the raster.
//
// The result is a new raster with its own storage; its (0,0) corresponds to
// (w.Left, w.Top) in r.
func (r *Raster) Crop(w CropWindow) (*Raster, error) {
	if err := w.Validate(r.Width, r.Height); err != nil {
		return nil, err
	}

	rect := w.Rect(r.Width, r.Height)
	out := NewRaster(rect.Dx(), rect.Dy())
	for y := 0; y < out.Height; y++ {
		src := (rect.Min.Y+y)*r.Width + rect.Min.X
		copy(out.Pix[y*out.Width:(y+1)*out.Width], r.Pix[src:src+out.Width])
	}
	return out, nil
}
