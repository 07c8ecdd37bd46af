package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// newPatternRaster returns a raster whose sample at (x, y) is (x + 10*y) % 256.
func newPatternRaster(width, height int) *Raster {
	r := NewRaster(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r.Set(x, y, uint8((x+10*y)%256))
		}
	}
	return r
}

func TestRasterFromImage(t *testing.T) {
	t.Run("gray is copied", func(t *testing.T) {
		g := image.NewGray(image.Rect(0, 0, 3, 2))
		g.SetGray(2, 1, color.Gray{Y: 77})

		r := RasterFromImage(g)
		if r.Width != 3 || r.Height != 2 {
			t.Fatalf("size: got %dx%d", r.Width, r.Height)
		}
		if r.At(2, 1) != 77 {
			t.Errorf("At(2,1): got %d, want 77", r.At(2, 1))
		}

		g.SetGray(2, 1, color.Gray{Y: 1})
		if r.At(2, 1) != 77 {
			t.Error("raster should not share memory with the source")
		}
	})

	t.Run("color is reduced to luminance", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 2, 1))
		img.Set(0, 0, color.RGBA{255, 255, 255, 255})
		img.Set(1, 0, color.RGBA{0, 0, 0, 255})

		r := RasterFromImage(img)
		if r.At(0, 0) != 255 || r.At(1, 0) != 0 {
			t.Errorf("got %d/%d, want 255/0", r.At(0, 0), r.At(1, 0))
		}
	})
}

func TestRaster_Empty(t *testing.T) {
	var nilRaster *Raster
	if !nilRaster.Empty() {
		t.Error("nil raster should be empty")
	}
	if !NewRaster(0, 10).Empty() {
		t.Error("zero-width raster should be empty")
	}
	if NewRaster(1, 1).Empty() {
		t.Error("1x1 raster should not be empty")
	}
}

func TestCropWindow_Validate(t *testing.T) {
	tests := []struct {
		name    string
		w       CropWindow
		wantErr bool
	}{
		{"no crop", CropWindow{}, false},
		{"typical", CropWindow{Top: 100, Bottom: 300, Left: 100, Right: 100}, false},
		{"one pixel left", CropWindow{Left: 499, Right: 500}, false},
		{"negative top", CropWindow{Top: -1}, true},
		{"negative right", CropWindow{Right: -5}, true},
		{"width exhausted", CropWindow{Left: 500, Right: 500}, true},
		{"height exhausted", CropWindow{Top: 600, Bottom: 400}, true},
		{"overlapping margins", CropWindow{Top: 900, Bottom: 900}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate(1000, 1000)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCrop) {
					t.Errorf("got %v, want ErrInvalidCrop", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCropWindow_RectAndCentre(t *testing.T) {
	w := CropWindow{Top: 10, Bottom: 30, Left: 20, Right: 40}

	rect := w.Rect(200, 100)
	if want := image.Rect(20, 10, 160, 70); rect != want {
		t.Errorf("Rect: got %v, want %v", rect, want)
	}
	if c := w.Centre(200, 100); c != image.Pt(90, 40) {
		t.Errorf("Centre: got %v, want (90,40)", c)
	}
}

func TestRaster_Crop(t *testing.T) {
	r := newPatternRaster(50, 40)
	w := CropWindow{Top: 5, Bottom: 10, Left: 3, Right: 7}

	out, err := r.Crop(w)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if out.Width != 40 || out.Height != 25 {
		t.Fatalf("size: got %dx%d, want 40x25", out.Width, out.Height)
	}

	// Local (0,0) is (Left, Top) in the source.
	for _, p := range []image.Point{{0, 0}, {39, 0}, {0, 24}, {39, 24}, {17, 11}} {
		if got, want := out.At(p.X, p.Y), r.At(p.X+3, p.Y+5); got != want {
			t.Errorf("At%v: got %d, want %d", p, got, want)
		}
	}
}

func TestRaster_CropFull(t *testing.T) {
	r := newPatternRaster(8, 6)
	out, err := r.Crop(CropWindow{})
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	for i := range r.Pix {
		if out.Pix[i] != r.Pix[i] {
			t.Fatalf("sample %d differs", i)
		}
	}

	out.Pix[0] = 255
	if r.Pix[0] == 255 {
		t.Error("crop should copy, not alias")
	}
}

func TestRaster_CropInvalid(t *testing.T) {
	r := newPatternRaster(10, 10)
	if _, err := r.Crop(CropWindow{Left: 5, Right: 5}); !errors.Is(err, ErrInvalidCrop) {
		t.Errorf("got %v, want ErrInvalidCrop", err)
	}
}
