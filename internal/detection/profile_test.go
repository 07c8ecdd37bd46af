package detection

import (
	"errors"
	"testing"

	"github.com/ironsheep/fiducial-tools-mcp/internal/imaging"
)

func TestCentredBand(t *testing.T) {
	tests := []struct {
		extent, band int
		lo, hi       int
	}{
		{10, 0, 0, 10},
		{10, -1, 0, 10},
		{10, 10, 0, 10},
		{9, 20, 0, 9},
		{10, 4, 3, 7},
		{10, 3, 4, 7},
		{1000, 500, 250, 750},
		{3000, 2000, 500, 2500},
	}

	for _, tt := range tests {
		lo, hi := centredBand(tt.extent, tt.band)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("centredBand(%d, %d): got [%d,%d), want [%d,%d)", tt.extent, tt.band, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestExtractProfile_Rows(t *testing.T) {
	r := imaging.NewRaster(6, 2)
	copy(r.Pix, []uint8{
		0, 0, 10, 20, 0, 0,
		4, 4, 4, 4, 4, 4,
	})

	p, err := ExtractProfile(r, AxisRows, 2)
	if err != nil {
		t.Fatalf("ExtractProfile failed: %v", err)
	}
	if len(p) != 2 || p[0] != 15 || p[1] != 4 {
		t.Errorf("banded rows: got %v, want [15 4]", p)
	}

	p, err = ExtractProfile(r, AxisRows, 0)
	if err != nil {
		t.Fatal(err)
	}
	if p[0] != 5 {
		t.Errorf("full-width row 0: got %v, want 5", p[0])
	}
}

func TestExtractProfile_Columns(t *testing.T) {
	r := imaging.NewRaster(3, 4)
	copy(r.Pix, []uint8{
		100, 0, 8,
		0, 0, 8,
		0, 6, 8,
		100, 0, 8,
	})

	p, err := ExtractProfile(r, AxisColumns, 0)
	if err != nil {
		t.Fatalf("ExtractProfile failed: %v", err)
	}
	want := Profile{50, 1.5, 8}
	for i := range want {
		if p[i] != want[i] {
			t.Fatalf("columns: got %v, want %v", p, want)
		}
	}

	// Band of two central rows.
	p, err = ExtractProfile(r, AxisColumns, 2)
	if err != nil {
		t.Fatal(err)
	}
	if p[0] != 0 || p[1] != 3 || p[2] != 8 {
		t.Errorf("banded columns: got %v, want [0 3 8]", p)
	}
}

func TestExtractProfile_Errors(t *testing.T) {
	if _, err := ExtractProfile(imaging.NewRaster(0, 5), AxisRows, 0); !errors.Is(err, imaging.ErrInvalidCrop) {
		t.Errorf("empty region: got %v, want ErrInvalidCrop", err)
	}
	if _, err := ExtractProfile(imaging.NewRaster(2, 2), Axis(7), 0); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("unknown axis: got %v, want ErrInvalidParams", err)
	}
}

func TestProfile_Invert(t *testing.T) {
	p := Profile{0, 127.5, 255}
	inv := p.Invert()
	if inv[0] != 255 || inv[1] != 127.5 || inv[2] != 0 {
		t.Errorf("got %v", inv)
	}
	if p[0] != 0 {
		t.Error("Invert modified its receiver")
	}
}

func TestParsePolarity(t *testing.T) {
	tests := []struct {
		in      string
		want    Polarity
		wantErr bool
	}{
		{"", PolarityBright, false},
		{"bright", PolarityBright, false},
		{"dark", PolarityDark, false},
		{"Dark", PolarityBright, true},
		{"black", PolarityBright, true},
	}

	for _, tt := range tests {
		got, err := ParsePolarity(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("ParsePolarity(%q): got %v, want ErrInvalidParams", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePolarity(%q): got %v, %v", tt.in, got, err)
		}
	}
}

func TestAxisAndPolarityText(t *testing.T) {
	for _, tt := range []struct {
		v    interface{ MarshalText() ([]byte, error) }
		want string
	}{
		{AxisRows, "rows"},
		{AxisColumns, "columns"},
		{PolarityBright, "bright"},
		{PolarityDark, "dark"},
		{Min, "min"},
		{Max, "max"},
	} {
		b, err := tt.v.MarshalText()
		if err != nil || string(b) != tt.want {
			t.Errorf("got %q, %v; want %q", b, err, tt.want)
		}
	}
	if s := Axis(9).String(); s != "Axis(9)" {
		t.Errorf("unknown axis: got %q", s)
	}
}
