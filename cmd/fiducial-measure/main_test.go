package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/fiducial-tools-mcp/internal/config"
	"github.com/ironsheep/fiducial-tools-mcp/internal/detection"
	"github.com/ironsheep/fiducial-tools-mcp/internal/imaging"
	"github.com/ironsheep/fiducial-tools-mcp/internal/logger"
)

// writeFiducialImage writes a 400x400 image with dark bands centred on rows
// 60 and 340 and columns 100 and 300.
func writeFiducialImage(t *testing.T, dir, name string) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 400, 400))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	for _, c := range []int{60, 340} {
		for y := c - 2; y <= c+2; y++ {
			for x := 0; x < 400; x++ {
				img.SetGray(x, y, color.Gray{Y: 20})
			}
		}
	}
	for _, c := range []int{100, 300} {
		for x := c - 2; x <= c+2; x++ {
			for y := 0; y < 400; y++ {
				img.SetGray(x, y, color.Gray{Y: 20})
			}
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestParseArgs_Flags(t *testing.T) {
	opts, err := parseArgs([]string{
		"-width", "12.5", "-unit", "nm", "-crop-top", "5", "-dark", "-workers", "0",
		"a.tif", "b.tif",
	}, &config.Config{})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}

	if opts.params.RealWidth != 12.5 || opts.params.Unit != "nm" {
		t.Errorf("width/unit: got %v %q", opts.params.RealWidth, opts.params.Unit)
	}
	if opts.params.Crop.Top != 5 || opts.params.Crop.Bottom != 300 {
		t.Errorf("crop: got %+v", opts.params.Crop)
	}
	if opts.params.Polarity != detection.PolarityDark {
		t.Error("-dark not applied")
	}
	if opts.workers != 1 {
		t.Errorf("workers: got %d, want 1", opts.workers)
	}
	if len(opts.files) != 2 || opts.verbose {
		t.Errorf("files %v, verbose %v", opts.files, opts.verbose)
	}
}

func TestParseArgs_Positional(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want [4]int
	}{
		{"width only", []string{"img.tif", "10"}, [4]int{100, 300, 100, 100}},
		{"top", []string{"img.tif", "10", "7"}, [4]int{7, 300, 100, 100}},
		{"top bottom", []string{"img.tif", "10", "7", "8"}, [4]int{7, 8, 100, 100}},
		{"all margins", []string{"img.tif", "10", "1", "2", "3", "4"}, [4]int{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseArgs(tt.args, &config.Config{})
			if err != nil {
				t.Fatalf("parseArgs: %v", err)
			}
			c := opts.params.Crop
			if got := [4]int{c.Top, c.Bottom, c.Left, c.Right}; got != tt.want {
				t.Errorf("crop: got %v, want %v", got, tt.want)
			}
			if opts.params.RealWidth != 10 {
				t.Errorf("width: got %v", opts.params.RealWidth)
			}
			if len(opts.files) != 1 || opts.files[0] != "img.tif" {
				t.Errorf("files: got %v", opts.files)
			}
			if !opts.verbose {
				t.Error("positional form should be verbose")
			}
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"nothing", nil},
		{"file only", []string{"img.tif"}},
		{"width not a number", []string{"img.tif", "wide"}},
		{"crop not an integer", []string{"img.tif", "10", "1.5"}},
		{"too many", []string{"img.tif", "10", "1", "2", "3", "4", "5"}},
		{"unknown flag", []string{"-bogus", "img.tif", "10"}},
		{"width without files", []string{"-width", "10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args, &config.Config{})
			if !errors.Is(err, errUsage) {
				t.Errorf("got %v, want a usage error", err)
			}
		})
	}
}

func TestParseArgs_ConfigDefaults(t *testing.T) {
	opts, err := parseArgs([]string{"-width", "3", "x.png"}, &config.Config{
		Unit:      "um",
		BandWidth: 640,
		DarkMarks: true,
	})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if opts.params.Unit != "um" || opts.params.BandWidth != 640 {
		t.Errorf("params: got %+v", opts.params)
	}
	if opts.params.Polarity != detection.PolarityDark {
		t.Error("FIDUCIAL_DARK_MARKS default not applied")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	good := writeFiducialImage(t, dir, "sample.png")

	blank := filepath.Join(dir, "blank.png")
	f, err := os.Create(blank)
	if err != nil {
		t.Fatal(err)
	}
	png.Encode(f, image.NewGray(image.Rect(0, 0, 400, 400)))
	f.Close()

	opts, err := parseArgs([]string{
		"-width", "40", "-unit", "um", "-dark", "-verbose",
		"-crop-top", "0", "-crop-bottom", "0", "-crop-left", "0", "-crop-right", "0",
		"-band", "200", "-out-dir", outDir, "-history", filepath.Join(dir, "history.db"),
		good, blank,
	}, &config.Config{})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}

	var out bytes.Buffer
	failed, err := run(opts, logger.Discard(), &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if failed != 1 {
		t.Errorf("failed: got %d, want 1\n%s", failed, out.String())
	}

	text := out.String()
	for _, want := range []string{
		"[1/2] " + good + ": horizontal 28 um, vertical 20 um",
		"Distance between horizontal marks: 280 pixels, 28 um",
		"[2/2] ERROR: " + blank,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read out dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if len(names) != 3 {
		t.Fatalf("outputs: got %v, want 3 files for the good image only", names)
	}
	for _, suffix := range []string{"annotated.tif", "sample_vert_edge_detect.png", "sample_mark_detect.png"} {
		found := false
		for _, n := range names {
			if strings.HasPrefix(n, "sample_") && strings.HasSuffix(n, suffix) {
				found = true
			}
		}
		if !found {
			t.Errorf("no output ending in %s among %v", suffix, names)
		}
	}
}

func TestRun_InvalidParams(t *testing.T) {
	opts, err := parseArgs([]string{"-width", "-1", "x.png"}, &config.Config{})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if _, err := run(opts, logger.Discard(), &bytes.Buffer{}); err == nil {
		t.Error("expected an error for a negative width")
	}
}

func TestWriteOutputs_RemovesPartialFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFiducialImage(t, dir, "sample.png")

	r, err := imaging.LoadRaster(path)
	if err != nil {
		t.Fatal(err)
	}
	p := detection.DefaultParams()
	p.RealWidth = 40
	p.Crop = imaging.CropWindow{}
	p.BandWidth = 200
	p.Polarity = detection.PolarityDark
	m, err := detection.Detect(r, p)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	prefix := imaging.OutputPrefix(path, "", now)
	// A directory in the way of the second output makes its write fail.
	if err := os.Mkdir(prefix+"sample_vert_edge_detect.png", 0o755); err != nil {
		t.Fatal(err)
	}

	if err := writeOutputs(path, "", now, r, m); err == nil {
		t.Fatal("expected a write error")
	}
	for _, name := range []string{"annotated.tif", "sample_mark_detect.png"} {
		if _, err := os.Stat(prefix + name); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s: got %v, want it removed", name, err)
		}
	}
}

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	path := writeFiducialImage(t, dir, "sample.png")

	r, err := imaging.LoadRaster(path)
	if err != nil {
		t.Fatal(err)
	}
	p := detection.DefaultParams()
	p.Crop = imaging.CropWindow{}
	p.BandWidth = 200
	p.Polarity = detection.PolarityDark
	m, err := detection.Detect(r, p)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	if err := writeOutputs(path, dir, now, r, m); err != nil {
		t.Fatalf("writeOutputs: %v", err)
	}
	prefix := imaging.OutputPrefix(path, dir, now)
	for _, name := range []string{"annotated.tif", "sample_vert_edge_detect.png", "sample_mark_detect.png"} {
		if st, err := os.Stat(prefix + name); err != nil || st.Size() == 0 {
			t.Errorf("%s: got %v", name, err)
		}
	}
}
