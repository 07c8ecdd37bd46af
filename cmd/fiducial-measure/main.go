// Command fiducial-measure measures the fiducial mark separations in one or
// more micrographs and writes an annotated copy plus the profile plots next
// to each input.
//
// Usage:
//
//	fiducial-measure [options] -width W image_files...
//	fiducial-measure image_file width [crop_top [crop_bottom [crop_left [crop_right]]]]
//
// The second form takes the crop margins positionally and always prints the
// verbose diagnostics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ironsheep/fiducial-tools-mcp/internal/config"
	"github.com/ironsheep/fiducial-tools-mcp/internal/detection"
	"github.com/ironsheep/fiducial-tools-mcp/internal/imaging"
	"github.com/ironsheep/fiducial-tools-mcp/internal/logger"
	"github.com/ironsheep/fiducial-tools-mcp/internal/store"
)

// errUsage marks command line errors that should print the usage text.
var errUsage = errors.New("usage")

type options struct {
	params   detection.Params
	files    []string
	outDir   string
	noOutput bool
	workers  int
	history  string
	verbose  bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	opts, err := parseArgs(os.Args[1:], cfg)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
		}
		os.Exit(1)
	}

	// Every input must exist before any work starts.
	for _, f := range opts.files {
		if err := imaging.CheckExists(f); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(2)
		}
	}

	lg := logger.NewStderr(cfg.LogLevel)
	if opts.history == "" {
		opts.history = cfg.HistoryDB
	}

	failed, err := run(opts, lg, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(3)
	}
}

// parseArgs reads flags and either the file list or the positional form.
// Flag defaults come from cfg.
func parseArgs(args []string, cfg *config.Config) (*options, error) {
	p := cfg.Params()
	p.RealWidth = 0

	fs := flag.NewFlagSet("fiducial-measure", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var dark bool
	opts := &options{}
	fs.Float64Var(&p.RealWidth, "width", 0, "Real-world width of the whole image (required)")
	fs.StringVar(&p.Unit, "unit", p.Unit, "Unit label for distances")
	fs.IntVar(&p.Crop.Top, "crop-top", p.Crop.Top, "Pixels to ignore from the top")
	fs.IntVar(&p.Crop.Bottom, "crop-bottom", p.Crop.Bottom, "Pixels to ignore from the bottom")
	fs.IntVar(&p.Crop.Left, "crop-left", p.Crop.Left, "Pixels to ignore from the left")
	fs.IntVar(&p.Crop.Right, "crop-right", p.Crop.Right, "Pixels to ignore from the right")
	fs.IntVar(&p.BandWidth, "band", p.BandWidth, "Central columns averaged to find the horizontal marks")
	fs.IntVar(&p.VerticalCropExtra, "extra", p.VerticalCropExtra, "Rows removed inside each horizontal mark")
	fs.IntVar(&p.Limits.PeakWidthMax, "peak-width-max", p.Limits.PeakWidthMax, "Maximum spike width in pixels")
	fs.IntVar(&p.Limits.PeakDistMax, "peak-dist-max", p.Limits.PeakDistMax, "Maximum spike distance from the crop edges")
	fs.BoolVar(&dark, "dark", p.Polarity == detection.PolarityDark, "Marks are darker than the background")
	fs.StringVar(&opts.outDir, "out-dir", "", "Directory for output files (default: next to each input)")
	fs.BoolVar(&opts.noOutput, "no-output", false, "Do not write the annotated image or plots")
	fs.IntVar(&opts.workers, "workers", runtime.GOMAXPROCS(0), "Number of images processed concurrently")
	fs.StringVar(&opts.history, "history", "", "SQLite file to record measurements in")
	fs.BoolVar(&opts.verbose, "verbose", false, "Print pixel positions and distances")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(os.Stdout)
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	rest := fs.Args()
	if p.RealWidth == 0 {
		if err := parsePositional(rest, &p); err != nil {
			return nil, err
		}
		rest = rest[:1]
		opts.verbose = true
	}
	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: no image files given", errUsage)
	}

	if dark {
		p.Polarity = detection.PolarityDark
	} else {
		p.Polarity = detection.PolarityBright
	}
	if opts.workers < 1 {
		opts.workers = 1
	}

	opts.params = p
	opts.files = rest
	return opts, nil
}

// parsePositional handles "file width [top [bottom [left [right]]]]".
func parsePositional(rest []string, p *detection.Params) error {
	if len(rest) < 2 {
		return fmt.Errorf("%w: you must give the filename and the image width", errUsage)
	}
	if len(rest) > 6 {
		return fmt.Errorf("%w: too many arguments", errUsage)
	}

	w, err := strconv.ParseFloat(rest[1], 64)
	if err != nil {
		return fmt.Errorf("%w: image width %q is not a number", errUsage, rest[1])
	}
	p.RealWidth = w

	margins := []*int{&p.Crop.Top, &p.Crop.Bottom, &p.Crop.Left, &p.Crop.Right}
	for i, arg := range rest[2:] {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: crop value %q is not an integer", errUsage, arg)
		}
		*margins[i] = v
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "   fiducial-measure [options] -width W image_files...")
	fmt.Fprintln(w, "   fiducial-measure image_file img_width [crop_top [crop_bottom [crop_left [crop_right]]]]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "img_width:   Image width in real space units")
	fmt.Fprintln(w, "crop_top :   Initial crop in pixels (integer) to ignore from the top")
	fmt.Fprintln(w, "crop_bottom: Initial crop in pixels (integer) to ignore from the bottom")
	fmt.Fprintln(w, "crop_left:   Initial crop in pixels (integer) to ignore from the left")
	fmt.Fprintln(w, "crop_right:  Initial crop in pixels (integer) to ignore from the right")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options: -width -unit -crop-top -crop-bottom -crop-left -crop-right -band -extra")
	fmt.Fprintln(w, "         -peak-width-max -peak-dist-max -dark -out-dir -no-output -workers -history -verbose")
}

// result is the outcome for one input file.
type result struct {
	path   string
	m      *detection.Measurement
	report string
	err    error
}

// run measures every file with a bounded pool of workers and prints one
// report per file in input order. It returns the number of failed files.
func run(opts *options, lg *logger.Logger, out io.Writer) (int, error) {
	if err := opts.params.Validate(); err != nil {
		return 0, err
	}

	var history *store.Store
	if opts.history != "" {
		db, err := store.Open(opts.history)
		if err != nil {
			return 0, err
		}
		defer db.Close()
		history = db
	}

	if opts.outDir != "" && !opts.noOutput {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	results := make([]result, len(opts.files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < opts.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = measureFile(opts, opts.files[i], lg)
			}
		}()
	}
	for i := range opts.files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	failed := 0
	total := len(results)
	for i, res := range results {
		status := fmt.Sprintf("[%d/%d] ", i+1, total)
		if res.err != nil {
			failed++
			fmt.Fprintf(out, "%sERROR: %s: %v\n", status, res.path, res.err)
			continue
		}
		fmt.Fprint(out, res.report)
		fmt.Fprintf(out, "%s%s: horizontal %s, vertical %s\n", status, res.path,
			res.m.Calibration.Label(res.m.Horizontal.Distance),
			res.m.Calibration.Label(res.m.Vertical.Distance))

		if history != nil {
			if _, err := history.Insert(context.Background(), store.NewRecord(res.path, res.m, time.Now())); err != nil {
				lg.Warning("failed to record %s: %v", res.path, err)
			}
		}
	}
	return failed, nil
}

// measureFile runs both passes on one file and writes its outputs.
func measureFile(opts *options, path string, lg *logger.Logger) result {
	res := result{path: path}
	start := time.Now()

	r, err := imaging.LoadRaster(path)
	if err != nil {
		res.err = err
		return res
	}

	m, err := detection.Detect(r, opts.params)
	if err != nil {
		res.err = err
		return res
	}
	res.m = m
	if opts.verbose {
		res.report = report(path, opts.params, m)
	}

	if !opts.noOutput {
		if err := writeOutputs(path, opts.outDir, start, r, m); err != nil {
			res.err = err
			return res
		}
	}

	lg.Debug("%s measured in %v", path, time.Since(start))
	return res
}

// writeOutputs renders the annotated image and both plots, then writes
// them. Files already written are removed if a later one fails.
func writeOutputs(path, dir string, now time.Time, r *imaging.Raster, m *detection.Measurement) error {
	annotated, horizontal, vertical, err := m.Render(r)
	if err != nil {
		return err
	}

	prefix := imaging.OutputPrefix(path, dir, now)
	outputs := []struct {
		name  string
		img   image.Image
		write func(string, image.Image) error
	}{
		{"annotated.tif", annotated, imaging.WriteTIFF},
		{"sample_vert_edge_detect.png", horizontal, imaging.WritePNG},
		{"sample_mark_detect.png", vertical, imaging.WritePNG},
	}

	var written []string
	for _, o := range outputs {
		name := prefix + o.name
		if err := o.write(name, o.img); err != nil {
			for _, w := range written {
				os.Remove(w)
			}
			return err
		}
		written = append(written, name)
	}
	return nil
}

// report formats the verbose diagnostics for one measurement.
func report(path string, p detection.Params, m *detection.Measurement) string {
	var b strings.Builder
	unit := m.Calibration.Unit

	fmt.Fprintf(&b, ">  Input filename: %s\n", path)
	fmt.Fprintf(&b, ">  Real image width: %g %s\n", p.RealWidth, unit)
	fmt.Fprintf(&b, ">  Input image width : %d Pixels\n", m.Width)
	fmt.Fprintf(&b, ">  Input image height: %d Pixels\n", m.Height)
	fmt.Fprintf(&b, ">  There are:   %g Pixels / %s\n", m.Calibration.PixelsPerUnit, unit)

	h := m.Horizontal
	fmt.Fprintf(&b, "Horizontal spike1 peak at  %d\n", h.Absolute[0])
	fmt.Fprintf(&b, "Horizontal spike2 peak at  %d\n", h.Absolute[1])
	fmt.Fprintf(&b, "Distance between horizontal marks: %d pixels, %s\n", h.PixelDistance, m.Calibration.Label(h.Distance))

	v := m.Vertical
	fmt.Fprintf(&b, "Vertical spike1 peak at  %d\n", v.Absolute[0])
	fmt.Fprintf(&b, "Vertical spike2 peak at  %d\n", v.Absolute[1])
	fmt.Fprintf(&b, "Distance between vertical marks: %d pixels, %s\n", v.PixelDistance, m.Calibration.Label(v.Distance))
	return b.String()
}
