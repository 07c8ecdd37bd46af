package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder (microscope exports)
)

// ImageCache provides thread-safe caching of decoded grayscale rasters to
// avoid redundant disk reads.
//
// Rasters are keyed by the exact path string used to load them. Once a raster
// is cached, subsequent Load() calls for the same path return the same value
// without disk I/O. Callers must not mutate returned rasters.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	r, err := cache.Load("/data/sample_01.tif")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Evict("/data/sample_01.tif") // force a re-read
type ImageCache struct {
	mu      sync.RWMutex
	rasters map[string]*Raster
}

// NewImageCache creates and initializes a new empty raster cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		rasters: make(map[string]*Raster),
	}
}

// Load retrieves a raster from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG, GIF, TIFF and BMP. Color images are
// converted to 8-bit grayscale.
//
// # Errors
//
//   - ErrMissingFile if the path does not exist
//   - a wrapped decode error if the file is not a supported image
func (c *ImageCache) Load(path string) (*Raster, error) {
	c.mu.RLock()
	if r, ok := c.rasters[path]; ok {
		c.mu.RUnlock()
		return r, nil
	}
	c.mu.RUnlock()

	r, err := LoadRaster(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.rasters[path] = r
	c.mu.Unlock()

	return r, nil
}

// Clear removes all rasters from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.rasters = make(map[string]*Raster)
	c.mu.Unlock()
}

// Evict removes a specific raster from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.rasters, path)
	c.mu.Unlock()
}

// Len returns the number of cached rasters.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rasters)
}

// CheckExists returns ErrMissingFile (wrapped with the path) when path does
// not name an existing regular file.
func CheckExists(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return fmt.Errorf("failed to stat image: %w", err)
	}
	if st.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrMissingFile, path)
	}
	return nil
}

// LoadRaster decodes the image at path into a grayscale raster without caching.
func LoadRaster(path string) (*Raster, error) {
	if err := CheckExists(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return RasterFromImage(img), nil
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format guessed from the file extension: "png", "jpeg",
	// "gif", "tiff", "bmp", or "unknown".
	Format string `json:"format"`

	// MeanIntensity is the average grayscale sample (0-255).
	MeanIntensity float64 `json:"mean_intensity"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and returns its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	r, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	var sum float64
	for _, v := range r.Pix {
		sum += float64(v)
	}
	mean := 0.0
	if len(r.Pix) > 0 {
		mean = sum / float64(len(r.Pix))
	}

	return &ImageInfo{
		Width:         r.Width,
		Height:        r.Height,
		Format:        formatFromExt(path),
		MeanIntensity: roundTo(mean, 2),
		FileSizeBytes: stat.Size(),
	}, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".tif", ".tiff":
		return "tiff"
	case ".bmp":
		return "bmp"
	}
	return "unknown"
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image, loading it into the cache.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	r, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	return &DimensionsResult{
		Width:  r.Width,
		Height: r.Height,
	}, nil
}
