package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/tiff"
)

// EncodedImage is an image encoded for transport in a JSON result.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// OutputPrefix builds the filename prefix used for every artifact of one
// analysis run: the input path without its extension, followed by the local
// timestamp and an underscore, e.g. "scan_20200512143001_".
//
// If dir is non-empty the prefix is placed in that directory instead of next
// to the input.
func OutputPrefix(path, dir string, now time.Time) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	if dir != "" {
		base = filepath.Join(dir, filepath.Base(base))
	}
	return base + "_" + now.Format("20060102150405") + "_"
}

// WriteTIFF writes img to path as an uncompressed TIFF. A file that fails
// to encode is removed.
func WriteTIFF(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := tiff.Encode(f, img, nil); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// WritePNG writes img to path as PNG.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
