package renderer

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

// Format is an output image encoding
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
	FormatTGA  Format = "tga"
)

// FormatFromPath picks the encoding from a file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return ParseFormat(ext)
}

// ParseFormat parses a format name
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatPNG, "":
		return FormatPNG, nil
	case FormatWebP:
		return FormatWebP, nil
	case FormatTGA:
		return FormatTGA, nil
	}
	return "", fmt.Errorf("renderer: unsupported image format %q", name)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatWebP:
		return "image/webp"
	case FormatTGA:
		return "image/x-tga"
	}
	return "image/png"
}

// Encode writes img in the given format
func Encode(w io.Writer, format Format, img image.Image) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	case FormatTGA:
		return tga.Encode(w, img)
	}
	return fmt.Errorf("renderer: unsupported image format %q", format)
}

// SaveImage writes img to path, choosing the encoding from the extension
func SaveImage(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := Encode(file, format, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// Upscale resizes an image to width×height. Smooth uses Catmull-Rom, otherwise
// nearest neighbour keeps the subsampled pixels sharp.
func Upscale(src image.Image, width, height int, smooth bool) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	var scaler draw.Scaler = draw.NearestNeighbor
	if smooth {
		scaler = draw.CatmullRom
	}
	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
