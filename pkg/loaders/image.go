package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ftrvxmtrx/tga"
	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/environment"
)

// LoadEnvironmentMap loads a latitude-longitude environment image. Radiance
// .hdr files keep their full range; PNG, JPEG and TGA files load as [0,1].
func LoadEnvironmentMap(path string) (*environment.HDRImage, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hdr", ".pic":
		return LoadHDR(path)
	default:
		return LoadImage(path)
	}
}

// LoadHDR loads a Radiance RGBE image
func LoadHDR(path string) (*environment.HDRImage, error) {
	start := time.Now()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open HDR image: %w", err)
	}
	defer file.Close()

	img, err := ReadHDR(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Infof("loaded %s: %dx%d in %v", path, img.Width, img.Height, time.Since(start))
	return img, nil
}

// ReadHDR decodes a Radiance RGBE stream
func ReadHDR(r io.Reader) (*environment.HDRImage, error) {
	m, err := rgbe.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode HDR image: %w", err)
	}
	hm, ok := m.(hdr.Image)
	if !ok {
		return nil, fmt.Errorf("decoder returned a non-HDR image")
	}

	bounds := hm.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := hm.HDRAt(x+bounds.Min.X, y+bounds.Min.Y).HDRRGBA()
			pixels[y*width+x] = core.NewVec3(r, g, b)
		}
	}
	return environment.NewHDRImage(width, height, pixels), nil
}

// LoadImage loads a PNG, JPEG or TGA image with channels scaled to [0,1]
func LoadImage(path string) (*environment.HDRImage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	var img image.Image
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err = tga.Decode(file)
	} else {
		img, _, err = image.Decode(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return fromImage(img), nil
}

// fromImage converts a decoded image, RGBA returns 16-bit channels
func fromImage(img image.Image) *environment.HDRImage {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			pixels[y*width+x] = core.NewVec3(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
		}
	}
	return environment.NewHDRImage(width, height, pixels)
}
