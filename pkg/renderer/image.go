package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Image is the running-average accumulation buffer. Every pixel holds the
// mean of SampleCount path estimates. Row 0 is the bottom of the view.
type Image struct {
	Width       int
	Height      int
	Pixels      []core.Vec3 // Row-major: Pixels[y*Width + x]
	SampleCount int
}

// NewImage allocates a zeroed image
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// At returns the accumulated color of a pixel
func (img *Image) At(x, y int) core.Vec3 {
	return img.Pixels[y*img.Width+x]
}

// Blend folds a new estimate into a pixel that has already averaged n samples
func (img *Image) Blend(x, y int, c core.Vec3, n float64) {
	i := y*img.Width + x
	img.Pixels[i] = img.Pixels[i].Multiply(n / (n + 1)).Add(c.Multiply(1 / (n + 1)))
}

// Clone returns a deep copy
func (img *Image) Clone() *Image {
	pixels := make([]core.Vec3, len(img.Pixels))
	copy(pixels, img.Pixels)
	return &Image{
		Width:       img.Width,
		Height:      img.Height,
		Pixels:      pixels,
		SampleCount: img.SampleCount,
	}
}

// ToRGBA converts to 8-bit sRGB-ish color with gamma 2, flipped so the top
// of the view is the first row.
func (img *Image) ToRGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		row := img.Height - 1 - y
		for x := 0; x < img.Width; x++ {
			out.SetRGBA(x, row, vec3ToColor(img.At(x, y)))
		}
	}
	return out
}

// vec3ToColor converts a linear color to RGBA with clamping and gamma correction
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.Clamp(0.0, 1.0)
	colorVec = colorVec.GammaCorrect(2.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}

// AverageLuminance returns the mean luminance over all pixels
func (img *Image) AverageLuminance() float64 {
	if len(img.Pixels) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range img.Pixels {
		total += p.Luminance()
	}
	return total / float64(len(img.Pixels))
}
