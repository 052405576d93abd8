package environment

import (
	"fmt"
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Filter selects how HDRImage reconstructs values between texels
type Filter int

const (
	Nearest Filter = iota
	Bilinear
)

// ParseFilter maps a filter name to a Filter
func ParseFilter(name string) (Filter, error) {
	switch name {
	case "", "nearest":
		return Nearest, nil
	case "bilinear":
		return Bilinear, nil
	default:
		return Nearest, fmt.Errorf("environment: unknown filter %q", name)
	}
}

func (f Filter) String() string {
	if f == Bilinear {
		return "bilinear"
	}
	return "nearest"
}

// HDRImage is a floating point RGB image addressed with wrap-around texture coordinates
type HDRImage struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x], row 0 at the top
	Filter Filter
}

// NewHDRImage creates an image over the given texels
func NewHDRImage(width, height int, pixels []core.Vec3) *HDRImage {
	return &HDRImage{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// NewConstantImage creates a 1x1 image of a single color
func NewConstantImage(color core.Vec3) *HDRImage {
	return NewHDRImage(1, 1, []core.Vec3{color})
}

// Sample looks up the image at uv. Coordinates outside [0,1) wrap.
func (t *HDRImage) Sample(uv core.Vec2) core.Vec3 {
	if t.Filter == Bilinear {
		return t.bilinear(uv)
	}
	x := int(math.Floor(uv.X * float64(t.Width)))
	y := int(math.Floor(uv.Y * float64(t.Height)))
	return t.Texel(x, y)
}

func (t *HDRImage) bilinear(uv core.Vec2) core.Vec3 {
	// Texel centers sit at half-integer coordinates
	fx := uv.X*float64(t.Width) - 0.5
	fy := uv.Y*float64(t.Height) - 0.5
	x0 := math.Floor(fx)
	y0 := math.Floor(fy)
	dx := fx - x0
	dy := fy - y0

	ix, iy := int(x0), int(y0)
	top := t.Texel(ix, iy).Multiply(1 - dx).Add(t.Texel(ix+1, iy).Multiply(dx))
	bottom := t.Texel(ix, iy+1).Multiply(1 - dx).Add(t.Texel(ix+1, iy+1).Multiply(dx))
	return top.Multiply(1 - dy).Add(bottom.Multiply(dy))
}

// Texel fetches a single texel, wrapping x and y modulo the image size
func (t *HDRImage) Texel(x, y int) core.Vec3 {
	x = wrap(x, t.Width)
	y = wrap(y, t.Height)
	return t.Pixels[y*t.Width+x]
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
