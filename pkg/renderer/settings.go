package renderer

import (
	"errors"
	"fmt"

	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
)

var (
	ErrInvalidBounces     = errors.New("renderer: max bounces must not be negative")
	ErrInvalidMaxPaths    = errors.New("renderer: max paths per pixel must not be negative")
	ErrInvalidSubsampling = errors.New("renderer: subsampling must be positive")
	ErrInvalidRayOffset   = errors.New("renderer: ray offset must be positive")
	ErrImageTooSmall      = errors.New("renderer: image is empty after subsampling")
	ErrNoCamera           = errors.New("renderer: no camera set")
)

// Settings are the user-tunable render parameters. They are only changed
// between passes and every change restarts accumulation.
type Settings struct {
	MaxBounces       int     `json:"max_bounces"`
	MaxPathsPerPixel int     `json:"max_paths_per_pixel"` // 0 means unbounded
	Subsampling      int     `json:"subsampling"`
	Jitter           bool    `json:"jitter"` // Randomize the sample position inside each pixel
	RayOffset        float64 `json:"ray_offset"`
}

// DefaultSettings returns the interactive defaults
func DefaultSettings() Settings {
	return Settings{
		MaxBounces:       8,
		MaxPathsPerPixel: 0,
		Subsampling:      4,
		RayOffset:        integrator.DefaultRayOffset,
	}
}

// Validate rejects out-of-range values before they reach the renderer
func (s Settings) Validate() error {
	if s.MaxBounces < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBounces, s.MaxBounces)
	}
	if s.MaxPathsPerPixel < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxPaths, s.MaxPathsPerPixel)
	}
	if s.Subsampling <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSubsampling, s.Subsampling)
	}
	if s.RayOffset <= 0 {
		return fmt.Errorf("%w: %g", ErrInvalidRayOffset, s.RayOffset)
	}
	return nil
}

func (s Settings) integratorConfig() integrator.Config {
	return integrator.Config{MaxBounces: s.MaxBounces, RayOffset: s.RayOffset}
}
