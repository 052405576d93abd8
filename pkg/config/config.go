package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/environment"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

var (
	ErrInvalidSize        = errors.New("config: window size must be positive")
	ErrInvalidCamera      = errors.New("config: invalid camera")
	ErrInvalidLight       = errors.New("config: invalid light")
	ErrInvalidEnvironment = errors.New("config: invalid environment")
	ErrInvalidModel       = errors.New("config: invalid model")
	ErrInvalidSettings    = errors.New("config: invalid render settings")
)

// Config describes a render: the scene to assemble and how to render it
type Config struct {
	Scene  string `json:"scene"` // Built-in scene, "none" for models only
	Width  int    `json:"width"`
	Height int    `json:"height"`

	Settings    renderer.Settings `json:"settings"`
	Camera      CameraConfig      `json:"camera"`
	Light       LightConfig       `json:"light"`
	Environment EnvironmentConfig `json:"environment"`
	Models      []ModelConfig     `json:"models"`

	Workers int    `json:"workers"` // 0 uses every logical CPU
	Seed    int64  `json:"seed"`
	Output  string `json:"output"`
}

// CameraConfig places the camera looking at a target
type CameraConfig struct {
	Position core.Vec3 `json:"position"`
	Target   core.Vec3 `json:"target"`
	Up       core.Vec3 `json:"up"`
	Fov      float64   `json:"fov"` // Vertical, degrees
	Near     float64   `json:"near"`
	Far      float64   `json:"far"`
}

// LightConfig describes the point light
type LightConfig struct {
	Position  core.Vec3 `json:"position"`
	Color     core.Vec3 `json:"color"`
	Intensity float64   `json:"intensity"`
}

// EnvironmentConfig selects the environment map. Without a path the
// environment is a constant Color.
type EnvironmentConfig struct {
	Path       string    `json:"path"`
	Color      core.Vec3 `json:"color"`
	Multiplier float64   `json:"multiplier"`
	Filter     string    `json:"filter"` // "nearest" or "bilinear"
}

// ModelConfig is a model file placed in the scene
type ModelConfig struct {
	Path        string    `json:"path"` // .obj or .ply
	Translation core.Vec3 `json:"translation"`
	Rotation    core.Vec3 `json:"rotation"` // Degrees about X, Y then Z
	Scale       core.Vec3 `json:"scale"`    // All zero means unscaled
	Material    string    `json:"material"` // PLY only: built-in material preset
}

// Default returns the interactive defaults
func Default() *Config {
	return &Config{
		Scene:    "default",
		Width:    800,
		Height:   600,
		Settings: renderer.DefaultSettings(),
		Camera: CameraConfig{
			Position: core.NewVec3(-30, 10, 30),
			Target:   core.NewVec3(0, 10, 0),
			Up:       core.NewVec3(0, 1, 0),
			Fov:      45,
			Near:     0.1,
			Far:      100,
		},
		Light: LightConfig{
			Position:  core.NewVec3(10, 40, 10),
			Color:     core.NewVec3(1, 1, 1),
			Intensity: 2500,
		},
		Environment: EnvironmentConfig{
			Color:      core.NewVec3(0.6, 0.7, 0.9),
			Multiplier: 1,
			Filter:     "nearest",
		},
		Output: "output/render.png",
	}
}

// Load reads a JSON config over the defaults. Relative model and
// environment paths are resolved against the config file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	cfg.Environment.Path = resolve(dir, cfg.Environment.Path)
	for i := range cfg.Models {
		cfg.Models[i].Path = resolve(dir, cfg.Models[i].Path)
	}
	return cfg, nil
}

// Save writes the config as indented JSON
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Validate rejects values the renderer cannot use
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, c.Width, c.Height)
	}
	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	cam := c.Camera
	switch {
	case cam.Fov <= 0 || cam.Fov >= 180:
		return fmt.Errorf("%w: fov %g must be in (0, 180)", ErrInvalidCamera, cam.Fov)
	case cam.Near <= 0 || cam.Far <= cam.Near:
		return fmt.Errorf("%w: need 0 < near < far, got %g and %g", ErrInvalidCamera, cam.Near, cam.Far)
	case cam.Target == cam.Position:
		return fmt.Errorf("%w: target equals position", ErrInvalidCamera)
	case cam.Up.IsZero() || cam.Target.Subtract(cam.Position).Cross(cam.Up).Length() < 1e-9:
		return fmt.Errorf("%w: up must not be parallel to the view direction", ErrInvalidCamera)
	}

	if c.Light.Intensity < 0 {
		return fmt.Errorf("%w: negative intensity %g", ErrInvalidLight, c.Light.Intensity)
	}

	if c.Environment.Multiplier < 0 {
		return fmt.Errorf("%w: negative multiplier %g", ErrInvalidEnvironment, c.Environment.Multiplier)
	}
	if _, err := environment.ParseFilter(c.Environment.Filter); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEnvironment, err)
	}

	for i, m := range c.Models {
		if m.Path == "" {
			return fmt.Errorf("%w: model %d has no path", ErrInvalidModel, i)
		}
	}
	return nil
}
