package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}

	if cfg.Width != 800 || cfg.Height != 600 {
		t.Errorf("Expected 800x600, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Settings.MaxBounces != 8 || cfg.Settings.Subsampling != 4 || cfg.Settings.MaxPathsPerPixel != 0 {
		t.Errorf("Unexpected default settings: %+v", cfg.Settings)
	}
	if cfg.Light.Intensity != 2500 || cfg.Light.Position != core.NewVec3(10, 40, 10) {
		t.Errorf("Unexpected default light: %+v", cfg.Light)
	}
	if cfg.Camera.Position != core.NewVec3(-30, 10, 30) || cfg.Camera.Fov != 45 {
		t.Errorf("Unexpected default camera: %+v", cfg.Camera)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	data := `{
  "scene": "none",
  "settings": {"max_bounces": 3, "subsampling": 2},
  "light": {"intensity": 100},
  "environment": {"path": "sky.hdr", "filter": "bilinear"},
  "models": [{"path": "models/ship.obj", "translation": [0, 10, 0]}]
}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Scene != "none" || cfg.Settings.MaxBounces != 3 || cfg.Settings.Subsampling != 2 {
		t.Errorf("Expected file values to apply, got %+v", cfg)
	}
	// Fields absent from the file keep their defaults
	if cfg.Width != 800 || cfg.Light.Position != core.NewVec3(10, 40, 10) || cfg.Settings.RayOffset != renderer.DefaultSettings().RayOffset {
		t.Errorf("Expected defaults for absent fields, got %+v", cfg)
	}
	if cfg.Environment.Path != filepath.Join(dir, "sky.hdr") {
		t.Errorf("Expected environment path relative to the config, got %s", cfg.Environment.Path)
	}
	if len(cfg.Models) != 1 || cfg.Models[0].Path != filepath.Join(dir, "models", "ship.obj") {
		t.Fatalf("Unexpected models: %+v", cfg.Models)
	}
	if cfg.Models[0].Translation != core.NewVec3(0, 10, 0) {
		t.Errorf("Expected translation (0,10,0), got %v", cfg.Models[0].Translation)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte(`{"width": "wide"}`), 0644)
	if _, err := Load(path); err == nil {
		t.Error("Expected an error for malformed JSON")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	cfg := Default()
	cfg.Seed = 7
	cfg.Camera.Fov = 60
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Seed != 7 || loaded.Camera != cfg.Camera || loaded.Light != cfg.Light {
		t.Errorf("Expected the saved config back, got %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*Config)
		expected error
	}{
		{"Zero width", func(c *Config) { c.Width = 0 }, ErrInvalidSize},
		{"Bad settings", func(c *Config) { c.Settings.Subsampling = 0 }, renderer.ErrInvalidSubsampling},
		{"Fov too wide", func(c *Config) { c.Camera.Fov = 180 }, ErrInvalidCamera},
		{"Far before near", func(c *Config) { c.Camera.Far = 0.01 }, ErrInvalidCamera},
		{"Target at position", func(c *Config) { c.Camera.Target = c.Camera.Position }, ErrInvalidCamera},
		{"Up along view", func(c *Config) { c.Camera.Up = c.Camera.Target.Subtract(c.Camera.Position) }, ErrInvalidCamera},
		{"Negative light", func(c *Config) { c.Light.Intensity = -1 }, ErrInvalidLight},
		{"Negative multiplier", func(c *Config) { c.Environment.Multiplier = -2 }, ErrInvalidEnvironment},
		{"Unknown filter", func(c *Config) { c.Environment.Filter = "cubic" }, ErrInvalidEnvironment},
		{"Model without path", func(c *Config) { c.Models = []ModelConfig{{}} }, ErrInvalidModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}
