package scene

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/df07/go-progressive-pathtracer/pkg/config"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/environment"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/loaders"
	"github.com/df07/go-progressive-pathtracer/pkg/log"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

var logger = log.New("scene")

var (
	ErrUnknownScene    = errors.New("scene: unknown built-in scene")
	ErrUnknownMaterial = errors.New("scene: unknown material")
	ErrEmptyScene      = errors.New("scene: no geometry")
)

// Scene is everything a render context needs: built geometry, the light,
// the environment and a starting camera
type Scene struct {
	Name        string
	Accelerator *geometry.Accelerator
	Meshes      []*geometry.TriangleMesh
	Materials   []*material.Params // Distinct materials in mesh order
	Light       *integrator.PointLight
	Environment *environment.Environment
	Camera      *renderer.Camera
}

// Build assembles a scene from a config: the built-in content, the model
// files, the light and the environment. The accelerator is built on return.
func Build(cfg *config.Config) (*Scene, error) {
	s := &Scene{Name: cfg.Scene}

	if cfg.Scene != "" && cfg.Scene != "none" {
		builder, ok := builtins[cfg.Scene]
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownScene, cfg.Scene, strings.Join(BuiltinNames(), ", "))
		}
		s.Meshes = append(s.Meshes, builder()...)
	}

	for _, model := range cfg.Models {
		meshes, err := loadModel(model)
		if err != nil {
			return nil, err
		}
		s.Meshes = append(s.Meshes, meshes...)
	}
	if len(s.Meshes) == 0 {
		return nil, ErrEmptyScene
	}

	if cfg.Light.Intensity > 0 {
		s.Light = integrator.NewPointLight(cfg.Light.Position, cfg.Light.Color, cfg.Light.Intensity)
	}

	env, err := buildEnvironment(cfg.Environment)
	if err != nil {
		return nil, err
	}
	s.Environment = env

	c := cfg.Camera
	s.Camera = renderer.NewLookAtCamera(c.Position, c.Target, c.Up, c.Fov, c.Near, c.Far)

	s.Accelerator = geometry.NewAccelerator()
	seen := make(map[*material.Params]bool)
	for _, mesh := range s.Meshes {
		s.Accelerator.AddMesh(mesh)
		if !seen[mesh.Material] {
			seen[mesh.Material] = true
			s.Materials = append(s.Materials, mesh.Material)
		}
	}
	s.Accelerator.Build()

	logger.Noticef("scene %q: %d meshes, %d triangles, %d materials",
		s.Name, len(s.Meshes), s.Accelerator.NumTriangles(), len(s.Materials))
	return s, nil
}

// loadModel reads a model file and places it with its transform
func loadModel(model config.ModelConfig) ([]*geometry.TriangleMesh, error) {
	var meshes []*geometry.TriangleMesh

	switch strings.ToLower(filepath.Ext(model.Path)) {
	case ".obj":
		m, err := loaders.LoadOBJ(model.Path)
		if err != nil {
			return nil, err
		}
		meshes = m.TriangleMeshes()
	case ".ply":
		data, err := loaders.LoadPLY(model.Path)
		if err != nil {
			return nil, err
		}
		mat, err := Preset(model.Material, data.Name)
		if err != nil {
			return nil, err
		}
		meshes = []*geometry.TriangleMesh{data.TriangleMesh(mat)}
	default:
		return nil, fmt.Errorf("%w: unsupported model format %q", config.ErrInvalidModel, model.Path)
	}

	transform := geometry.Transform{
		Translation: model.Translation,
		Rotation:    model.Rotation,
		Scale:       model.Scale,
	}
	matrix := transform.Matrix()
	for i, mesh := range meshes {
		meshes[i] = mesh.Transformed(matrix)
	}
	return meshes, nil
}

func buildEnvironment(cfg config.EnvironmentConfig) (*environment.Environment, error) {
	filter, err := environment.ParseFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}

	if cfg.Path == "" {
		return environment.NewConstant(cfg.Color, cfg.Multiplier), nil
	}

	m, err := loaders.LoadEnvironmentMap(cfg.Path)
	if err != nil {
		return nil, err
	}
	m.Filter = filter
	return environment.New(m, cfg.Multiplier), nil
}

// Material returns the first material with the given name
func (s *Scene) Material(name string) *material.Params {
	for _, m := range s.Materials {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// UpdateMaterial copies new parameter values into a named material, keeping
// its name. The values are clamped to their valid ranges. Callers must not
// run this while a pass is reading the scene.
func (s *Scene) UpdateMaterial(name string, params material.Params) error {
	m := s.Material(name)
	if m == nil {
		return fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	params.Name = m.Name
	params.Clamp()
	*m = params
	return nil
}

// MaterialTable writes the scene materials as a table
func (s *Scene) MaterialTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Material", "Color", "Reflectivity", "Metalness", "Fresnel", "Shininess", "Emission", "Transparency"})
	for _, m := range s.Materials {
		table.Append([]string{
			m.Name,
			fmt.Sprintf("%.2f %.2f %.2f", m.Color.X, m.Color.Y, m.Color.Z),
			fmt.Sprintf("%.2f", m.Reflectivity),
			fmt.Sprintf("%.2f", m.Metalness),
			fmt.Sprintf("%.2f", m.Fresnel),
			fmt.Sprintf("%.0f", m.Shininess),
			fmt.Sprintf("%.2f", m.Emission),
			fmt.Sprintf("%.2f", m.Transparency),
		})
	}
	table.SetFooter([]string{"Total", fmt.Sprintf("%d", len(s.Materials)), "", "", "", "", "", ""})
	table.Render()
}

// BuiltinNames returns the names of the built-in scenes, sorted
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a fresh material for a preset name. The empty name gives
// the plain diffuse default.
func Preset(preset, name string) (*material.Params, error) {
	var m *material.Params
	switch preset {
	case "", "diffuse":
		m = material.NewDiffuseParams(name, core.Splat(0.8))
	case "plastic":
		m = material.NewPlasticParams(name, core.NewVec3(0.8, 0.1, 0.1), 400, 0.04)
	case "gold":
		m = material.NewMetalParams(name, core.NewVec3(1, 0.78, 0.34), 2000, 0.9)
	case "chrome":
		m = material.NewMetalParams(name, core.NewVec3(0.9, 0.9, 0.9), 8000, 0.95)
	case "emissive":
		m = material.NewEmissiveParams(name, core.NewVec3(1, 0.9, 0.7), 5)
	default:
		return nil, fmt.Errorf("%w: preset %q", ErrUnknownMaterial, preset)
	}
	return m, nil
}
