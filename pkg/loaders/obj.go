package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// DefaultMaterialName names the material given to meshes without a usable usemtl
const DefaultMaterialName = "default"

// Model is the content of a wavefront object file and its material libraries
type Model struct {
	Name      string
	Meshes    []*MeshData
	Materials []*material.Params
}

// Material looks up a material by name
func (m *Model) Material(name string) *material.Params {
	for _, mat := range m.Materials {
		if mat.Name == name {
			return mat
		}
	}
	return nil
}

// TriangleMeshes converts every mesh for rendering. Meshes share the model's
// material instances, so edits to Materials show up in the converted meshes.
func (m *Model) TriangleMeshes() []*geometry.TriangleMesh {
	meshes := make([]*geometry.TriangleMesh, 0, len(m.Meshes))
	for _, data := range m.Meshes {
		mat := m.Material(data.Material)
		if mat == nil {
			if data.Material != "" {
				logger.Warningf("mesh %q uses undefined material %q", data.Name, data.Material)
			}
			mat = m.defaultMaterial()
		}
		meshes = append(meshes, data.TriangleMesh(mat))
	}
	return meshes
}

func (m *Model) defaultMaterial() *material.Params {
	if mat := m.Material(DefaultMaterialName); mat != nil {
		return mat
	}
	mat := material.NewDiffuseParams(DefaultMaterialName, core.Splat(0.8))
	m.Materials = append(m.Materials, mat)
	return mat
}

// NumTriangles returns the triangle count over all meshes
func (m *Model) NumTriangles() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += mesh.NumTriangles()
	}
	return n
}

// Opener resolves a file referenced from a model, such as an mtllib
type Opener func(name string) (io.ReadCloser, error)

// LoadOBJ reads a wavefront object file. Material libraries are resolved
// relative to the file's directory.
func LoadOBJ(path string) (*Model, error) {
	start := time.Now()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer file.Close()

	dir := filepath.Dir(path)
	open := func(name string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(dir, name))
	}

	model, err := ReadOBJ(file, path, open)
	if err != nil {
		return nil, err
	}

	logger.Infof("loaded %s: %d meshes, %d triangles, %d materials in %v",
		path, len(model.Meshes), model.NumTriangles(), len(model.Materials), time.Since(start))
	return model, nil
}

// ReadOBJ parses a wavefront object stream. Faces with more than three
// vertices are fan triangulated. A new mesh starts at every o, g or usemtl
// statement. Each distinct (position, normal) pair becomes one vertex. open
// may be nil, in which case mtllib statements are skipped.
func ReadOBJ(r io.Reader, name string, open Opener) (*Model, error) {
	reader := &objReader{
		name:  name,
		open:  open,
		model: &Model{Name: strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))},
	}
	if err := reader.parse(r); err != nil {
		return nil, err
	}
	return reader.model, nil
}

type objMesh struct {
	data           *MeshData
	remap          map[[2]int]int
	missingNormals bool
}

type objReader struct {
	name  string
	open  Opener
	model *Model

	vertexList []core.Vec3
	normalList []core.Vec3
	uvCount    int

	meshes      []*objMesh
	cur         *objMesh
	curMaterial string
}

func (r *objReader) parse(in io.Reader) error {
	var lineNum int

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "mtllib":
			if len(lineTokens) != 2 {
				return parseError(r.name, lineNum, `unsupported syntax for "mtllib"; expected 1 argument; got %d`, len(lineTokens)-1)
			}
			if err := r.parseMaterials(lineTokens[1]); err != nil {
				return parseError(r.name, lineNum, "%v", err)
			}
		case "usemtl":
			if len(lineTokens) != 2 {
				return parseError(r.name, lineNum, `unsupported syntax for "usemtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}
			r.curMaterial = lineTokens[1]
			if r.cur != nil {
				if len(r.cur.data.Indices) == 0 {
					r.cur.data.Material = r.curMaterial
				} else {
					r.startMesh(r.cur.data.Name)
				}
			}
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return parseError(r.name, lineNum, "%v", err)
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return parseError(r.name, lineNum, "%v", err)
			}
			r.normalList = append(r.normalList, v.Normalize())
		case "vt":
			r.uvCount++
		case "g", "o":
			if len(lineTokens) < 2 {
				return parseError(r.name, lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}
			r.startMesh(lineTokens[1])
		case "f":
			if err := r.parseFace(lineTokens); err != nil {
				return parseError(r.name, lineNum, "%v", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", r.name, err)
	}

	for _, mesh := range r.meshes {
		if len(mesh.data.Indices) == 0 {
			continue
		}
		if mesh.missingNormals {
			mesh.data.Normals = nil
		}
		r.model.Meshes = append(r.model.Meshes, mesh.data)
	}
	if len(r.model.Meshes) == 0 {
		return fmt.Errorf("%s: no faces found", r.name)
	}
	return nil
}

func (r *objReader) startMesh(name string) {
	r.cur = &objMesh{
		data:  &MeshData{Name: name, Material: r.curMaterial},
		remap: make(map[[2]int]int),
	}
	r.meshes = append(r.meshes, r.cur)
}

func (r *objReader) parseMaterials(lib string) error {
	if r.open == nil {
		return nil
	}
	in, err := r.open(lib)
	if err != nil {
		return fmt.Errorf("failed to open material library %q: %w", lib, err)
	}
	defer in.Close()

	materials, err := ReadMTL(in, lib)
	if err != nil {
		return err
	}
	for _, mat := range materials {
		if r.model.Material(mat.Name) != nil {
			return fmt.Errorf("material %q already defined", mat.Name)
		}
		r.model.Materials = append(r.model.Materials, mat)
	}
	return nil
}

// Parse face definition. Each vertex argument uses one of the forms
// v, v/vt, v//vn or v/vt/vn. Indices start from 1 and may be negative to
// count back from the end of the list.
func (r *objReader) parseFace(lineTokens []string) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}
	if r.cur == nil {
		r.startMesh(r.model.Name)
	}
	mesh := r.cur

	corners := make([]int, 0, len(lineTokens)-1)
	for arg, token := range lineTokens[1:] {
		vTokens := strings.Split(token, "/")
		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vi, err := selectFaceCoordIndex(vTokens[0], len(r.vertexList))
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		if len(vTokens) > 1 && vTokens[1] != "" {
			if _, err := selectFaceCoordIndex(vTokens[1], r.uvCount); err != nil {
				return fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}
		ni := -1
		if len(vTokens) > 2 && vTokens[2] != "" {
			ni, err = selectFaceCoordIndex(vTokens[2], len(r.normalList))
			if err != nil {
				return fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
		}

		key := [2]int{vi, ni}
		index, exists := mesh.remap[key]
		if !exists {
			index = len(mesh.data.Vertices)
			mesh.remap[key] = index
			mesh.data.Vertices = append(mesh.data.Vertices, r.vertexList[vi])
			if ni >= 0 {
				mesh.data.Normals = append(mesh.data.Normals, r.normalList[ni])
			} else {
				mesh.data.Normals = append(mesh.data.Normals, core.Vec3{})
				mesh.missingNormals = true
			}
		}
		corners = append(corners, index)
	}

	for i := 1; i+1 < len(corners); i++ {
		mesh.data.Indices = append(mesh.data.Indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

// Given an index for a face coord type calculate the offset into the coord
// list. Negative indices reference elements from the end of the list.
func selectFaceCoordIndex(indexToken string, coordListLen int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var offset int
	if index < 0 {
		offset = coordListLen + int(index)
	} else {
		offset = int(index - 1)
	}
	if offset < 0 || offset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return offset, nil
}
