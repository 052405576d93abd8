package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// plyProperty is a property definition from the PLY header
type plyProperty struct {
	Name      string
	Type      string // Scalar type, or the item type of a list
	IsList    bool
	CountType string // Type of the list length
}

// plyElement is an element definition from the PLY header
type plyElement struct {
	Name  string
	Count int
	Props []plyProperty
}

// plyHeader is the parsed PLY header
type plyHeader struct {
	Format   string // "ascii", "binary_little_endian" or "binary_big_endian"
	Elements []plyElement
}

// LoadPLY reads a PLY mesh from disk
func LoadPLY(path string) (*MeshData, error) {
	start := time.Now()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	mesh, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	mesh.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	logger.Infof("loaded %s: %d vertices, %d triangles in %v",
		path, len(mesh.Vertices), mesh.NumTriangles(), time.Since(start))
	return mesh, nil
}

// ReadPLY parses an ASCII or binary PLY stream. Vertex positions and, when
// all three are present, nx/ny/nz normals are read; polygons are fan
// triangulated and every other element is skipped.
func ReadPLY(r io.Reader) (*MeshData, error) {
	br := bufio.NewReader(r)
	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values plyValueReader
	switch header.Format {
	case "ascii":
		scanner := bufio.NewScanner(br)
		scanner.Split(bufio.ScanWords)
		values = &asciiValues{scanner: scanner}
	case "binary_little_endian":
		values = &binaryValues{r: br, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValues{r: br, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %s", header.Format)
	}

	mesh := &MeshData{}
	for _, element := range header.Elements {
		switch element.Name {
		case "vertex":
			err = readPLYVertices(values, element, mesh)
		case "face":
			err = readPLYFaces(values, element, mesh)
		default:
			err = skipPLYElement(values, element)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s data: %w", element.Name, err)
		}
	}

	for _, idx := range mesh.Indices {
		if idx < 0 || idx >= len(mesh.Vertices) {
			return nil, fmt.Errorf("face index %d out of range for %d vertices", idx, len(mesh.Vertices))
		}
	}
	return mesh, nil
}

// parsePLYHeader reads up to and including the end_header line
func parsePLYHeader(r *bufio.Reader) (*plyHeader, error) {
	header := &plyHeader{}
	first := true

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("unexpected end of header: %w", err)
		}
		parts := strings.Fields(line)

		if first {
			if len(parts) != 1 || parts[0] != "ply" {
				return nil, fmt.Errorf("missing ply magic number")
			}
			first = false
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			if header.Format == "" {
				return nil, fmt.Errorf("missing format line")
			}
			return header, nil
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid format line: %q", strings.TrimSpace(line))
			}
			header.Format = parts[1]
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line: %q", strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, plyElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("property before any element")
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			el := &header.Elements[len(header.Elements)-1]
			el.Props = append(el.Props, prop)
		}
	}
}

// parsePLYProperty parses the arguments of a property line
func parsePLYProperty(parts []string) (plyProperty, error) {
	if len(parts) >= 1 && parts[0] == "list" {
		if len(parts) < 4 {
			return plyProperty{}, fmt.Errorf("invalid list property definition")
		}
		prop := plyProperty{IsList: true, CountType: parts[1], Type: parts[2], Name: parts[3]}
		if plyTypeSize(prop.CountType) == 0 || plyTypeSize(prop.Type) == 0 {
			return plyProperty{}, fmt.Errorf("unsupported list types %s %s", prop.CountType, prop.Type)
		}
		return prop, nil
	}
	if len(parts) < 2 {
		return plyProperty{}, fmt.Errorf("invalid property definition")
	}
	if plyTypeSize(parts[0]) == 0 {
		return plyProperty{}, fmt.Errorf("unsupported data type: %s", parts[0])
	}
	return plyProperty{Type: parts[0], Name: parts[1]}, nil
}

func readPLYVertices(values plyValueReader, element plyElement, mesh *MeshData) error {
	position := [3]int{-1, -1, -1}
	normal := [3]int{-1, -1, -1}
	for i, prop := range element.Props {
		switch prop.Name {
		case "x":
			position[0] = i
		case "y":
			position[1] = i
		case "z":
			position[2] = i
		case "nx":
			normal[0] = i
		case "ny":
			normal[1] = i
		case "nz":
			normal[2] = i
		}
	}
	if position[0] < 0 || position[1] < 0 || position[2] < 0 {
		return fmt.Errorf("vertex element lacks x, y or z")
	}
	hasNormals := normal[0] >= 0 && normal[1] >= 0 && normal[2] >= 0

	mesh.Vertices = make([]core.Vec3, 0, element.Count)
	if hasNormals {
		mesh.Normals = make([]core.Vec3, 0, element.Count)
	}

	row := make([]float64, len(element.Props))
	for v := 0; v < element.Count; v++ {
		for i, prop := range element.Props {
			if prop.IsList {
				if err := skipPLYList(values, prop); err != nil {
					return err
				}
				continue
			}
			val, err := values.read(prop.Type)
			if err != nil {
				return fmt.Errorf("vertex %d: %w", v, err)
			}
			row[i] = val
		}

		mesh.Vertices = append(mesh.Vertices, core.NewVec3(row[position[0]], row[position[1]], row[position[2]]))
		if hasNormals {
			mesh.Normals = append(mesh.Normals, core.NewVec3(row[normal[0]], row[normal[1]], row[normal[2]]).Normalize())
		}
	}
	return nil
}

func readPLYFaces(values plyValueReader, element plyElement, mesh *MeshData) error {
	mesh.Indices = make([]int, 0, element.Count*3)
	var corners []int

	for f := 0; f < element.Count; f++ {
		for _, prop := range element.Props {
			isIndexList := prop.IsList && (prop.Name == "vertex_indices" || prop.Name == "vertex_index")
			if !isIndexList {
				if err := skipPLYProperty(values, prop); err != nil {
					return err
				}
				continue
			}

			count, err := values.read(prop.CountType)
			if err != nil {
				return fmt.Errorf("face %d: %w", f, err)
			}
			corners = corners[:0]
			for i := 0; i < int(count); i++ {
				idx, err := values.read(prop.Type)
				if err != nil {
					return fmt.Errorf("face %d: %w", f, err)
				}
				corners = append(corners, int(idx))
			}
			for i := 1; i+1 < len(corners); i++ {
				mesh.Indices = append(mesh.Indices, corners[0], corners[i], corners[i+1])
			}
		}
	}
	return nil
}

func skipPLYElement(values plyValueReader, element plyElement) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Props {
			if err := skipPLYProperty(values, prop); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipPLYProperty(values plyValueReader, prop plyProperty) error {
	if prop.IsList {
		return skipPLYList(values, prop)
	}
	_, err := values.read(prop.Type)
	return err
}

func skipPLYList(values plyValueReader, prop plyProperty) error {
	count, err := values.read(prop.CountType)
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if _, err := values.read(prop.Type); err != nil {
			return err
		}
	}
	return nil
}

// plyTypeSize returns the size in bytes of a PLY scalar type, 0 when unknown
func plyTypeSize(dataType string) int {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

// plyValueReader reads one scalar of the given PLY type as float64
type plyValueReader interface {
	read(dataType string) (float64, error)
}

type asciiValues struct {
	scanner *bufio.Scanner
}

func (a *asciiValues) read(dataType string) (float64, error) {
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(a.scanner.Text(), 64)
}

type binaryValues struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryValues) read(dataType string) (float64, error) {
	size := plyTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unsupported data type: %s", dataType)
	}
	data := b.buf[:size]
	if _, err := io.ReadFull(b.r, data); err != nil {
		return 0, err
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(data[0])), nil
	case "uchar", "uint8":
		return float64(data[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(data))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(data)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(data))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(data)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(data))), nil
	default:
		return math.Float64frombits(b.order.Uint64(data)), nil
	}
}
