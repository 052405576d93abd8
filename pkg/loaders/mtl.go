package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// ReadMTL parses a wavefront material library. Parameters map onto the
// material model as follows:
//
//	Kd      color
//	Ks      reflectivity (first component)
//	Ns      shininess
//	Pm      metalness
//	Ps      fresnel reflectance at normal incidence
//	Ke      emission (first component)
//	Tf / d  transparency (Tf first component, or 1-d)
//
// Unknown statements are ignored.
func ReadMTL(r io.Reader, name string) ([]*material.Params, error) {
	var (
		materials []*material.Params
		cur       *material.Params
		lineNum   int
		err       error
	)
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		if lineTokens[0] == "newmtl" {
			if len(lineTokens) != 2 {
				return nil, parseError(name, lineNum, `unsupported syntax for "newmtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}
			if seen[lineTokens[1]] {
				return nil, parseError(name, lineNum, `material %q already defined`, lineTokens[1])
			}
			seen[lineTokens[1]] = true
			cur = &material.Params{Name: lineTokens[1], Color: core.Splat(0.8)}
			materials = append(materials, cur)
			continue
		}

		if cur == nil {
			return nil, parseError(name, lineNum, `got %q without a "newmtl"`, lineTokens[0])
		}

		var v core.Vec3
		switch lineTokens[0] {
		case "Kd":
			cur.Color, err = parseVec3(lineTokens)
		case "Ks":
			v, err = parseVec3(lineTokens)
			cur.Reflectivity = v.X
		case "Ke":
			v, err = parseVec3(lineTokens)
			cur.Emission = v.X
		case "Tf":
			v, err = parseVec3(lineTokens)
			cur.Transparency = v.X
		case "d":
			var d float64
			d, err = parseFloat(lineTokens)
			cur.Transparency = 1 - d
		case "Ns":
			cur.Shininess, err = parseFloat(lineTokens)
		case "Pm":
			cur.Metalness, err = parseFloat(lineTokens)
		case "Ps":
			cur.Fresnel, err = parseFloat(lineTokens)
		}
		if err != nil {
			return nil, parseError(name, lineNum, "%v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	for _, m := range materials {
		m.Clamp()
	}
	return materials, nil
}

// LoadMTL reads a material library from disk
func LoadMTL(path string) ([]*material.Params, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open material library: %w", err)
	}
	defer file.Close()
	return ReadMTL(file, path)
}

// WriteMTL writes materials in the format ReadMTL reads
func WriteMTL(w io.Writer, materials []*material.Params) error {
	bw := bufio.NewWriter(w)
	for i, m := range materials {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		fmt.Fprintf(bw, "newmtl %s\n", m.Name)
		fmt.Fprintf(bw, "Kd %s %s %s\n", fmtFloat(m.Color.X), fmtFloat(m.Color.Y), fmtFloat(m.Color.Z))
		fmt.Fprintf(bw, "Ks %s %s %s\n", fmtFloat(m.Reflectivity), fmtFloat(m.Reflectivity), fmtFloat(m.Reflectivity))
		fmt.Fprintf(bw, "Ns %s\n", fmtFloat(m.Shininess))
		fmt.Fprintf(bw, "Pm %s\n", fmtFloat(m.Metalness))
		fmt.Fprintf(bw, "Ps %s\n", fmtFloat(m.Fresnel))
		fmt.Fprintf(bw, "Ke %s %s %s\n", fmtFloat(m.Emission), fmtFloat(m.Emission), fmtFloat(m.Emission))
		fmt.Fprintf(bw, "Tf %s %s %s\n", fmtFloat(m.Transparency), fmtFloat(m.Transparency), fmtFloat(m.Transparency))
	}
	return bw.Flush()
}

// SaveMTL writes materials to path
func SaveMTL(path string, materials []*material.Params) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create material library: %w", err)
	}
	if err := WriteMTL(file, materials); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// parseError reports a syntax error at a file position
func parseError(file string, line int, msgFormat string, args ...interface{}) error {
	return fmt.Errorf("[%s: %d] error: %s", file, line, fmt.Sprintf(msgFormat, args...))
}

// Parse a float scalar value.
func parseFloat(lineTokens []string) (float64, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf(`unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
	}
	return strconv.ParseFloat(lineTokens[1], 64)
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (core.Vec3, error) {
	if len(lineTokens) < 4 {
		return core.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	var c [3]float64
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 64)
		if err != nil {
			return core.Vec3{}, err
		}
		c[tokIdx-1] = coord
	}
	return core.NewVec3(c[0], c[1], c[2]), nil
}
