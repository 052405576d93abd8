package loaders

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

func TestReadMTL(t *testing.T) {
	materials, err := ReadMTL(strings.NewReader(testMTL), "test.mtl")
	if err != nil {
		t.Fatalf("ReadMTL failed: %v", err)
	}
	if len(materials) != 2 {
		t.Fatalf("Expected 2 materials, got %d", len(materials))
	}

	gold := materials[0]
	expectedGold := material.Params{
		Name:         "gold",
		Color:        core.NewVec3(1, 0.8, 0.3),
		Reflectivity: 0.9,
		Metalness:    1,
		Fresnel:      0.95,
		Shininess:    200,
	}
	if *gold != expectedGold {
		t.Errorf("Expected %+v, got %+v", expectedGold, *gold)
	}

	glass := materials[1]
	if glass.Transparency != 0.75 || glass.Emission != 2 {
		t.Errorf("Expected transparency 0.75 and emission 2, got %+v", *glass)
	}
}

func TestReadMTL_Clamps(t *testing.T) {
	materials, err := ReadMTL(strings.NewReader("newmtl hot\nKd 2 0.5 -1\nPm 3\nNs -4\n"), "test.mtl")
	if err != nil {
		t.Fatalf("ReadMTL failed: %v", err)
	}
	m := materials[0]
	if m.Color != core.NewVec3(1, 0.5, 0) || m.Metalness != 1 || m.Shininess != 0 {
		t.Errorf("Expected clamped parameters, got %+v", *m)
	}
}

func TestReadMTL_Errors(t *testing.T) {
	tests := []struct {
		name string
		mtl  string
	}{
		{"Statement before newmtl", "Kd 1 1 1\n"},
		{"Duplicate material", "newmtl a\nnewmtl a\n"},
		{"Missing name", "newmtl\n"},
		{"Short color", "newmtl a\nKd 1 1\n"},
		{"Bad number", "newmtl a\nNs shiny\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadMTL(strings.NewReader(tt.mtl), "bad.mtl"); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestWriteMTL_RoundTrip(t *testing.T) {
	original := []*material.Params{
		material.NewMetalParams("chrome", core.NewVec3(0.9, 0.9, 0.95), 5000, 0.98),
		{
			Name:         "misc",
			Color:        core.NewVec3(0.1, 0.2, 0.3),
			Reflectivity: 0.4,
			Metalness:    0.5,
			Fresnel:      0.6,
			Shininess:    70,
			Emission:     0.8,
			Transparency: 0.9,
		},
	}

	var buf bytes.Buffer
	if err := WriteMTL(&buf, original); err != nil {
		t.Fatalf("WriteMTL failed: %v", err)
	}

	read, err := ReadMTL(&buf, "roundtrip.mtl")
	if err != nil {
		t.Fatalf("ReadMTL failed: %v", err)
	}
	if len(read) != len(original) {
		t.Fatalf("Expected %d materials, got %d", len(original), len(read))
	}
	for i := range original {
		if *read[i] != *original[i] {
			t.Errorf("Material %d: expected %+v, got %+v", i, *original[i], *read[i])
		}
	}
}

func TestSaveMTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mtl")
	if err := SaveMTL(path, []*material.Params{material.NewDiffuseParams("white", core.Splat(1))}); err != nil {
		t.Fatalf("SaveMTL failed: %v", err)
	}

	materials, err := LoadMTL(path)
	if err != nil {
		t.Fatalf("LoadMTL failed: %v", err)
	}
	if len(materials) != 1 || materials[0].Name != "white" || materials[0].Color != core.Splat(1) {
		t.Errorf("Unexpected materials after save: %+v", materials)
	}
}
