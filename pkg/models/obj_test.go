package models

import (
	"strings"
	"testing"

	"github.com/taigrr/trophy/pkg/math3d"
)

const triangleOBJ = `
# comment
v 0.0 0.0 0.0
v 1.0 0.0 0.0
v 0.0 1.0 0.0
vn 0.0 0.0 1.0
vt 0.0 0.0
vt 1.0 0.0
vt 0.0 1.0
f 1/1/1 2/2/1 3/3/1
`

func TestParseOBJTriangle(t *testing.T) {
	meshes, err := parseOBJ(strings.NewReader(triangleOBJ), "triangle")
	if err != nil {
		t.Fatalf("parseOBJ failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	m := meshes[0]
	if m.VertexCount() != 3 {
		t.Fatalf("expected 3 vertices, got %d", m.VertexCount())
	}
	if m.TriangleCount() != 1 {
		t.Fatalf("expected 1 triangle, got %d", m.TriangleCount())
	}
	if m.Vertices[0].Position != math3d.V3(0, 0, 0) {
		t.Errorf("vertex 0 position = %v", m.Vertices[0].Position)
	}
	if m.Vertices[0].Normal != math3d.V3(0, 0, 1) {
		t.Errorf("vertex 0 normal = %v", m.Vertices[0].Normal)
	}
	if m.Vertices[1].UV != math3d.V2(1, 0) {
		t.Errorf("vertex 1 uv = %v", m.Vertices[1].UV)
	}
}

const quadOBJ = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

func TestParseOBJQuadFanTriangulated(t *testing.T) {
	meshes, err := parseOBJ(strings.NewReader(quadOBJ), "quad")
	if err != nil {
		t.Fatalf("parseOBJ failed: %v", err)
	}
	m := meshes[0]
	if m.TriangleCount() != 2 {
		t.Fatalf("expected a quad to fan-triangulate into 2 triangles, got %d", m.TriangleCount())
	}
	if m.Faces[0].V != [3]int{0, 1, 2} || m.Faces[1].V != [3]int{0, 2, 3} {
		t.Errorf("unexpected fan triangulation: %v", m.Faces)
	}
}

const groupedOBJ = `
o first
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
o second
v 2 0 0
v 3 0 0
v 2 1 0
f 1 2 3
`

func TestParseOBJMultipleGroups(t *testing.T) {
	meshes, err := parseOBJ(strings.NewReader(groupedOBJ), "grouped")
	if err != nil {
		t.Fatalf("parseOBJ failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	if meshes[0].Name != "first" || meshes[1].Name != "second" {
		t.Errorf("unexpected names: %q, %q", meshes[0].Name, meshes[1].Name)
	}
	// Each group's vertex indices restart from its own local position list.
	if meshes[1].Vertices[0].Position != math3d.V3(2, 0, 0) {
		t.Errorf("second group vertex 0 = %v, want (2,0,0)", meshes[1].Vertices[0].Position)
	}
}

func TestParseOBJNegativeIndices(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	meshes, err := parseOBJ(strings.NewReader(src), "neg")
	if err != nil {
		t.Fatalf("parseOBJ failed: %v", err)
	}
	if meshes[0].TriangleCount() != 1 {
		t.Fatalf("expected 1 triangle, got %d", meshes[0].TriangleCount())
	}
}

func TestLoadOBJMissingFile(t *testing.T) {
	_, err := LoadOBJ("/nonexistent/path.obj")
	if err == nil {
		t.Error("expected error for missing file")
	}
}
