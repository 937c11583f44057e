package models

import (
	"math"
	"testing"

	"github.com/taigrr/trophy/pkg/math3d"
)

func triangleMesh() *Mesh {
	m := NewMesh("tri")
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(1, 0, 0)},
		{Position: math3d.V3(0, 1, 0)},
	}
	m.Faces = []Face{{V: [3]int{0, 1, 2}, Material: -1}}
	return m
}

func TestCalculateNormalsFlat(t *testing.T) {
	m := triangleMesh()
	m.CalculateNormals()

	want := math3d.V3(0, 0, 1)
	for i, v := range m.Vertices {
		if v.Normal.Sub(want).Len() > 1e-9 {
			t.Errorf("vertex %d normal = %v, want %v", i, v.Normal, want)
		}
	}
}

func TestCalculateSmoothNormalsAverages(t *testing.T) {
	m := NewMesh("quad")
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(-1, -1, 0)},
		{Position: math3d.V3(1, -1, 0)},
		{Position: math3d.V3(1, 1, 0)},
		{Position: math3d.V3(-1, 1, 0)},
	}
	m.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: -1},
		{V: [3]int{0, 2, 3}, Material: -1},
	}
	m.CalculateSmoothNormals()

	for i, v := range m.Vertices {
		if math.Abs(v.Normal.Len()-1) > 1e-9 {
			t.Errorf("vertex %d normal not unit length: %v", i, v.Normal)
		}
		if v.Normal.Sub(math3d.V3(0, 0, 1)).Len() > 1e-9 {
			t.Errorf("vertex %d normal = %v, want (0,0,1)", i, v.Normal)
		}
	}
}

func TestCalculateBoundsAndCenter(t *testing.T) {
	m := triangleMesh()
	m.CalculateBounds()

	if m.BoundsMin != math3d.V3(0, 0, 0) {
		t.Errorf("BoundsMin = %v, want (0,0,0)", m.BoundsMin)
	}
	if m.BoundsMax != math3d.V3(1, 1, 0) {
		t.Errorf("BoundsMax = %v, want (1,1,0)", m.BoundsMax)
	}

	center := m.Center()
	if center != math3d.V3(0.5, 0.5, 0) {
		t.Errorf("Center = %v, want (0.5,0.5,0)", center)
	}
}

func TestMeshGetVertexAndFaceImplementRenderer(t *testing.T) {
	m := triangleMesh()
	m.CalculateNormals()

	pos, normal, _ := m.GetVertex(1)
	if pos != math3d.V3(1, 0, 0) {
		t.Errorf("GetVertex(1) position = %v, want (1,0,0)", pos)
	}
	if normal.Sub(math3d.V3(0, 0, 1)).Len() > 1e-9 {
		t.Errorf("GetVertex(1) normal = %v, want (0,0,1)", normal)
	}

	face := m.GetFace(0)
	if face != [3]int{0, 1, 2} {
		t.Errorf("GetFace(0) = %v, want {0,1,2}", face)
	}

	minB, maxB := m.GetBounds()
	if minB != m.BoundsMin || maxB != m.BoundsMax {
		t.Error("GetBounds should return BoundsMin/BoundsMax")
	}
}

func TestToPipelineMaterialDielectric(t *testing.T) {
	m := Material{
		Name:      "plastic",
		BaseColor: [4]float64{1, 0, 0, 1},
		Metallic:  0,
		Roughness: 0.5,
	}
	pm := m.ToPipelineMaterial()

	if pm.Diffuse.R != 1 || pm.Diffuse.G != 0 || pm.Diffuse.B != 0 {
		t.Errorf("dielectric diffuse = %v, want full base color", pm.Diffuse)
	}
	if pm.Specular.R >= 0.5 {
		t.Errorf("dielectric specular should stay near the 4%% reflectance floor, got %v", pm.Specular)
	}
	if pm.Shininess <= 1 {
		t.Errorf("shininess should exceed the floor for roughness < 1, got %v", pm.Shininess)
	}
}

func TestToPipelineMaterialMetal(t *testing.T) {
	m := Material{
		Name:      "gold",
		BaseColor: [4]float64{1, 0.8, 0, 1},
		Metallic:  1,
		Roughness: 0,
	}
	pm := m.ToPipelineMaterial()

	if pm.Diffuse.R != 0 || pm.Diffuse.G != 0 {
		t.Errorf("fully metallic diffuse should vanish, got %v", pm.Diffuse)
	}
	if pm.Specular.R < 0.9 {
		t.Errorf("fully metallic specular should carry the base color, got %v", pm.Specular)
	}
	if pm.Shininess != 128 {
		t.Errorf("zero roughness should hit the max shininess, got %v", pm.Shininess)
	}
}

func TestMeshTransformUpdatesBounds(t *testing.T) {
	m := triangleMesh()
	m.CalculateNormals()
	m.Transform(math3d.Translate(math3d.V3(5, 0, 0)))

	if m.BoundsMin.X != 5 {
		t.Errorf("BoundsMin.X = %v, want 5", m.BoundsMin.X)
	}
}
