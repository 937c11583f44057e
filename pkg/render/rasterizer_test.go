package render

import (
	"context"
	"testing"

	"github.com/taigrr/trophy/pkg/math3d"
	"github.com/taigrr/trophy/pkg/pipeline"
	"github.com/taigrr/trophy/pkg/shadow"
)

// mockMesh implements MeshRenderer for testing.
type mockMesh struct {
	vertices []struct {
		pos    math3d.Vec3
		normal math3d.Vec3
		uv     math3d.Vec2
	}
	faces [][3]int
}

func (m *mockMesh) VertexCount() int     { return len(m.vertices) }
func (m *mockMesh) TriangleCount() int   { return len(m.faces) }
func (m *mockMesh) GetFace(i int) [3]int { return m.faces[i] }
func (m *mockMesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.vertices[i]
	return v.pos, v.normal, v.uv
}

// createTestRasterizer builds a rasterizer aimed at the origin from (0,0,10)
// with its vertex stage's view/projection wired to the camera, and a flat
// white unshadowed material so DrawMesh/DrawTriangle tests can assert on
// pixel coverage without configuring lighting explicitly.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	camera := NewCamera()
	camera.SetPosition(math3d.V3(0, 0, 10))
	camera.LookAt(math3d.Zero3())
	camera.SetAspectRatio(float64(width) / float64(height))
	camera.SetFOV(60)

	r := NewRasterizer(camera, fb)
	r.Vertex.SetViewMatrix(camera.ViewMatrix())
	r.Vertex.SetProjectionMatrix(camera.ProjectionMatrix())
	r.Fragment.SetMaterial(pipeline.Material{
		Ambient:   math3d.WhiteColor(),
		Diffuse:   math3d.WhiteColor(),
		Specular:  math3d.BlackColor(),
		Shininess: 1,
	})
	r.Fragment.SetAmbientLight(math3d.WhiteColor())
	return r, fb
}

func countLitPixels(fb *Framebuffer) int {
	count := 0
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.GetPixel(x, y)
			if c.R > 0 || c.G > 0 || c.B > 0 {
				count++
			}
		}
	}
	return count
}

func TestBarycentric(t *testing.T) {
	tests := []struct {
		name     string
		px, py   float64
		expected math3d.Vec3
	}{
		{"vertex 0", 0, 0, math3d.V3(1, 0, 0)},
		{"vertex 1", 1, 0, math3d.V3(0, 1, 0)},
		{"vertex 2", 0, 1, math3d.V3(0, 0, 1)},
		{"centroid", 1.0 / 3, 1.0 / 3, math3d.V3(1.0/3, 1.0/3, 1.0/3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bc := barycentric(0, 0, 1, 0, 0, 1, tc.px, tc.py)
			if absF(bc.X-tc.expected.X) > 0.001 ||
				absF(bc.Y-tc.expected.Y) > 0.001 ||
				absF(bc.Z-tc.expected.Z) > 0.001 {
				t.Errorf("barycentric(%v, %v) = %v, want %v", tc.px, tc.py, bc, tc.expected)
			}
		})
	}

	t.Run("outside triangle", func(t *testing.T) {
		bc := barycentric(0, 0, 1, 0, 0, 1, -1, -1)
		if bc.X >= 0 && bc.Y >= 0 && bc.Z >= 0 {
			t.Error("point outside triangle should have a negative barycentric coordinate")
		}
	})
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestMin3Max3(t *testing.T) {
	if min3(1, 2, 3) != 1 || min3(3, 1, 2) != 1 || min3(2, 3, 1) != 1 {
		t.Error("min3 failed")
	}
	if max3(1, 2, 3) != 3 || max3(3, 1, 2) != 3 || max3(2, 3, 1) != 3 {
		t.Error("max3 failed")
	}
}

// rasterVert is a small helper building a pipeline.RasterVertex in screen
// space for direct DrawTriangle tests.
func rasterVert(x, y, z float64, normal math3d.Vec3) pipeline.RasterVertex {
	return pipeline.RasterVertex{
		Position: math3d.V3(x, y, z),
		WorldPos: math3d.V3(x, y, z),
		Normal:   normal,
		Color:    math3d.WhiteColor(),
	}
}

func TestDrawTriangleFrontFacing(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	fb.ClearDepth(1.0)
	fb.Clear(math3d.BlackColor())

	// area = (v2.x-v0.x)*(v1.y-v0.y) - (v2.y-v0.y)*(v1.x-v0.x) > 0 is
	// front-facing per the rasterizer's convention.
	v0 := rasterVert(20, 80, 0.5, math3d.V3(0, 0, 1))
	v1 := rasterVert(80, 80, 0.5, math3d.V3(0, 0, 1))
	v2 := rasterVert(50, 20, 0.5, math3d.V3(0, 0, 1))

	r.DrawTriangle(v0, v1, v2)

	if countLitPixels(fb) == 0 {
		t.Error("front-facing triangle should draw visible pixels")
	}
}

func TestDrawTriangleBackfaceCulled(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	fb.ClearDepth(1.0)
	fb.Clear(math3d.BlackColor())

	// Reverse the winding of the front-facing case above.
	v0 := rasterVert(20, 80, 0.5, math3d.V3(0, 0, 1))
	v1 := rasterVert(50, 20, 0.5, math3d.V3(0, 0, 1))
	v2 := rasterVert(80, 80, 0.5, math3d.V3(0, 0, 1))

	r.DrawTriangle(v0, v1, v2)

	if countLitPixels(fb) > 0 {
		t.Error("back-facing triangle should be culled")
	}
}

func TestDrawTriangleDepthTest(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	fb.ClearDepth(1.0)
	fb.Clear(math3d.BlackColor())

	near := rasterVert(20, 80, 0.2, math3d.V3(0, 0, 1))
	near1 := rasterVert(80, 80, 0.2, math3d.V3(0, 0, 1))
	near2 := rasterVert(50, 20, 0.2, math3d.V3(0, 0, 1))
	r.DrawTriangle(near, near1, near2)

	r.Fragment.SetMaterial(pipeline.Material{Ambient: math3d.BlackColor(), Diffuse: math3d.RGBAColor(0, 0, 0, 1)})
	far := rasterVert(20, 80, 0.8, math3d.V3(0, 0, 1))
	far1 := rasterVert(80, 80, 0.8, math3d.V3(0, 0, 1))
	far2 := rasterVert(50, 20, 0.8, math3d.V3(0, 0, 1))
	r.DrawTriangle(far, far1, far2)

	if countLitPixels(fb) == 0 {
		t.Error("nearer triangle drawn first should remain visible after a farther triangle is drawn over it")
	}
}

func TestDrawMeshRendersVisiblePixels(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	fb.ClearDepth(1.0)
	fb.Clear(math3d.BlackColor())

	mesh := &mockMesh{
		vertices: []struct {
			pos    math3d.Vec3
			normal math3d.Vec3
			uv     math3d.Vec2
		}{
			{math3d.V3(-5, -5, 0), math3d.V3(0, 0, 1), math3d.V2(0, 0)},
			{math3d.V3(5, -5, 0), math3d.V3(0, 0, 1), math3d.V2(1, 0)},
			{math3d.V3(5, 5, 0), math3d.V3(0, 0, 1), math3d.V2(1, 1)},
			{math3d.V3(-5, 5, 0), math3d.V3(0, 0, 1), math3d.V2(0, 1)},
		},
		faces: [][3]int{
			{0, 2, 3},
			{0, 1, 2},
		},
	}

	r.DrawMesh(mesh, math3d.Identity())

	if countLitPixels(fb) == 0 {
		t.Error("DrawMesh should render visible pixels")
	}
}

func TestDrawTrianglesParallelMatchesSequential(t *testing.T) {
	mesh := &mockMesh{
		vertices: []struct {
			pos    math3d.Vec3
			normal math3d.Vec3
			uv     math3d.Vec2
		}{
			{math3d.V3(-5, -5, 0), math3d.V3(0, 0, 1), math3d.V2(0, 0)},
			{math3d.V3(5, -5, 0), math3d.V3(0, 0, 1), math3d.V2(1, 0)},
			{math3d.V3(5, 5, 0), math3d.V3(0, 0, 1), math3d.V2(1, 1)},
			{math3d.V3(-5, 5, 0), math3d.V3(0, 0, 1), math3d.V2(0, 1)},
		},
		faces: [][3]int{
			{0, 2, 3},
			{0, 1, 2},
		},
	}

	rSeq, fbSeq := createTestRasterizer(64, 64)
	fbSeq.ClearDepth(1.0)
	rSeq.DrawMesh(mesh, math3d.Identity())
	seqCount := countLitPixels(fbSeq)

	rPar, fbPar := createTestRasterizer(64, 64)
	fbPar.ClearDepth(1.0)
	rPar.Workers = 4
	err := rPar.DrawTrianglesParallel(context.Background(), []struct {
		Mesh      MeshRenderer
		Transform math3d.Mat4
	}{{Mesh: mesh, Transform: math3d.Identity()}})
	if err != nil {
		t.Fatalf("DrawTrianglesParallel returned error: %v", err)
	}
	parCount := countLitPixels(fbPar)

	if parCount == 0 {
		t.Fatal("parallel draw produced no pixels")
	}
	if absInt(seqCount-parCount) > seqCount/10+2 {
		t.Errorf("parallel pixel coverage %d diverges too far from sequential %d", parCount, seqCount)
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// TestDrawMeshShadowWritesDepth checks that rasterizing a mesh into a shadow
// map actually writes closer-than-far depth values for the texels it covers,
// and leaves texels outside the mesh's projection at the cleared far value.
func TestDrawMeshShadowWritesDepth(t *testing.T) {
	mesh := &mockMesh{
		vertices: []struct {
			pos    math3d.Vec3
			normal math3d.Vec3
			uv     math3d.Vec2
		}{
			{math3d.V3(-5, -5, 0), math3d.V3(0, 0, 1), math3d.V2(0, 0)},
			{math3d.V3(5, -5, 0), math3d.V3(0, 0, 1), math3d.V2(1, 0)},
			{math3d.V3(5, 5, 0), math3d.V3(0, 0, 1), math3d.V2(1, 1)},
			{math3d.V3(-5, 5, 0), math3d.V3(0, 0, 1), math3d.V2(0, 1)},
		},
		faces: [][3]int{
			{0, 2, 3},
			{0, 1, 2},
		},
	}

	camera := NewCamera()
	camera.SetPosition(math3d.V3(0, 0, 10))
	camera.LookAt(math3d.Zero3())
	camera.SetAspectRatio(1)
	r := NewRasterizer(camera, NewFramebuffer(1, 1))

	m := shadow.NewMap(32, 32)
	m.SetupDirectionalLight(math3d.V3(0, 0, -1), math3d.Zero3(), 10)

	r.DrawMeshShadow(m, mesh, math3d.Identity())

	center := m.GetDepth(16, 16)
	if center >= 1.0 {
		t.Errorf("center texel under the quad should have depth < 1.0, got %v", center)
	}

	corner := m.GetDepth(0, 0)
	if corner != 1.0 {
		t.Errorf("texel outside the quad should stay at the cleared far value, got %v", corner)
	}
}
