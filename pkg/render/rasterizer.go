package render

import (
	"context"
	"math"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/trophy/pkg/math3d"
	"github.com/taigrr/trophy/pkg/pipeline"
	"github.com/taigrr/trophy/pkg/shadow"
)

// CullingStats tracks frustum culling performance.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
}

// MeshRenderer is implemented by package models' Mesh type, expressed here
// as an interface so render never imports models (which would import
// render's MeshRenderer-consuming types, forming a cycle).
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer extends MeshRenderer with a local-space bounding box,
// enabling frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// Rasterizer walks triangles through the vertex, clip and fragment stages
// of package pipeline and commits the result to a Framebuffer. Backface
// culling, wireframe and blend mode are toggles on the rasterizer rather
// than per-call parameters, mirroring the state-machine style of a
// traditional immediate-mode renderer.
type Rasterizer struct {
	camera *Camera
	fb     *Framebuffer

	Vertex   *pipeline.VertexStage
	Clip     *pipeline.Clipper
	Fragment *pipeline.FragmentStage

	frustum      Frustum
	frustumDirty bool
	CullingStats CullingStats

	DisableBackfaceCulling bool
	Wireframe              bool
	WireframeColor         math3d.Color
	Blend                  BlendMode
	DepthWrite             bool

	// Workers is the number of goroutines DrawTrianglesParallel dispatches
	// across. Defaults to runtime.NumCPU(), or 4 if that reports less than 1.
	Workers int
}

// NewRasterizer creates a rasterizer bound to camera and fb.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:         camera,
		fb:             fb,
		Vertex:         pipeline.NewVertexStage(),
		Clip:           pipeline.NewClipper(),
		Fragment:       pipeline.NewFragmentStage(),
		frustumDirty:   true,
		DepthWrite:     true,
		WireframeColor: math3d.WhiteColor(),
		Workers:        runtime.NumCPU(),
	}
	if r.Workers < 1 {
		r.Workers = 4
	}
	r.Resize()
	return r
}

// Resize re-reads the framebuffer's dimensions into the vertex stage's
// viewport transform. Call after replacing the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		return
	}
	r.Vertex.SetViewport(r.fb.Width, r.fb.Height)
}

// Width returns the framebuffer width, or 0 if unbound.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height, or 0 if unbound.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// InvalidateFrustum marks the cached frustum as stale. Call after moving or
// rotating the camera.
func (r *Rasterizer) InvalidateFrustum() {
	r.frustumDirty = true
}

// UpdateFrustum recomputes the frustum planes from the camera if dirty.
func (r *Rasterizer) UpdateFrustum() {
	if r.frustumDirty {
		r.frustum = ExtractFrustum(r.camera.ViewProjectionMatrix())
		r.frustumDirty = false
	}
}

// GetFrustum returns the current frustum, recomputing it if needed.
func (r *Rasterizer) GetFrustum() Frustum {
	r.UpdateFrustum()
	return r.frustum
}

// ResetCullingStats zeroes the culling counters. Call once per frame.
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// IsVisible tests a world-space AABB against the frustum.
func (r *Rasterizer) IsVisible(worldBounds AABB) bool {
	r.UpdateFrustum()
	return r.frustum.IntersectsFrustum(worldBounds)
}

// IsVisibleTransformed tests a local-space AABB, transformed by transform,
// against the frustum.
func (r *Rasterizer) IsVisibleTransformed(localBounds AABB, transform math3d.Mat4) bool {
	return r.IsVisible(TransformAABB(localBounds, transform))
}

func (r *Rasterizer) tryFrustumCull(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}

	r.CullingStats.MeshesTested++
	minBounds, maxBounds := bounded.GetBounds()
	if !r.IsVisibleTransformed(AABB{Min: minBounds, Max: maxBounds}, transform) {
		r.CullingStats.MeshesCulled++
		return true
	}
	r.CullingStats.MeshesDrawn++
	return false
}

// edgeCoeffs returns the A, B, C coefficients of the edge function for the
// directed edge (x0,y0) -> (x1,y1): edge(x,y) = A*x + B*y + C.
func edgeCoeffs(x0, y0, x1, y1 float64) (a, b, c float64) {
	return y1 - y0, x0 - x1, y0*x1 - x0*y1
}

func edgeFunc(a, b, c, x, y float64) float64 {
	return a*x + b*y + c
}

// barycentric returns the barycentric coordinates of (px,py) in the
// triangle (x0,y0),(x1,y1),(x2,y2).
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

func min3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }
func max3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }

// DrawTriangle walks a single screen-space triangle (already past the
// vertex and clip stages): backface cull, bounding box, edge-function
// rasterization, per-pixel depth test, Blinn-Phong shading via
// r.Fragment, and an atomic blend+depth commit to the framebuffer. With
// r.Wireframe set, it draws the triangle's three edges instead of filling
// it.
func (r *Rasterizer) DrawTriangle(v0, v1, v2 pipeline.RasterVertex) {
	if r.fb == nil {
		return
	}
	x0, y0 := v0.Position.X, v0.Position.Y
	x1, y1 := v1.Position.X, v1.Position.Y
	x2, y2 := v2.Position.X, v2.Position.Y

	area2 := (x2-x0)*(y1-y0) - (y2-y0)*(x1-x0)
	if !r.DisableBackfaceCulling && area2 < 0 {
		return
	}
	if math.Abs(area2) < 1e-4 {
		return
	}

	if r.Wireframe {
		r.fb.DrawLine(int(x0), int(y0), int(x1), int(y1), r.WireframeColor)
		r.fb.DrawLine(int(x1), int(y1), int(x2), int(y2), r.WireframeColor)
		r.fb.DrawLine(int(x2), int(y2), int(x0), int(y0), r.WireframeColor)
		return
	}

	minX := int(math.Max(0, math.Floor(min3(x0, x1, x2))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(x0, x1, x2))))
	minY := int(math.Max(0, math.Floor(min3(y0, y1, y2))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(y0, y1, y2))))
	if minX > maxX || minY > maxY {
		return
	}

	invArea := 1.0 / area2
	a0, b0, c0 := edgeCoeffs(x1, y1, x2, y2)
	a1, b1, c1 := edgeCoeffs(x2, y2, x0, y0)
	a2, b2, c2 := edgeCoeffs(x0, y0, x1, y1)
	a0, b0, c0 = a0*invArea, b0*invArea, c0*invArea
	a1, b1, c1 = a1*invArea, b1*invArea, c1*invArea
	a2, b2, c2 = a2*invArea, b2*invArea, c2*invArea

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := edgeFunc(a0, b0, c0, px, py)
	w1Row := edgeFunc(a1, b1, c1, px, py)
	w2Row := edgeFunc(a2, b2, c2, px, py)

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				bc := math3d.V3(w0, w1, w2)
				r.shadeAndCommit(x, y, v0, v1, v2, bc)
			}
			w0 += a0
			w1 += a1
			w2 += a2
		}
		w0Row += b0
		w1Row += b1
		w2Row += b2
	}
}

// shadeAndCommit interpolates a RasterVertex triangle's attributes at
// barycentric coordinate bc, runs the fragment stage, and commits the
// result. Interpolation is linear in screen space, not perspective
// correct: the rendering pipeline this is grounded on does the same and
// visibly shows its texture-warping artifact on grazing-angle quads,
// treated as a faithful behavior rather than a bug.
func (r *Rasterizer) shadeAndCommit(x, y int, v0, v1, v2 pipeline.RasterVertex, bc math3d.Vec3) {
	z := bc.X*v0.Position.Z + bc.Y*v1.Position.Z + bc.Z*v2.Position.Z
	if z >= r.fb.GetDepth(x, y) {
		return
	}

	frag := pipeline.Fragment{
		ScreenPos: math3d.V3(float64(x)+0.5, float64(y)+0.5, z),
		WorldPos:  v0.WorldPos.Scale(bc.X).Add(v1.WorldPos.Scale(bc.Y)).Add(v2.WorldPos.Scale(bc.Z)),
		Normal:    v0.Normal.Scale(bc.X).Add(v1.Normal.Scale(bc.Y)).Add(v2.Normal.Scale(bc.Z)),
		TexCoord:  v0.TexCoord.Scale(bc.X).Add(v1.TexCoord.Scale(bc.Y)).Add(v2.TexCoord.Scale(bc.Z)),
		Color:     v0.Color.Scale(bc.X).Add(v1.Color.Scale(bc.Y)).Add(v2.Color.Scale(bc.Z)),
	}

	shaded := r.Fragment.ProcessFragment(frag)
	r.fb.CommitPixel(x, y, z, shaded, r.Blend, r.DepthWrite)
}

// clipAndRaster runs a clip-space triangle (ClipVertex values, before the
// perspective divide) through the clipper and rasterizes every resulting
// triangle.
func (r *Rasterizer) clipAndRaster(cv0, cv1, cv2 pipeline.ClipVertex) {
	if r.Clip.IsTriangleOutside(cv0, cv1, cv2) {
		return
	}
	tris := r.Clip.ClipTriangle(cv0, cv1, cv2)
	w, h := r.Width(), r.Height()
	for i := 0; i+2 < len(tris); i += 3 {
		rv0 := tris[i].ToRasterVertex(w, h)
		rv1 := tris[i+1].ToRasterVertex(w, h)
		rv2 := tris[i+2].ToRasterVertex(w, h)
		r.DrawTriangle(rv0, rv1, rv2)
	}
}

// DrawMesh renders every triangle of mesh under transform using the
// rasterizer's current vertex/fragment stage state. The model matrix is
// set on r.Vertex as a side effect. Frustum-culled meshes draw nothing.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4) {
	if r.tryFrustumCull(mesh, transform) {
		return
	}
	r.Vertex.SetModelMatrix(transform)

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)
		cv0 := r.processMeshVertex(mesh, face[0])
		cv1 := r.processMeshVertex(mesh, face[1])
		cv2 := r.processMeshVertex(mesh, face[2])
		r.clipAndRaster(cv0, cv1, cv2)
	}
}

func (r *Rasterizer) processMeshVertex(mesh MeshRenderer, i int) pipeline.ClipVertex {
	pos, normal, uv := mesh.GetVertex(i)
	out := r.Vertex.ProcessVertex(pipeline.VertexInput{
		Position: pos,
		Normal:   normal,
		TexCoord: uv,
		Color:    math3d.WhiteColor(),
	})
	return out.ToClipVertex()
}

// meshTriangle lets DrawTrianglesParallel index into
// a mesh's triangle list without re-deriving the clip vertices until a
// worker goroutine actually claims that index.
type meshTriangle struct {
	mesh      MeshRenderer
	transform math3d.Mat4
	index     int
}

// DrawTrianglesParallel renders meshes's combined triangle lists across
// r.Workers goroutines. Each mesh is frustum-culled up front, on the
// calling goroutine, before any work is dispatched. Workers pull indices
// from a shared atomic counter (work stealing rather than a static split,
// so an uneven clip/cull pattern across goroutines does not stall the
// fastest ones), and every pixel commit goes through the framebuffer's
// striped-mutex CommitPixel, so no two workers racing the same pixel can
// interleave their depth-test-then-write.
func (r *Rasterizer) DrawTrianglesParallel(ctx context.Context, meshes []struct {
	Mesh      MeshRenderer
	Transform math3d.Mat4
}) error {
	var work []meshTriangle
	for _, m := range meshes {
		if r.tryFrustumCull(m.Mesh, m.Transform) {
			continue
		}
		for i := 0; i < m.Mesh.TriangleCount(); i++ {
			work = append(work, meshTriangle{mesh: m.Mesh, transform: m.Transform, index: i})
		}
	}
	if len(work) == 0 {
		return nil
	}

	var counter atomic.Int64
	g, ctx := errgroup.WithContext(ctx)

	for w := 0; w < r.Workers; w++ {
		g.Go(func() error {
			vertex := pipeline.NewVertexStage()
			vertex.SetViewport(r.Width(), r.Height())
			vertex.SetViewMatrix(r.camera.ViewMatrix())
			vertex.SetProjectionMatrix(r.camera.ProjectionMatrix())
			clip := pipeline.NewClipper()

			for {
				idx := int(counter.Add(1)) - 1
				if idx >= len(work) {
					return nil
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				t := work[idx]
				if vertex.Uniforms().Model != t.transform {
					vertex.SetModelMatrix(t.transform)
				}

				face := t.mesh.GetFace(t.index)
				cv0 := processVertexWith(vertex, t.mesh, face[0])
				cv1 := processVertexWith(vertex, t.mesh, face[1])
				cv2 := processVertexWith(vertex, t.mesh, face[2])

				if clip.IsTriangleOutside(cv0, cv1, cv2) {
					continue
				}
				tris := clip.ClipTriangle(cv0, cv1, cv2)
				w, h := r.Width(), r.Height()
				for i := 0; i+2 < len(tris); i += 3 {
					rv0 := tris[i].ToRasterVertex(w, h)
					rv1 := tris[i+1].ToRasterVertex(w, h)
					rv2 := tris[i+2].ToRasterVertex(w, h)
					r.DrawTriangle(rv0, rv1, rv2)
				}
			}
		})
	}

	return g.Wait()
}

func processVertexWith(vertex *pipeline.VertexStage, mesh MeshRenderer, i int) pipeline.ClipVertex {
	pos, normal, uv := mesh.GetVertex(i)
	out := vertex.ProcessVertex(pipeline.VertexInput{
		Position: pos,
		Normal:   normal,
		TexCoord: uv,
		Color:    math3d.WhiteColor(),
	})
	return out.ToClipVertex()
}

// DrawMeshShadow rasterizes mesh's depth into m, from m's light-space
// matrix, with no clipping against the light frustum: a triangle is skipped
// only when one of its vertices has w <= 0; any other triangle is
// rasterized with its bounding box clamped to the map, and its depths are
// passed to DepthTest as computed, even outside [0,1].
func (r *Rasterizer) DrawMeshShadow(m *shadow.Map, mesh MeshRenderer, transform math3d.Mat4) {
	lightSpace := m.LightSpaceMatrix()
	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)
		var sx, sy, sz [3]float64
		behind := false
		for k, vi := range face {
			pos, _, _ := mesh.GetVertex(vi)
			world := transform.MulVec3(pos)
			clip := lightSpace.MulVec4(math3d.V4FromV3(world, 1))
			if clip.W <= 0 {
				behind = true
				break
			}
			ndc := clip.PerspectiveDivide()
			sx[k] = (ndc.X + 1) * 0.5 * float64(m.Width())
			sy[k] = (1 - ndc.Y) * 0.5 * float64(m.Height())
			sz[k] = (ndc.Z + 1) * 0.5
		}
		if behind {
			continue
		}
		rasterizeShadowTriangle(m, sx, sy, sz)
	}
}

func rasterizeShadowTriangle(m *shadow.Map, x, y, z [3]float64) {
	area2 := (x[1]-x[0])*(y[2]-y[0]) - (x[2]-x[0])*(y[1]-y[0])
	if area2 == 0 {
		return
	}

	minX := int(math.Max(0, math.Floor(min3(x[0], x[1], x[2]))))
	maxX := int(math.Min(float64(m.Width()-1), math.Ceil(max3(x[0], x[1], x[2]))))
	minY := int(math.Max(0, math.Floor(min3(y[0], y[1], y[2]))))
	maxY := int(math.Min(float64(m.Height()-1), math.Ceil(max3(y[0], y[1], y[2]))))
	if minX > maxX || minY > maxY {
		return
	}

	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			bc := barycentric(x[0], y[0], x[1], y[1], x[2], y[2], float64(px)+0.5, float64(py)+0.5)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}
			depth := bc.X*z[0] + bc.Y*z[1] + bc.Z*z[2]
			m.DepthTest(px, py, depth)
		}
	}
}
