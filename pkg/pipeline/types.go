// Package pipeline implements the per-vertex and per-fragment stages of the
// rasterizer: the vertex transform, Sutherland-Hodgman frustum clipper, and
// Blinn-Phong fragment shader. The rasterizer's triangle walk itself lives
// in package render, which depends on these types.
package pipeline

import "github.com/taigrr/trophy/pkg/math3d"

// VertexInput is the immutable input to the vertex stage, as read from a
// mesh.
type VertexInput struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	TexCoord math3d.Vec2
	Color    math3d.Color
}

// VertexOutput is produced by the vertex stage from a VertexInput.
type VertexOutput struct {
	ClipPos   math3d.Vec4
	NDCPos    math3d.Vec3
	ScreenPos math3d.Vec3
	WorldPos  math3d.Vec3
	Normal    math3d.Vec3
	TexCoord  math3d.Vec2
	Color     math3d.Color
}

// ClipVertex is the polygon-vertex type the clipper operates on. The
// clipper never touches anything but these fields.
type ClipVertex struct {
	ClipPos  math3d.Vec4
	WorldPos math3d.Vec3
	Normal   math3d.Vec3
	TexCoord math3d.Vec2
	Color    math3d.Color
}

// RasterVertex is fed to the rasterizer after perspective divide and
// viewport transform. Position.Z is depth in [0,1].
type RasterVertex struct {
	Position math3d.Vec3
	WorldPos math3d.Vec3
	Normal   math3d.Vec3
	TexCoord math3d.Vec2
	Color    math3d.Color
}

// Fragment is a per-pixel record produced by barycentric interpolation
// across a RasterVertex triangle.
type Fragment struct {
	ScreenPos math3d.Vec3
	WorldPos  math3d.Vec3
	Normal    math3d.Vec3
	TexCoord  math3d.Vec2
	Color     math3d.Color
}

// ToClipVertex narrows a VertexOutput to the fields the clipper needs.
func (v VertexOutput) ToClipVertex() ClipVertex {
	return ClipVertex{
		ClipPos:  v.ClipPos,
		WorldPos: v.WorldPos,
		Normal:   v.Normal,
		TexCoord: v.TexCoord,
		Color:    v.Color,
	}
}

// ToRasterVertex performs the perspective divide and viewport transform,
// turning a post-clip ClipVertex into screen space.
func (cv ClipVertex) ToRasterVertex(viewportWidth, viewportHeight int) RasterVertex {
	var ndc math3d.Vec3
	if cv.ClipPos.W != 0 {
		ndc = math3d.V3(cv.ClipPos.X/cv.ClipPos.W, cv.ClipPos.Y/cv.ClipPos.W, cv.ClipPos.Z/cv.ClipPos.W)
	} else {
		ndc = math3d.V3(cv.ClipPos.X, cv.ClipPos.Y, cv.ClipPos.Z)
	}

	screen := math3d.V3(
		(ndc.X+1)*0.5*float64(viewportWidth),
		(1-ndc.Y)*0.5*float64(viewportHeight),
		(ndc.Z+1)*0.5,
	)

	return RasterVertex{
		Position: screen,
		WorldPos: cv.WorldPos,
		Normal:   cv.Normal,
		TexCoord: cv.TexCoord,
		Color:    cv.Color,
	}
}
