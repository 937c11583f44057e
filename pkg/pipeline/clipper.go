package pipeline

import "github.com/taigrr/trophy/pkg/math3d"

// ClipPlane identifies one of the six clip-space frustum half-spaces.
type ClipPlane int

const (
	PlaneLeft ClipPlane = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

// clipOrder is the order planes are applied in. NEAR is clipped first so
// that later stages never divide by a non-positive w.
var clipOrder = [6]ClipPlane{PlaneNear, PlaneFar, PlaneLeft, PlaneRight, PlaneBottom, PlaneTop}

// Clipper performs Sutherland-Hodgman polygon clipping of triangles against
// the six clip-space half-spaces.
type Clipper struct{}

// NewClipper returns a ready-to-use Clipper. It carries no state.
func NewClipper() *Clipper {
	return &Clipper{}
}

// signedDistance returns the signed distance of a clip-space position from
// the inside face of plane; >= 0 means inside.
func signedDistance(p math3d.Vec4, plane ClipPlane) float64 {
	switch plane {
	case PlaneLeft:
		return p.X + p.W
	case PlaneRight:
		return p.W - p.X
	case PlaneBottom:
		return p.Y + p.W
	case PlaneTop:
		return p.W - p.Y
	case PlaneNear:
		return p.Z + p.W
	case PlaneFar:
		return p.W - p.Z
	}
	return 0
}

// IsInsidePlane reports whether a clip-space position is on the inside face
// of plane.
func IsInsidePlane(p math3d.Vec4, plane ClipPlane) bool {
	return signedDistance(p, plane) >= 0
}

// IsInsideFrustum reports whether a clip-space position is inside all six
// half-spaces simultaneously.
func IsInsideFrustum(p math3d.Vec4) bool {
	for _, plane := range clipOrder {
		if !IsInsidePlane(p, plane) {
			return false
		}
	}
	return true
}

// IsTriangleOutside is a trivial-reject test: true if all three vertices
// share a common half-space violation, letting callers skip the full
// Sutherland-Hodgman pass for triangles that plainly cannot contribute.
func (c *Clipper) IsTriangleOutside(v0, v1, v2 ClipVertex) bool {
	for _, plane := range clipOrder {
		if !IsInsidePlane(v0.ClipPos, plane) &&
			!IsInsidePlane(v1.ClipPos, plane) &&
			!IsInsidePlane(v2.ClipPos, plane) {
			return true
		}
	}
	return false
}

func interpolateVertex(a, b ClipVertex, t float64) ClipVertex {
	normal := a.Normal.Lerp(b.Normal, t).Normalize()
	return ClipVertex{
		ClipPos:  a.ClipPos.Lerp(b.ClipPos, t),
		WorldPos: a.WorldPos.Lerp(b.WorldPos, t),
		Normal:   normal,
		TexCoord: a.TexCoord.Lerp(b.TexCoord, t),
		Color:    a.Color.Lerp(b.Color, t),
	}
}

// intersectPlane computes the parameter t at which the edge (v0 -> v1)
// crosses plane. d0/d1 are the edge endpoints' signed distances.
func intersectPlane(d0, d1 float64) float64 {
	return d0 / (d0 - d1)
}

func clipPolygonAgainstPlane(poly []ClipVertex, plane ClipPlane) []ClipVertex {
	if len(poly) == 0 {
		return nil
	}
	out := make([]ClipVertex, 0, len(poly)+2)

	for i := range poly {
		current := poly[i]
		next := poly[(i+1)%len(poly)]

		dCurrent := signedDistance(current.ClipPos, plane)
		dNext := signedDistance(next.ClipPos, plane)

		currentInside := dCurrent >= 0
		nextInside := dNext >= 0

		switch {
		case currentInside && nextInside:
			out = append(out, next)
		case currentInside && !nextInside:
			t := intersectPlane(dCurrent, dNext)
			out = append(out, interpolateVertex(current, next, t))
		case !currentInside && nextInside:
			t := intersectPlane(dCurrent, dNext)
			out = append(out, interpolateVertex(current, next, t), next)
		default:
			// both outside: emit nothing
		}
	}

	return out
}

// ClipTriangle clips a triangle against all six frustum planes in order and
// fan-triangulates the resulting polygon. The returned slice's length is
// always a multiple of 3 (0 if the triangle was fully clipped away).
func (c *Clipper) ClipTriangle(v0, v1, v2 ClipVertex) []ClipVertex {
	poly := []ClipVertex{v0, v1, v2}

	for _, plane := range clipOrder {
		poly = clipPolygonAgainstPlane(poly, plane)
		if len(poly) == 0 {
			return nil
		}
	}

	if len(poly) < 3 {
		return nil
	}

	tris := make([]ClipVertex, 0, (len(poly)-2)*3)
	for i := 1; i < len(poly)-1; i++ {
		tris = append(tris, poly[0], poly[i], poly[i+1])
	}
	return tris
}
