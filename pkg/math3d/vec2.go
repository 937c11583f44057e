package math3d

import "math"

// Vec2 represents a 2D vector, used throughout the pipeline for texture
// coordinates.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Zero2 returns the zero vector.
func Zero2() Vec2 {
	return Vec2{}
}

// Add returns the vector sum a + b.
func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

// Sub returns the vector difference a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Scale returns the scalar product a * s.
func (a Vec2) Scale(s float64) Vec2 {
	return Vec2{a.X * s, a.Y * s}
}

// Dot returns the dot product a · b.
func (a Vec2) Dot(b Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Len returns the length (magnitude) of the vector.
func (a Vec2) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y)
}

// Lerp returns the linear interpolation between a and b by t.
func (a Vec2) Lerp(b Vec2, t float64) Vec2 {
	return Vec2{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
	}
}
