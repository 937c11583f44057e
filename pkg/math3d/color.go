package math3d

import "math"

// Color is an RGBA color with components in [0,1]. Every pipeline stage
// (vertex, clipper, rasterizer, fragment, framebuffer) operates on this
// floating-point representation; conversion to 8-bit channels happens only
// at the image-output boundary.
type Color struct {
	R, G, B, A float64
}

// RGBAColor constructs a Color from float64 components.
func RGBAColor(r, g, b, a float64) Color {
	return Color{r, g, b, a}
}

// Gray returns an opaque gray color with all channels set to v.
func Gray(v float64) Color {
	return Color{v, v, v, 1}
}

func BlackColor() Color { return Color{0, 0, 0, 1} }
func WhiteColor() Color { return Color{1, 1, 1, 1} }

// Add returns the component-wise sum.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A}
}

// Mul returns the component-wise product (modulate).
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Scale returns the color scaled uniformly by s (alpha included).
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A * s}
}

// ScaleRGB returns the color with only RGB scaled by s, alpha untouched.
func (c Color) ScaleRGB(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A}
}

// Lerp returns the linear interpolation between c and o by t.
func (c Color) Lerp(o Color, t float64) Color {
	return Color{
		c.R + (o.R-c.R)*t,
		c.G + (o.G-c.G)*t,
		c.B + (o.B-c.B)*t,
		c.A + (o.A-c.A)*t,
	}
}

// Clamp01 clamps every channel to [0,1].
func (c Color) Clamp01() Color {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	return Color{clamp(c.R), clamp(c.G), clamp(c.B), clamp(c.A)}
}

// ToBytes converts a clamped [0,1] color to 8-bit channels using
// round(clamp(c,0,1)*255), the conversion the PPM/TGA writers require.
func (c Color) ToBytes() (r, g, b, a uint8) {
	cc := c.Clamp01()
	conv := func(v float64) uint8 {
		return uint8(math.Round(v * 255))
	}
	return conv(cc.R), conv(cc.G), conv(cc.B), conv(cc.A)
}
