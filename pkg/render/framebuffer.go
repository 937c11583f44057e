// Package render implements the rasterizer: the triangle walk, parallel
// dispatch, framebuffer, texture sampler, and camera that sit around the
// pipeline package's vertex/clip/fragment stages.
package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"

	"github.com/taigrr/trophy/pkg/math3d"
)

func imageColor(r, g, b, a uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: a}
}

// BlendMode selects how a source color is combined with the framebuffer's
// existing destination color on write.
type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendAlpha
	BlendAdditive
	BlendMultiply
)

// blend combines src over dst according to mode.
func blend(mode BlendMode, src, dst math3d.Color) math3d.Color {
	switch mode {
	case BlendAlpha:
		return math3d.Color{
			R: src.R*src.A + dst.R*(1-src.A),
			G: src.G*src.A + dst.G*(1-src.A),
			B: src.B*src.A + dst.B*(1-src.A),
			A: src.A + dst.A*(1-src.A),
		}
	case BlendAdditive:
		min1 := func(v float64) float64 {
			if v > 1 {
				return 1
			}
			return v
		}
		return math3d.Color{
			R: min1(src.R + dst.R),
			G: min1(src.G + dst.G),
			B: min1(src.B + dst.B),
			A: min1(src.A + dst.A),
		}
	case BlendMultiply:
		return src.Mul(dst)
	default: // BlendNone
		return src
	}
}

// rowLockStripes is the number of mutexes the framebuffer stripes its rows
// across for the parallel rasterizer's per-pixel critical section. A fixed
// stripe count keeps contention low without a per-row allocation.
const rowLockStripes = 64

// Framebuffer is a pair of width*height color and depth buffers. Index is
// y*width + x with origin at top-left. Out-of-bounds writes are silent
// no-ops; out-of-bounds reads return black / 1.0, matching the depth
// convention that smaller is closer and the clear depth is the far value.
type Framebuffer struct {
	Width, Height int
	color         []math3d.Color
	depth         []float64
	stripes       [rowLockStripes]sync.Mutex
}

// NewFramebuffer allocates a framebuffer cleared to black / depth 1.0.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		color:  make([]math3d.Color, width*height),
		depth:  make([]float64, width*height),
	}
	fb.Clear(math3d.BlackColor())
	fb.ClearDepth(1.0)
	return fb
}

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

// Clear fills the color buffer with c.
func (fb *Framebuffer) Clear(c math3d.Color) {
	for i := range fb.color {
		fb.color[i] = c
	}
}

// ClearDepth fills the depth buffer with value.
func (fb *Framebuffer) ClearDepth(value float64) {
	for i := range fb.depth {
		fb.depth[i] = value
	}
}

// SetPixel overwrites the color at (x,y). Out-of-bounds is a no-op.
func (fb *Framebuffer) SetPixel(x, y int, c math3d.Color) {
	if !fb.inBounds(x, y) {
		return
	}
	fb.color[y*fb.Width+x] = c
}

// GetPixel reads the color at (x,y). Out-of-bounds reads return black.
func (fb *Framebuffer) GetPixel(x, y int) math3d.Color {
	if !fb.inBounds(x, y) {
		return math3d.BlackColor()
	}
	return fb.color[y*fb.Width+x]
}

// PixelBytes reads the color at (x,y) as 8-bit channels, for image encoders
// in package output that need not depend on math3d.Color directly.
// Out-of-bounds reads return opaque black.
func (fb *Framebuffer) PixelBytes(x, y int) (r, g, b, a uint8) {
	return fb.GetPixel(x, y).ToBytes()
}

// Bounds returns the framebuffer's width and height.
func (fb *Framebuffer) Bounds() (width, height int) {
	return fb.Width, fb.Height
}

// SetDepth overwrites the depth at (x,y). Out-of-bounds is a no-op.
func (fb *Framebuffer) SetDepth(x, y int, d float64) {
	if !fb.inBounds(x, y) {
		return
	}
	fb.depth[y*fb.Width+x] = d
}

// GetDepth reads the depth at (x,y). Out-of-bounds reads return 1.0.
func (fb *Framebuffer) GetDepth(x, y int) float64 {
	if !fb.inBounds(x, y) {
		return 1.0
	}
	return fb.depth[y*fb.Width+x]
}

// DepthTest performs the "less-than, and if so store" comparison used by
// the sequential rasterizer: smaller depth wins.
func (fb *Framebuffer) DepthTest(x, y int, newDepth float64) bool {
	if !fb.inBounds(x, y) {
		return false
	}
	idx := y*fb.Width + x
	if newDepth < fb.depth[idx] {
		fb.depth[idx] = newDepth
		return true
	}
	return false
}

func (fb *Framebuffer) stripeFor(y int) *sync.Mutex {
	return &fb.stripes[y%rowLockStripes]
}

// SetPixelBlended blends c into the destination pixel per mode, with no
// depth interaction. Used directly by callers that already passed the
// depth test (the rasterizer's CommitPixel does both atomically).
func (fb *Framebuffer) SetPixelBlended(x, y int, c math3d.Color, mode BlendMode) {
	if !fb.inBounds(x, y) {
		return
	}
	idx := y*fb.Width + x
	fb.color[idx] = blend(mode, c, fb.color[idx])
}

// CommitPixel is the rasterizer's per-pixel critical section: it reads the
// current depth, performs the depth test, and if the new fragment wins,
// blends its color and (if depthWrite) stores the new depth — all as one
// atomic unit, so no reader ever observes a half-updated pixel and no two
// writers race the depth comparison. Safe to call concurrently from
// multiple goroutines.
func (fb *Framebuffer) CommitPixel(x, y int, newDepth float64, c math3d.Color, mode BlendMode, depthWrite bool) {
	if !fb.inBounds(x, y) {
		return
	}
	mu := fb.stripeFor(y)
	mu.Lock()
	defer mu.Unlock()

	idx := y*fb.Width + x
	if newDepth >= fb.depth[idx] {
		return
	}
	fb.color[idx] = blend(mode, c, fb.color[idx])
	if depthWrite {
		fb.depth[idx] = newDepth
	}
}

// DrawLine draws a line from (x0,y0) to (x1,y1) using the integer midpoint
// (Bresenham) algorithm. It writes directly to the color buffer with no
// depth interaction, for wireframe and debug overlays.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c math3d.Color) {
	dx := iabs(x1 - x0)
	dy := -iabs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func iabs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage converts the framebuffer to a standard image.RGBA for the PNG
// debug-preview path and the terminal renderer.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			r, g, b, a := fb.color[y*fb.Width+x].ToBytes()
			img.Set(x, y, imageColor(r, g, b, a))
		}
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file (debug-preview output; the
// canonical output formats are PPM and TGA via package output).
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, fb.ToImage())
}
