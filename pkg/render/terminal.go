package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/trophy/pkg/math3d"
)

// Draw converts the internal framebuffer to terminal cells and draws them on
// the screen. The framebuffer height should be 2x the terminal height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// Each terminal row represents 2 framebuffer rows. We use ▀ (upper half
	// block) with fg=top color and bg=bottom color.
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col < fb.Width; col++ {
			topColor := fb.GetPixel(col, topY)
			botColor := fb.GetPixel(col, botY)

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: colorToTermColor(topColor),
					Bg: colorToTermColor(botColor),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// colorToTermColor converts a math3d.Color to Go's color.Color interface.
func colorToTermColor(c math3d.Color) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	r, g, b, a := c.ToBytes()
	return color.RGBA{R: r, G: g, B: b, A: a}
}

// Named colors, convenient for wireframe overlays and debug draws.
var (
	ColorBlack   = math3d.BlackColor()
	ColorWhite   = math3d.WhiteColor()
	ColorRed     = math3d.RGBAColor(1, 0, 0, 1)
	ColorGreen   = math3d.RGBAColor(0, 1, 0, 1)
	ColorBlue    = math3d.RGBAColor(0, 0, 1, 1)
	ColorYellow  = math3d.RGBAColor(1, 1, 0, 1)
	ColorCyan    = math3d.RGBAColor(0, 1, 1, 1)
	ColorMagenta = math3d.RGBAColor(1, 0, 1, 1)
	ColorGray    = math3d.RGBAColor(0.5, 0.5, 0.5, 1)
	ColorSky     = math3d.RGBAColor(0.53, 0.81, 0.92, 1)
	ColorGrass   = math3d.RGBAColor(0.13, 0.55, 0.13, 1)
	ColorRoad    = math3d.RGBAColor(0.25, 0.25, 0.25, 1)
)

// RGB255 builds a math3d.Color from 0-255 byte channels, opaque.
func RGB255(r, g, b uint8) math3d.Color {
	return math3d.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}
}

// RGBA255 builds a math3d.Color from 0-255 byte channels.
func RGBA255(r, g, b, a uint8) math3d.Color {
	return math3d.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: float64(a) / 255}
}
