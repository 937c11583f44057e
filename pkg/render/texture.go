package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"math"
	"os"

	"github.com/taigrr/trophy/pkg/math3d"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterBilinear
)

// Texture holds a 2D array of Colors plus wrap/filter configuration. It
// implements pipeline.ColorSampler so the fragment stage can sample it
// through the diffuse/specular-map fields of a Material without the
// pipeline package importing render.
type Texture struct {
	Width, Height int
	Pixels        []math3d.Color
	WrapU, WrapV  WrapMode
	Filter        FilterMode
}

// NewTexture creates an empty, black, fully-opaque texture.
func NewTexture(width, height int) *Texture {
	pixels := make([]math3d.Color, width*height)
	for i := range pixels {
		pixels[i] = math3d.BlackColor()
	}
	return &Texture{Width: width, Height: height, Pixels: pixels}
}

// NewSolidTexture creates a 1x1 texture of a single color.
func NewSolidTexture(c math3d.Color) *Texture {
	return &Texture{Width: 1, Height: 1, Pixels: []math3d.Color{c}}
}

// LoadTexture decodes an image file (PNG/JPEG, via the standard library's
// registered decoders) into a Texture.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage converts a decoded image.Image into a Texture, scaling
// the standard library's 16-bit channels down to float64 [0,1].
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	tex := NewTexture(width, height)

	for y := range height {
		for x := range width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			tex.SetPixel(x, y, math3d.Color{
				R: float64(r) / 65535,
				G: float64(g) / 65535,
				B: float64(b) / 65535,
				A: float64(a) / 65535,
			})
		}
	}
	return tex
}

// NewCheckerTexture builds a procedural checkerboard, useful for tests and
// as a fallback ground texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 math3d.Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// SetPixel writes a texel; out-of-bounds is a no-op.
func (t *Texture) SetPixel(x, y int, c math3d.Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel reads a texel; out-of-bounds returns black.
func (t *Texture) GetPixel(x, y int) math3d.Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return math3d.BlackColor()
	}
	return t.Pixels[y*t.Width+x]
}

// Sample reads the texture at normalized UV coordinates, applying wrap mode
// and filtering. V is flipped so v=0 is the image's bottom row.
func (t *Texture) Sample(u, v float64) math3d.Color {
	u = t.wrapCoord(u, t.WrapU)
	v = t.wrapCoord(v, t.WrapV)
	v = 1.0 - v

	if t.Filter == FilterBilinear {
		return t.sampleBilinear(u, v)
	}
	return t.sampleNearest(u, v)
}

func (t *Texture) wrapCoord(coord float64, mode WrapMode) float64 {
	switch mode {
	case WrapRepeat:
		return coord - math.Floor(coord)
	case WrapClampToEdge:
		return math.Max(0, math.Min(1, coord))
	case WrapMirroredRepeat:
		period := coord - 2*math.Floor(coord/2)
		if period > 1 {
			period = 2 - period
		}
		return period
	}
	return coord
}

func (t *Texture) sampleNearest(u, v float64) math3d.Color {
	x := int(u * float64(t.Width))
	y := int(v * float64(t.Height))
	if x >= t.Width {
		x = t.Width - 1
	}
	if y >= t.Height {
		y = t.Height - 1
	}
	return t.GetPixel(x, y)
}

func (t *Texture) sampleBilinear(u, v float64) math3d.Color {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	x1, y1 := x0+1, y0+1

	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x0 = t.wrapPixelCoord(x0, t.Width, t.WrapU)
	x1 = t.wrapPixelCoord(x1, t.Width, t.WrapU)
	y0 = t.wrapPixelCoord(y0, t.Height, t.WrapV)
	y1 = t.wrapPixelCoord(y1, t.Height, t.WrapV)

	top := t.GetPixel(x0, y0).Lerp(t.GetPixel(x1, y0), tx)
	bot := t.GetPixel(x0, y1).Lerp(t.GetPixel(x1, y1), tx)
	return top.Lerp(bot, ty)
}

func (t *Texture) wrapPixelCoord(x, size int, mode WrapMode) int {
	switch mode {
	case WrapRepeat:
		x %= size
		if x < 0 {
			x += size
		}
		return x
	case WrapMirroredRepeat:
		period := size * 2
		x = x % period
		if x < 0 {
			x += period
		}
		if x >= size {
			x = period - 1 - x
		}
		return x
	default: // WrapClampToEdge
		if x < 0 {
			return 0
		}
		if x >= size {
			return size - 1
		}
		return x
	}
}
