// Package output writes a render.Framebuffer's color buffer to the two
// canonical image formats the rasterizer targets, PPM and TGA, plus a
// SaveAuto helper that dispatches on file extension the way
// original_source/src/output.cpp's save() does.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// pixelSource is the minimal read surface output needs from a framebuffer,
// expressed as an interface so this package never imports render (which
// would be the only reason for a cycle; render does not need output).
type pixelSource interface {
	PixelBytes(x, y int) (r, g, b, a uint8)
	Bounds() (width, height int)
}

// WritePPM writes fb to path in binary PPM (P6) format: an ASCII header
// followed by width*height RGB triplets, top-to-bottom, alpha dropped.
func WritePPM(fb pixelSource, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ppm %q: %w", path, err)
	}
	defer f.Close()
	return EncodePPM(f, fb)
}

// EncodePPM writes the PPM encoding of fb to w.
func EncodePPM(w io.Writer, fb pixelSource) error {
	width, height := fb.Bounds()
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", width, height); err != nil {
		return fmt.Errorf("write ppm header: %w", err)
	}

	row := make([]byte, width*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := fb.PixelBytes(x, y)
			row[x*3] = r
			row[x*3+1] = g
			row[x*3+2] = b
		}
		if _, err := bw.Write(row); err != nil {
			return fmt.Errorf("write ppm row %d: %w", y, err)
		}
	}
	return bw.Flush()
}

// SaveAuto dispatches to WritePPM or WriteTGA based on path's extension
// (case-insensitive), defaulting to PPM when the extension is absent or
// unrecognized, matching original_source's save().
func SaveAuto(fb pixelSource, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tga":
		return WriteTGA(fb, path)
	default:
		return WritePPM(fb, path)
	}
}
