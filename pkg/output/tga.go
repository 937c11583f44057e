package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// WriteTGA writes fb to path as an uncompressed 32-bit TGA (image type 2):
// an 18-byte header followed by width*height BGRA quads, top-to-bottom
// (descriptor byte 0x28 sets top-left origin and 8 alpha bits).
func WriteTGA(fb pixelSource, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tga %q: %w", path, err)
	}
	defer f.Close()
	return EncodeTGA(f, fb)
}

// EncodeTGA writes the TGA encoding of fb to w.
func EncodeTGA(w io.Writer, fb pixelSource) error {
	width, height := fb.Bounds()
	bw := bufio.NewWriter(w)

	header := make([]byte, 18)
	header[2] = 2 // uncompressed true-color
	header[12] = byte(width & 0xFF)
	header[13] = byte((width >> 8) & 0xFF)
	header[14] = byte(height & 0xFF)
	header[15] = byte((height >> 8) & 0xFF)
	header[16] = 32   // bits per pixel
	header[17] = 0x28 // top-left origin, 8 alpha bits
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("write tga header: %w", err)
	}

	row := make([]byte, width*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := fb.PixelBytes(x, y)
			row[x*4] = b
			row[x*4+1] = g
			row[x*4+2] = r
			row[x*4+3] = a
		}
		if _, err := bw.Write(row); err != nil {
			return fmt.Errorf("write tga row %d: %w", y, err)
		}
	}
	return bw.Flush()
}
