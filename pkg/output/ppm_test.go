package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// fakeFramebuffer is a tiny deterministic pixelSource for testing the image
// encoders without depending on package render.
type fakeFramebuffer struct {
	width, height int
	pixels        [][4]uint8
}

func (f *fakeFramebuffer) Bounds() (int, int) { return f.width, f.height }

func (f *fakeFramebuffer) PixelBytes(x, y int) (r, g, b, a uint8) {
	p := f.pixels[y*f.width+x]
	return p[0], p[1], p[2], p[3]
}

func newFakeFramebuffer() *fakeFramebuffer {
	return &fakeFramebuffer{
		width:  2,
		height: 1,
		pixels: [][4]uint8{
			{255, 0, 0, 255},
			{0, 255, 0, 128},
		},
	}
}

func TestWritePPMHeaderAndPixels(t *testing.T) {
	fb := newFakeFramebuffer()
	path := filepath.Join(t.TempDir(), "out.ppm")

	if err := WritePPM(fb, path); err != nil {
		t.Fatalf("WritePPM failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read ppm: %v", err)
	}

	want := []byte("P6\n2 1\n255\n")
	if !bytes.HasPrefix(data, want) {
		t.Fatalf("ppm header = %q, want prefix %q", data[:len(want)], want)
	}

	pixels := data[len(want):]
	expected := []byte{255, 0, 0, 0, 255, 0}
	if !bytes.Equal(pixels, expected) {
		t.Errorf("ppm pixel data = %v, want %v", pixels, expected)
	}
}

func TestWriteTGAHeaderAndPixels(t *testing.T) {
	fb := newFakeFramebuffer()
	path := filepath.Join(t.TempDir(), "out.tga")

	if err := WriteTGA(fb, path); err != nil {
		t.Fatalf("WriteTGA failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read tga: %v", err)
	}

	if len(data) != 18+2*4 {
		t.Fatalf("tga file length = %d, want %d", len(data), 18+2*4)
	}
	if data[2] != 2 {
		t.Errorf("image type = %d, want 2 (uncompressed true-color)", data[2])
	}
	if data[16] != 32 || data[17] != 0x28 {
		t.Errorf("bpp/descriptor = %d/%x, want 32/0x28", data[16], data[17])
	}

	pixels := data[18:]
	// BGRA order.
	wantFirst := []byte{0, 0, 255, 255}
	if !bytes.Equal(pixels[:4], wantFirst) {
		t.Errorf("first tga pixel = %v, want %v", pixels[:4], wantFirst)
	}
	wantSecond := []byte{0, 255, 0, 128}
	if !bytes.Equal(pixels[4:8], wantSecond) {
		t.Errorf("second tga pixel = %v, want %v", pixels[4:8], wantSecond)
	}
}

func TestEncodePPMWritesToAnyWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePPM(&buf, newFakeFramebuffer()); err != nil {
		t.Fatalf("EncodePPM failed: %v", err)
	}
	want := []byte("P6\n2 1\n255\n")
	if !bytes.HasPrefix(buf.Bytes(), want) {
		t.Fatalf("ppm header = %q, want prefix %q", buf.Bytes()[:len(want)], want)
	}
}

func TestEncodeTGAWritesToAnyWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeTGA(&buf, newFakeFramebuffer()); err != nil {
		t.Fatalf("EncodeTGA failed: %v", err)
	}
	if buf.Len() != 18+2*4 {
		t.Fatalf("tga length = %d, want %d", buf.Len(), 18+2*4)
	}
}

func TestSaveAutoDispatchesOnExtension(t *testing.T) {
	fb := newFakeFramebuffer()
	dir := t.TempDir()

	ppmPath := filepath.Join(dir, "a.ppm")
	if err := SaveAuto(fb, ppmPath); err != nil {
		t.Fatalf("SaveAuto .ppm failed: %v", err)
	}
	data, _ := os.ReadFile(ppmPath)
	if !bytes.HasPrefix(data, []byte("P6")) {
		t.Error("SaveAuto with .ppm extension should write a PPM file")
	}

	tgaPath := filepath.Join(dir, "b.tga")
	if err := SaveAuto(fb, tgaPath); err != nil {
		t.Fatalf("SaveAuto .tga failed: %v", err)
	}
	data, _ = os.ReadFile(tgaPath)
	if len(data) < 18 || data[2] != 2 {
		t.Error("SaveAuto with .tga extension should write a TGA file")
	}

	noExtPath := filepath.Join(dir, "c")
	if err := SaveAuto(fb, noExtPath); err != nil {
		t.Fatalf("SaveAuto no-extension failed: %v", err)
	}
	data, _ = os.ReadFile(noExtPath)
	if !bytes.HasPrefix(data, []byte("P6")) {
		t.Error("SaveAuto with no extension should default to PPM")
	}
}
