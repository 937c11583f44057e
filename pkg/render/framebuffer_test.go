package render

import (
	"testing"

	"github.com/taigrr/trophy/pkg/math3d"
)

func TestFramebufferBoundsAreNoOps(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.SetPixel(-1, 0, math3d.WhiteColor())
	fb.SetPixel(4, 0, math3d.WhiteColor())
	fb.SetDepth(0, -1, 0.1)

	if got := fb.GetPixel(-1, 0); got != math3d.BlackColor() {
		t.Errorf("out-of-bounds GetPixel = %v, want black", got)
	}
	if got := fb.GetDepth(0, 4); got != 1.0 {
		t.Errorf("out-of-bounds GetDepth = %v, want 1.0", got)
	}
}

func TestDepthTestMonotonicity(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	seq := []float64{0.9, 0.4, 0.6, 0.2}
	min := 1.0
	for _, z := range seq {
		fb.DepthTest(0, 0, z)
		if z < min {
			min = z
		}
	}
	if got := fb.GetDepth(0, 0); got != min {
		t.Errorf("depth after sequence = %v, want min %v", got, min)
	}
}

func TestBlendIdentities(t *testing.T) {
	dst := math3d.RGBAColor(0.2, 0.3, 0.4, 1)
	src := math3d.RGBAColor(0.9, 0.8, 0.7, 1)

	if got := blend(BlendNone, src, dst); got != src {
		t.Errorf("BlendNone must be exact overwrite, got %v want %v", got, src)
	}

	if got := blend(BlendAlpha, src, dst); got != src {
		t.Errorf("BlendAlpha with src.a=1 must equal overwrite, got %v want %v", got, src)
	}

	zero := math3d.Color{}
	if got := blend(BlendAdditive, src, zero); got != src {
		t.Errorf("BlendAdditive with dst=0 must equal src, got %v want %v", got, src)
	}
}

func TestCommitPixelAtomicity(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.CommitPixel(0, 0, 0.5, math3d.RGBAColor(1, 0, 0, 1), BlendNone, true)
	if got := fb.GetDepth(0, 0); got != 0.5 {
		t.Errorf("depth not written after winning commit, got %v", got)
	}
	// A worse depth must not overwrite the winning commit.
	fb.CommitPixel(0, 0, 0.9, math3d.RGBAColor(0, 1, 0, 1), BlendNone, true)
	if got := fb.GetPixel(0, 0); got.R != 1 || got.G != 0 {
		t.Errorf("losing commit overwrote winning pixel: got %v", got)
	}
}
