package shadow

import (
	"testing"

	"github.com/taigrr/trophy/pkg/math3d"
)

func TestDepthTestMonotonicity(t *testing.T) {
	m := NewMap(4, 4)
	vals := []float64{0.8, 0.3, 0.9, 0.1, 0.5}
	min := 1.0
	for _, v := range vals {
		m.DepthTest(1, 1, v)
		if v < min {
			min = v
		}
	}
	if got := m.GetDepth(1, 1); got != min {
		t.Errorf("stored depth = %v, want min of sequence = %v", got, min)
	}
}

func TestOutOfBoundsDefaults(t *testing.T) {
	m := NewMap(4, 4)
	if got := m.GetDepth(-1, 0); got != 1.0 {
		t.Errorf("out-of-bounds read = %v, want 1.0", got)
	}
	if m.DepthTest(100, 100, 0) {
		t.Error("out-of-bounds DepthTest should return false")
	}
}

func TestSamplePCFUnderCasterFullyShadowed(t *testing.T) {
	m := NewMap(64, 64)
	m.SetupDirectionalLight(math3d.V3(0, -1, 0), math3d.V3(0, 0, 0), 10)
	m.SetBias(0.005)

	// Simulate a shadow-caster occupying the center of the map at a depth
	// closer to the light than the ground plane underneath it.
	u0, v0, _ := m.WorldToShadowUV(math3d.V3(0, 1, 0))
	cx := int(u0 * float64(m.width-1))
	cy := int((1 - v0) * float64(m.height-1))
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			m.SetDepth(cx+dx, cy+dy, 0.1)
		}
	}

	factor := m.SamplePCF(math3d.V3(0, 0, 0), 3)
	if factor < 0.9 {
		t.Errorf("expected point under caster to be nearly fully shadowed, got factor %v", factor)
	}
}

func TestSamplePCFOutsideMapUnshadowed(t *testing.T) {
	m := NewMap(16, 16)
	m.SetupDirectionalLight(math3d.V3(0, -1, 0), math3d.V3(0, 0, 0), 1)

	factor := m.SamplePCF(math3d.V3(1000, 0, 1000), 3)
	if factor != 0 {
		t.Errorf("expected 0 shadow factor outside the shadow map's coverage, got %v", factor)
	}
}
