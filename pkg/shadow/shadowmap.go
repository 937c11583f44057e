// Package shadow implements the directional-light shadow pass: an
// orthographic depth-only render target sampled with percentage-closer
// filtering by the fragment stage.
package shadow

import "github.com/taigrr/trophy/pkg/math3d"

// Map is a depth-only render target for a single directional light, plus
// the matrices needed to project world positions into its UV space.
type Map struct {
	width, height int
	depth         []float64

	lightView  math3d.Mat4
	lightProj  math3d.Mat4
	lightSpace math3d.Mat4
	bias       float64
}

// NewMap allocates a width x height shadow map, cleared to the far value.
func NewMap(width, height int) *Map {
	m := &Map{
		width:      width,
		height:     height,
		lightView:  math3d.Identity(),
		lightProj:  math3d.Identity(),
		lightSpace: math3d.Identity(),
		bias:       0.005,
	}
	m.depth = make([]float64, width*height)
	m.Clear()
	return m
}

// Clear resets every depth texel to 1.0 (far).
func (m *Map) Clear() {
	for i := range m.depth {
		m.depth[i] = 1.0
	}
}

// Width returns the shadow map's texel width.
func (m *Map) Width() int { return m.width }

// Height returns the shadow map's texel height.
func (m *Map) Height() int { return m.height }

// SetBias sets the scalar depth bias added to the stored depth during
// comparisons. No slope-scaled bias is applied; self-shadowing ("shadow
// acne") on surfaces nearly parallel to the light is an accepted, reference
// -faithful deviation rather than a bug (see the fidelity note in the
// rendering pipeline's design notes on depth-map aliasing).
func (m *Map) SetBias(bias float64) {
	m.bias = bias
}

// SetDepth writes a depth value at (x,y); out-of-bounds writes are no-ops.
func (m *Map) SetDepth(x, y int, depth float64) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.depth[y*m.width+x] = depth
}

// GetDepth reads the depth value at (x,y); out-of-bounds reads return 1.0.
func (m *Map) GetDepth(x, y int) float64 {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 1.0
	}
	return m.depth[y*m.width+x]
}

// DepthTest performs an unconditional-winner-take-smaller depth write: if
// newDepth is less than what is stored, it replaces it and true is
// returned.
func (m *Map) DepthTest(x, y int, newDepth float64) bool {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return false
	}
	idx := y*m.width + x
	if newDepth < m.depth[idx] {
		m.depth[idx] = newDepth
		return true
	}
	return false
}

// SetupDirectionalLight builds the light view/projection/space matrices
// that frame a scene of the given radius around sceneCenter, as seen along
// direction.
func (m *Map) SetupDirectionalLight(direction, sceneCenter math3d.Vec3, sceneRadius float64) {
	lightDir := direction.Normalize()
	lightPos := sceneCenter.Sub(lightDir.Scale(sceneRadius * 2))

	m.lightView = math3d.LookAt(lightPos, sceneCenter, math3d.V3(0, 1, 0))

	orthoSize := sceneRadius * 1.5
	m.lightProj = math3d.Orthographic(-orthoSize, orthoSize, -orthoSize, orthoSize, 0.1, sceneRadius*4)

	m.lightSpace = m.lightProj.Mul(m.lightView)
}

// LightSpaceMatrix returns the combined light projection * view matrix.
func (m *Map) LightSpaceMatrix() math3d.Mat4 {
	return m.lightSpace
}

// WorldToShadowUV projects a world-space position into the shadow map's
// [0,1]^2 UV space plus its light-space depth.
func (m *Map) WorldToShadowUV(worldPos math3d.Vec3) (u, v, depth float64) {
	clip := m.lightSpace.MulVec4(math3d.V4FromV3(worldPos, 1))
	ndc := clip.PerspectiveDivide()
	return ndc.X*0.5 + 0.5, ndc.Y*0.5 + 0.5, ndc.Z*0.5 + 0.5
}

// IsInShadow is the single-tap shadow test (no PCF).
func (m *Map) IsInShadow(worldPos math3d.Vec3) bool {
	u, v, depth := m.WorldToShadowUV(worldPos)
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return false
	}
	x := int(u * float64(m.width-1))
	y := int((1 - v) * float64(m.height-1))
	return depth > m.GetDepth(x, y)+m.bias
}

// SamplePCF returns a shadow factor in [0,1] using a kernel x kernel
// percentage-closer-filtered sample around worldPos's shadow-map texel.
// 0 means fully lit, 1 means fully shadowed.
func (m *Map) SamplePCF(worldPos math3d.Vec3, kernel int) float64 {
	u, v, depth := m.WorldToShadowUV(worldPos)
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return 0
	}

	centerX := int(u * float64(m.width-1))
	centerY := int((1 - v) * float64(m.height-1))

	half := kernel / 2
	var shadowed float64
	var samples int

	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			sx, sy := centerX+dx, centerY+dy
			if sx < 0 || sx >= m.width || sy < 0 || sy >= m.height {
				continue
			}
			if depth > m.GetDepth(sx, sy)+m.bias {
				shadowed++
			}
			samples++
		}
	}

	if samples == 0 {
		return 0
	}
	return shadowed / float64(samples)
}
