package pipeline

import (
	"math"

	"github.com/taigrr/trophy/pkg/math3d"
)

// LightType tags the kind of light a Light value represents.
type LightType int

const (
	LightDirectional LightType = iota
	LightPoint
	LightSpot
)

// Light is a tagged variant over directional, point and spot lights.
type Light struct {
	Type      LightType
	Position  math3d.Vec3
	Direction math3d.Vec3
	Color     math3d.Color
	Intensity float64

	// Attenuation coefficients for POINT/SPOT lights.
	Constant  float64
	Linear    float64
	Quadratic float64

	// Spot cutoffs, as cosines of the inner/outer cone half-angles.
	InnerCutoff float64
	OuterCutoff float64
}

// ColorSampler samples a texture-like object at normalized UV coordinates.
// render.Texture implements this; it is expressed as an interface here so
// the pipeline package never imports render (which imports pipeline).
type ColorSampler interface {
	Sample(u, v float64) math3d.Color
}

// ShadowSampler samples a shadow-map-like object for a PCF shadow factor in
// [0,1] at a world-space position. render's shadow map implements this.
type ShadowSampler interface {
	SamplePCF(worldPos math3d.Vec3, kernel int) float64
}

// Material carries the Blinn-Phong surface parameters of a SceneObject.
// The alpha channel of Diffuse is the final fragment alpha.
type Material struct {
	Ambient     math3d.Color
	Diffuse     math3d.Color
	Specular    math3d.Color
	Shininess   float64
	DiffuseMap  ColorSampler
	SpecularMap ColorSampler
}

// FragmentStage holds the per-frame lighting state and evaluates the
// Blinn-Phong shading model per fragment, including shadow-map PCF
// sampling.
type FragmentStage struct {
	lights         []Light
	material       Material
	ambientLight   math3d.Color
	cameraPos      math3d.Vec3
	shadowMap      ShadowSampler
	shadowsEnabled bool
}

// NewFragmentStage returns an empty FragmentStage.
func NewFragmentStage() *FragmentStage {
	return &FragmentStage{ambientLight: math3d.BlackColor()}
}

// ClearLights empties the light list.
func (fs *FragmentStage) ClearLights() {
	fs.lights = fs.lights[:0]
}

// AddLight appends a light to the current frame's light list.
func (fs *FragmentStage) AddLight(l Light) {
	fs.lights = append(fs.lights, l)
}

// SetAmbientLight sets the scene-wide ambient term.
func (fs *FragmentStage) SetAmbientLight(c math3d.Color) {
	fs.ambientLight = c
}

// SetMaterial sets the material used to shade subsequent fragments.
func (fs *FragmentStage) SetMaterial(m Material) {
	fs.material = m
}

// SetCameraPosition sets the world-space eye position used for specular
// half-vectors.
func (fs *FragmentStage) SetCameraPosition(p math3d.Vec3) {
	fs.cameraPos = p
}

// SetShadowMap binds (or unbinds, with nil) the shadow map fragments sample
// against.
func (fs *FragmentStage) SetShadowMap(s ShadowSampler) {
	fs.shadowMap = s
}

// EnableShadows toggles shadow sampling. With shadows enabled but no shadow
// map bound, the stage behaves as if shadows were disabled.
func (fs *FragmentStage) EnableShadows(enabled bool) {
	fs.shadowsEnabled = enabled
}

// ProcessFragment evaluates Blinn-Phong shading for one fragment.
func (fs *FragmentStage) ProcessFragment(frag Fragment) math3d.Color {
	n := frag.Normal.Normalize()

	base := frag.Color.Mul(fs.material.Diffuse)
	if fs.material.DiffuseMap != nil {
		base = fs.material.DiffuseMap.Sample(frag.TexCoord.X, frag.TexCoord.Y).Mul(frag.Color)
	}

	specColor := fs.material.Specular
	if fs.material.SpecularMap != nil {
		specColor = fs.material.SpecularMap.Sample(frag.TexCoord.X, frag.TexCoord.Y)
	}

	shadow := 0.0
	if fs.shadowsEnabled && fs.shadowMap != nil {
		shadow = fs.shadowMap.SamplePCF(frag.WorldPos, 3)
	}

	viewDir := fs.cameraPos.Sub(frag.WorldPos).Normalize()

	result := fs.ambientLight.Mul(fs.material.Ambient).Mul(base)

	for _, l := range fs.lights {
		result = result.Add(lightContrib(l, frag.WorldPos, n, viewDir, fs.material, specColor, shadow).Mul(base))
	}

	result = result.Clamp01()
	result.A = fs.material.Diffuse.A
	return result
}

func lightContrib(l Light, worldPos, n, viewDir math3d.Vec3, mat Material, specColor math3d.Color, shadow float64) math3d.Color {
	var lightDir math3d.Vec3
	atten := 1.0

	switch l.Type {
	case LightDirectional:
		lightDir = l.Direction.Negate().Normalize()
	case LightPoint, LightSpot:
		toLight := l.Position.Sub(worldPos)
		dist := toLight.Len()
		lightDir = toLight.Normalize()
		atten = 1.0 / (l.Constant + l.Linear*dist + l.Quadratic*dist*dist)
	}

	if l.Type == LightSpot {
		cosTheta := lightDir.Dot(l.Direction.Negate().Normalize())
		denom := l.InnerCutoff - l.OuterCutoff
		var spotFactor float64
		if math.Abs(denom) < 1e-6 {
			// Spot "epsilon = 0" edge case: inner == outer collapses the
			// smooth cone falloff to a hard step instead of dividing by
			// (nearly) zero.
			if cosTheta >= l.OuterCutoff {
				spotFactor = 1
			}
		} else {
			spotFactor = clamp01((cosTheta - l.OuterCutoff) / denom)
		}
		atten *= spotFactor
	}

	kd := math.Max(n.Dot(lightDir), 0)
	diffuse := mat.Diffuse.Scale(kd)

	half := lightDir.Add(viewDir).Normalize()
	ks := math.Pow(math.Max(n.Dot(half), 0), mat.Shininess)
	specular := specColor.Scale(ks)

	combined := diffuse.Add(specular)
	return combined.Mul(l.Color).Scale(l.Intensity * atten * (1 - shadow))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
