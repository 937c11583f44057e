package pipeline

import "github.com/taigrr/trophy/pkg/math3d"

// Uniforms holds the transform state the vertex stage applies to every
// vertex: model/view/projection and their derived products.
type Uniforms struct {
	Model      math3d.Mat4
	View       math3d.Mat4
	Projection math3d.Mat4
	MVP        math3d.Mat4
	NormalMat  math3d.Mat3
}

// VertexStage transforms VertexInput into clip space, recomputing derived
// matrices lazily whenever a primary matrix changes (mirrors the dirty-flag
// pattern render.Camera uses for its own view/projection matrices).
type VertexStage struct {
	model, view, projection math3d.Mat4
	viewportWidth           int
	viewportHeight          int
	dirty                   bool
	uniforms                Uniforms
}

// NewVertexStage returns a VertexStage with identity transforms.
func NewVertexStage() *VertexStage {
	vs := &VertexStage{
		model:      math3d.Identity(),
		view:       math3d.Identity(),
		projection: math3d.Identity(),
	}
	vs.recompute()
	return vs
}

// SetModelMatrix sets the model matrix, marking derived state dirty.
func (vs *VertexStage) SetModelMatrix(m math3d.Mat4) {
	vs.model = m
	vs.dirty = true
}

// SetViewMatrix sets the view matrix, marking derived state dirty.
func (vs *VertexStage) SetViewMatrix(m math3d.Mat4) {
	vs.view = m
	vs.dirty = true
}

// SetProjectionMatrix sets the projection matrix, marking derived state
// dirty.
func (vs *VertexStage) SetProjectionMatrix(m math3d.Mat4) {
	vs.projection = m
	vs.dirty = true
}

// SetViewport sets the target viewport dimensions for the screen transform.
func (vs *VertexStage) SetViewport(width, height int) {
	vs.viewportWidth = width
	vs.viewportHeight = height
}

func (vs *VertexStage) recompute() {
	vs.uniforms = Uniforms{
		Model:      vs.model,
		View:       vs.view,
		Projection: vs.projection,
		MVP:        vs.projection.Mul(vs.view).Mul(vs.model),
		NormalMat:  math3d.NormalMatrix(vs.model),
	}
	vs.dirty = false
}

// Uniforms returns the current uniform set, recomputing derived matrices
// first if any primary matrix changed since the last call.
func (vs *VertexStage) Uniforms() Uniforms {
	if vs.dirty {
		vs.recompute()
	}
	return vs.uniforms
}

// ProcessVertex runs the fixed vertex transform described in the rendering
// pipeline's vertex stage: clip-space transform, perspective divide,
// viewport transform, world-space position, and normal transform.
func (vs *VertexStage) ProcessVertex(in VertexInput) VertexOutput {
	u := vs.Uniforms()

	clip := u.MVP.MulVec4(math3d.V4FromV3(in.Position, 1))

	var ndc math3d.Vec3
	if clip.W != 0 {
		ndc = math3d.V3(clip.X/clip.W, clip.Y/clip.W, clip.Z/clip.W)
	} else {
		ndc = clip.Vec3()
	}

	screen := math3d.V3(
		(ndc.X+1)*0.5*float64(vs.viewportWidth),
		(1-ndc.Y)*0.5*float64(vs.viewportHeight),
		(ndc.Z+1)*0.5,
	)

	worldPos := u.Model.MulVec3(in.Position)
	normal := u.NormalMat.MulVec3(in.Normal).Normalize()

	return VertexOutput{
		ClipPos:   clip,
		NDCPos:    ndc,
		ScreenPos: screen,
		WorldPos:  worldPos,
		Normal:    normal,
		TexCoord:  in.TexCoord,
		Color:     in.Color,
	}
}
