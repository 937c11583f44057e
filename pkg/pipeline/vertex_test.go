package pipeline

import (
	"math"
	"testing"

	"github.com/taigrr/trophy/pkg/math3d"
)

func TestProcessVertexIdentity(t *testing.T) {
	vs := NewVertexStage()
	vs.SetViewport(100, 100)

	in := VertexInput{
		Position: math3d.V3(0, 0, 0),
		Normal:   math3d.V3(0, 0, 1),
		TexCoord: math3d.V2(0.5, 0.5),
		Color:    math3d.WhiteColor(),
	}

	out := vs.ProcessVertex(in)

	if out.ScreenPos.X != 50 || out.ScreenPos.Y != 50 {
		t.Errorf("identity transform of origin should land at viewport center, got %v", out.ScreenPos)
	}
	if out.ScreenPos.Z != 0.5 {
		t.Errorf("z=0 NDC should map to 0.5 screen depth, got %v", out.ScreenPos.Z)
	}
}

func TestProcessVertexYFlip(t *testing.T) {
	vs := NewVertexStage()
	vs.SetViewport(100, 100)

	in := VertexInput{Position: math3d.V3(0, 1, 0), Normal: math3d.V3(0, 0, 1)}
	out := vs.ProcessVertex(in)

	// NDC y=1 (top in NDC) must map to screen y=0 (top of image).
	if math.Abs(out.ScreenPos.Y-0) > 1e-9 {
		t.Errorf("expected y-flip to map NDC y=1 to screen y=0, got %v", out.ScreenPos.Y)
	}
}

func TestProcessVertexNonUniformScaleNormal(t *testing.T) {
	vs := NewVertexStage()
	vs.SetViewport(10, 10)
	vs.SetModelMatrix(math3d.Scale(math3d.V3(2, 1, 1)))

	in := VertexInput{Position: math3d.V3(1, 0, 0), Normal: math3d.V3(1, 0, 0)}
	out := vs.ProcessVertex(in)

	if math.Abs(out.Normal.Len()-1) > 1e-9 {
		t.Errorf("vertex stage must renormalize transformed normals, got len %v", out.Normal.Len())
	}
}

func TestVertexStageDirtyRecompute(t *testing.T) {
	vs := NewVertexStage()
	vs.SetViewport(10, 10)
	u1 := vs.Uniforms()
	vs.SetModelMatrix(math3d.Translate(math3d.V3(1, 2, 3)))
	u2 := vs.Uniforms()

	if u1.MVP == u2.MVP {
		t.Error("expected MVP to change after SetModelMatrix")
	}
}
