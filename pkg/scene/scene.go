// Package scene assembles the object graph a render pass walks: a list of
// SceneObjects (transform, mesh reference, material reference, visibility)
// plus lights and ambient color, resolved against name-keyed mesh/texture
// registries the scene does not own.
package scene

import (
	"fmt"
	"sort"

	"github.com/taigrr/trophy/pkg/math3d"
	"github.com/taigrr/trophy/pkg/models"
	"github.com/taigrr/trophy/pkg/pipeline"
	"github.com/taigrr/trophy/pkg/render"
)

// Transform is a TRS (translate, rotate, scale) transform. Rotation is Euler
// angles in radians, applied X then Y then Z, matching math3d's RotateX/Y/Z
// helpers.
type Transform struct {
	Position math3d.Vec3
	Rotation math3d.Vec3
	Scale    math3d.Vec3
}

// NewTransform returns the identity transform (zero position/rotation, unit
// scale).
func NewTransform() Transform {
	return Transform{Scale: math3d.V3(1, 1, 1)}
}

// Matrix composes the transform into a single model matrix: scale, then
// rotate (Z*Y*X, applied innermost-first so the net rotation is X then Y
// then Z), then translate.
func (t Transform) Matrix() math3d.Mat4 {
	s := math3d.Scale(t.Scale)
	rx := math3d.RotateX(t.Rotation.X)
	ry := math3d.RotateY(t.Rotation.Y)
	rz := math3d.RotateZ(t.Rotation.Z)
	r := rz.Mul(ry).Mul(rx)
	return math3d.Translate(t.Position).Mul(r).Mul(s)
}

// SceneObject binds a named mesh and material to a transform. Visible
// objects not marked Transparent are submitted through the opaque pass;
// Transparent objects are sorted back-to-front and drawn sequentially
// afterward (see Scene.TransparentBackToFront).
type SceneObject struct {
	Name         string
	Transform    Transform
	MeshName     string
	MaterialName string
	Visible      bool
	Transparent  bool
	Blend        render.BlendMode
}

// NewSceneObject returns a visible, opaque SceneObject at the identity
// transform.
func NewSceneObject(name, meshName, materialName string) SceneObject {
	return SceneObject{
		Name:         name,
		Transform:    NewTransform(),
		MeshName:     meshName,
		MaterialName: materialName,
		Visible:      true,
	}
}

// Scene is an ordered object list, a light list, and the ambient color, plus
// the registries SceneObjects' MeshName/MaterialName fields resolve
// against. Meshes and textures are not owned by the scene: it holds a
// name-keyed lookup, mirroring the teacher's MeshRenderer interface
// indirection so this package can reference render.Texture and
// models.Mesh without either of those packages depending on scene.
type Scene struct {
	Objects []SceneObject
	Lights  []pipeline.Light
	Ambient math3d.Color

	meshes    map[string]*models.Mesh
	textures  map[string]*render.Texture
	materials map[string]pipeline.Material
}

// New returns an empty scene with black ambient light.
func New() *Scene {
	return &Scene{
		Ambient:   math3d.BlackColor(),
		meshes:    make(map[string]*models.Mesh),
		textures:  make(map[string]*render.Texture),
		materials: make(map[string]pipeline.Material),
	}
}

// RegisterMesh binds name to mesh in the scene's mesh registry. The scene
// does not take ownership; mesh must outlive every SceneObject referencing
// it by name.
func (s *Scene) RegisterMesh(name string, mesh *models.Mesh) {
	s.meshes[name] = mesh
}

// Mesh resolves a registered mesh name.
func (s *Scene) Mesh(name string) (*models.Mesh, bool) {
	m, ok := s.meshes[name]
	return m, ok
}

// RegisterTexture binds name to a texture in the scene's texture registry.
func (s *Scene) RegisterTexture(name string, tex *render.Texture) {
	s.textures[name] = tex
}

// Texture resolves a registered texture name.
func (s *Scene) Texture(name string) (*render.Texture, bool) {
	t, ok := s.textures[name]
	return t, ok
}

// RegisterMaterial binds name to a material in the scene's material
// registry.
func (s *Scene) RegisterMaterial(name string, mat pipeline.Material) {
	s.materials[name] = mat
}

// Material resolves a registered material name.
func (s *Scene) Material(name string) (pipeline.Material, bool) {
	m, ok := s.materials[name]
	return m, ok
}

// AddObject appends obj to the scene's object list.
func (s *Scene) AddObject(obj SceneObject) {
	s.Objects = append(s.Objects, obj)
}

// AddLight appends a light to the scene's light list.
func (s *Scene) AddLight(l pipeline.Light) {
	s.Lights = append(s.Lights, l)
}

// ResolvedObject is a SceneObject with its mesh/material name references
// resolved against the scene's registries, ready to hand to a Rasterizer.
type ResolvedObject struct {
	SceneObject
	Mesh     *models.Mesh
	Material pipeline.Material
}

// Resolve looks up obj's MeshName and MaterialName in the scene's
// registries, erroring if either is missing.
func (s *Scene) Resolve(obj SceneObject) (ResolvedObject, error) {
	mesh, ok := s.meshes[obj.MeshName]
	if !ok {
		return ResolvedObject{}, fmt.Errorf("scene object %q: mesh %q not registered", obj.Name, obj.MeshName)
	}
	mat, ok := s.materials[obj.MaterialName]
	if !ok {
		return ResolvedObject{}, fmt.Errorf("scene object %q: material %q not registered", obj.Name, obj.MaterialName)
	}
	return ResolvedObject{SceneObject: obj, Mesh: mesh, Material: mat}, nil
}

// OpaqueObjects resolves every visible, non-transparent object, in scene
// order.
func (s *Scene) OpaqueObjects() ([]ResolvedObject, error) {
	var out []ResolvedObject
	for _, obj := range s.Objects {
		if !obj.Visible || obj.Transparent {
			continue
		}
		ro, err := s.Resolve(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, ro)
	}
	return out, nil
}

// TransparentBackToFront resolves every visible, transparent object and
// sorts it by descending distance from viewerPos (farthest first), the
// order the concurrency model requires transparent objects be submitted in
// (see the blend-mode ordering guarantee: parallel submission is only valid
// for opaque, depth-writing draws).
func (s *Scene) TransparentBackToFront(viewerPos math3d.Vec3) ([]ResolvedObject, error) {
	var out []ResolvedObject
	for _, obj := range s.Objects {
		if !obj.Visible || !obj.Transparent {
			continue
		}
		ro, err := s.Resolve(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, ro)
	}
	sort.SliceStable(out, func(i, j int) bool {
		di := out[i].Transform.Position.Sub(viewerPos).LenSq()
		dj := out[j].Transform.Position.Sub(viewerPos).LenSq()
		return di > dj
	})
	return out, nil
}
