package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/taigrr/trophy/pkg/math3d"
	"github.com/taigrr/trophy/pkg/models"
	"github.com/taigrr/trophy/pkg/pipeline"
	"github.com/taigrr/trophy/pkg/render"
	"github.com/taigrr/trophy/pkg/scene"
)

// sceneBounds' center and radius bound the loaded geometry so the shadow pass
// can frame an orthographic projection around it (see shadow.Map's
// SetupDirectionalLight, which wants a center and radius rather than a
// full frustum fit).
type sceneBounds struct {
	center math3d.Vec3
	radius float64
}

// buildScene loads cfg.scenePath (an OBJ or GLTF/GLB file), registers every
// resulting mesh and a default Blinn-Phong material, and returns the
// assembled scene.Scene plus a bounding sphere of everything it contains:
// centered at the combined bounding box's center, with the distance from
// that center to the box's max corner as radius. The geometry itself is
// left where the file put it; it is neither recentered nor rescaled.
func buildScene(logger *log.Logger, cfg *config) (*scene.Scene, sceneBounds, error) {
	meshes, err := loadMeshes(cfg.scenePath)
	if err != nil {
		return nil, sceneBounds{}, fmt.Errorf("load scene %q: %w", cfg.scenePath, err)
	}
	if len(meshes) == 0 {
		return nil, sceneBounds{}, fmt.Errorf("scene %q contains no meshes", cfg.scenePath)
	}

	ambient := vec3(cfg.ambient, [3]float64{0.15, 0.15, 0.18})
	lightDir := vec3(cfg.lightDir, [3]float64{0.5, -1, 0.3})
	lightColor := vec3(cfg.lightColor, [3]float64{1, 1, 1})

	s := scene.New()
	s.Ambient = math3d.RGBAColor(ambient[0], ambient[1], ambient[2], 1)
	s.AddLight(pipeline.Light{
		Type:      pipeline.LightDirectional,
		Direction: math3d.V3(lightDir[0], lightDir[1], lightDir[2]).Normalize(),
		Color:     math3d.RGBAColor(lightColor[0], lightColor[1], lightColor[2], 1),
		Intensity: 1,
	})

	fallback := render.NewCheckerTexture(64, 64, 8, render.RGB255(200, 200, 200), render.RGB255(100, 100, 100))

	var overallMin, overallMax math3d.Vec3
	for i, mesh := range meshes {
		mesh.CalculateBounds()
		if mesh.VertexCount() > 0 && vec3IsZero(mesh.Vertices[0].Normal) {
			mesh.CalculateSmoothNormals()
		}

		name := fmt.Sprintf("mesh-%d-%s", i, mesh.Name)
		s.RegisterMesh(name, mesh)

		min, max := mesh.GetBounds()
		if i == 0 {
			overallMin, overallMax = min, max
		} else {
			overallMin = overallMin.Min(min)
			overallMax = overallMax.Max(max)
		}

		matName := registerMaterials(s, mesh, fallback, name)

		obj := scene.NewSceneObject(name, name, matName)
		s.AddObject(obj)
		logger.Debug("registered mesh", "name", name, "vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())
	}

	center := overallMin.Add(overallMax).Scale(0.5)
	radius := overallMax.Sub(center).Len()
	if radius <= 0 {
		radius = 1
	}
	return s, sceneBounds{center: center, radius: radius}, nil
}

// registerMaterials ensures every material a mesh's faces reference is
// present in the scene's material registry, returning the name to use for a
// SceneObject that draws the whole mesh with its first material (per-face
// multi-material objects are outside this driver's scope; a mesh with
// several materials still renders correctly, just shaded uniformly with the
// first one, which is the right trade-off for a CLI batch renderer rather
// than a full scene-graph editor).
func registerMaterials(s *scene.Scene, mesh *models.Mesh, fallback *render.Texture, meshName string) string {
	if mesh.MaterialCount() == 0 {
		matName := meshName + "#default"
		s.RegisterMaterial(matName, pipeline.Material{
			Ambient:    math3d.Gray(0.2),
			Diffuse:    math3d.WhiteColor(),
			Specular:   math3d.Gray(0.5),
			Shininess:  32,
			DiffuseMap: fallback,
		})
		return matName
	}

	for i := range mesh.Materials {
		mat := &mesh.Materials[i]
		matName := fmt.Sprintf("%s#%d", meshName, i)
		pm := mat.ToPipelineMaterial()
		if pm.DiffuseMap == nil {
			pm.DiffuseMap = fallback
		}
		s.RegisterMaterial(matName, pm)
	}
	if mesh.TriangleCount() == 0 {
		return fmt.Sprintf("%s#0", meshName)
	}
	first := mesh.GetFaceMaterial(0)
	if first < 0 {
		first = 0
	}
	return fmt.Sprintf("%s#%d", meshName, first)
}

func vec3IsZero(v math3d.Vec3) bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// loadMeshes dispatches on file extension, matching the teacher's
// cmd/trophy/main.go switch, extended to the OBJ loader's multi-mesh
// return value.
func loadMeshes(path string) ([]*models.Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		mesh, err := models.LoadGLB(path)
		if err != nil {
			return nil, err
		}
		return []*models.Mesh{mesh}, nil
	case ".obj":
		return models.LoadOBJ(path)
	default:
		return nil, fmt.Errorf("unsupported scene format %q (use .obj, .glb or .gltf)", path)
	}
}
