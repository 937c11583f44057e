package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/trophy/pkg/math3d"
)

// LoadOBJ reads a Wavefront OBJ file and returns one Mesh per "o"/"g" group
// it declares (a single default-named mesh if the file declares none).
// Faces are fan-triangulated; vertex combinations ("v/vt/vn" triples) are
// deduplicated per group exactly as OBJ readers conventionally do.
func LoadOBJ(path string) ([]*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	meshes, err := parseOBJ(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("parse obj %q: %w", path, err)
	}
	return meshes, nil
}

type objVertexKey struct {
	pos, tex, norm int
}

func parseOBJ(r io.Reader, baseName string) ([]*Mesh, error) {
	var positions []math3d.Vec3
	var normals []math3d.Vec3
	var texcoords []math3d.Vec2

	var meshes []*Mesh
	current := NewMesh("default")
	vertexMap := make(map[objVertexKey]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		prefix := fields[0]
		args := fields[1:]

		switch prefix {
		case "v":
			v, err := parseVec3(args)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", lineNo, err)
			}
			positions = append(positions, v)

		case "vn":
			n, err := parseVec3(args)
			if err != nil {
				return nil, fmt.Errorf("line %d: normal: %w", lineNo, err)
			}
			normals = append(normals, n)

		case "vt":
			uv, err := parseVec2(args)
			if err != nil {
				return nil, fmt.Errorf("line %d: texcoord: %w", lineNo, err)
			}
			texcoords = append(texcoords, uv)

		case "f":
			if err := appendFace(current, vertexMap, positions, normals, texcoords, args); err != nil {
				return nil, fmt.Errorf("line %d: face: %w", lineNo, err)
			}

		case "o", "g":
			if len(current.Vertices) > 0 {
				current.CalculateBounds()
				meshes = append(meshes, current)
				current = NewMesh("default")
				vertexMap = make(map[objVertexKey]int)
			}
			if len(args) > 0 {
				current.Name = args[0]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(current.Vertices) > 0 {
		current.CalculateBounds()
		meshes = append(meshes, current)
	}

	if len(meshes) == 0 {
		return nil, fmt.Errorf("no geometry found")
	}
	if len(meshes) == 1 && meshes[0].Name == "default" {
		meshes[0].Name = baseName
	}
	return meshes, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	if len(fields) < 3 {
		return math3d.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return math3d.Vec3{}, err
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return math3d.Vec3{}, err
	}
	z, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return math3d.Vec3{}, err
	}
	return math3d.V3(x, y, z), nil
}

func parseVec2(fields []string) (math3d.Vec2, error) {
	if len(fields) < 2 {
		return math3d.Vec2{}, fmt.Errorf("expected 2 components, got %d", len(fields))
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return math3d.Vec2{}, err
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return math3d.Vec2{}, err
	}
	return math3d.V2(x, y), nil
}

// appendFace parses an OBJ face line ("v", "v/vt", "v/vt/vn" or "v//vn"
// per-corner references), reuses already-seen vertex combinations, and
// fan-triangulates polygons with more than 3 corners.
func appendFace(mesh *Mesh, vertexMap map[objVertexKey]int, positions, normals []math3d.Vec3, texcoords []math3d.Vec2, args []string) error {
	indices := make([]int, 0, len(args))

	for _, corner := range args {
		key, err := parseOBJVertexRef(corner, len(positions), len(texcoords), len(normals))
		if err != nil {
			return err
		}

		if idx, ok := vertexMap[key]; ok {
			indices = append(indices, idx)
			continue
		}

		if key.pos < 1 || key.pos > len(positions) {
			return fmt.Errorf("position index %d out of range", key.pos)
		}
		v := MeshVertex{Position: positions[key.pos-1]}
		if key.norm > 0 && key.norm <= len(normals) {
			v.Normal = normals[key.norm-1]
		} else {
			v.Normal = math3d.V3(0, 1, 0)
		}
		if key.tex > 0 && key.tex <= len(texcoords) {
			v.UV = texcoords[key.tex-1]
		}

		newIdx := len(mesh.Vertices)
		mesh.Vertices = append(mesh.Vertices, v)
		vertexMap[key] = newIdx
		indices = append(indices, newIdx)
	}

	for i := 1; i+1 < len(indices); i++ {
		mesh.Faces = append(mesh.Faces, Face{
			V:        [3]int{indices[0], indices[i], indices[i+1]},
			Material: -1,
		})
	}
	return nil
}

// parseOBJVertexRef parses one face corner's "v", "v/vt" or "v/vt/vn"
// reference, resolving negative (relative-to-end) indices per the OBJ spec.
func parseOBJVertexRef(s string, posCount, texCount, normCount int) (objVertexKey, error) {
	parts := strings.Split(s, "/")

	pos, err := strconv.Atoi(parts[0])
	if err != nil {
		return objVertexKey{}, fmt.Errorf("bad vertex index %q: %w", parts[0], err)
	}
	if pos < 0 {
		pos = posCount + pos + 1
	}

	key := objVertexKey{pos: pos}

	if len(parts) > 1 && parts[1] != "" {
		tex, err := strconv.Atoi(parts[1])
		if err != nil {
			return objVertexKey{}, fmt.Errorf("bad texcoord index %q: %w", parts[1], err)
		}
		if tex < 0 {
			tex = texCount + tex + 1
		}
		key.tex = tex
	}

	if len(parts) > 2 && parts[2] != "" {
		norm, err := strconv.Atoi(parts[2])
		if err != nil {
			return objVertexKey{}, fmt.Errorf("bad normal index %q: %w", parts[2], err)
		}
		if norm < 0 {
			norm = normCount + norm + 1
		}
		key.norm = norm
	}

	return key, nil
}
