// Package geometry converts resolved model documents into GPU-ready vertex
// and index streams, baking node transforms and computing scene bounds.
package geometry

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/CU-Production/vrm-viewer/common"
	"github.com/CU-Production/vrm-viewer/viewer/asset"
)

// ErrEmpty indicates the document produced no renderable geometry.
var ErrEmpty = errors.New("geometry: empty build")

// normalEps is the length threshold below which a transformed normal is
// considered degenerate and replaced by the up vector.
const normalEps = 1e-4

// Vertex is the interleaved GPU vertex layout: position, normal, UV.
// The field order matches the shader's vertex buffer attributes.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// MeshData is one drawable mesh in world space, ready for upload.
// Indices is nil for non-indexed meshes.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
	Material int // index into the source document's materials, -1 for default
}

// BuildResult is the CPU-side product of a model load: world-space meshes
// plus the bounding info used to frame the camera.
type BuildResult struct {
	Meshes []MeshData
	Center [3]float32
	Radius float32
}

// Build bakes every instance of a document into world-space meshes and
// folds all transformed positions into a bounding sphere. The radius is
// floored at 1.0 so degenerate models still frame sensibly.
//
// Parameters:
//   - doc: resolved model document
//
// Returns:
//   - *BuildResult: world-space meshes with bounds
//   - error: ErrEmpty when no instance yields vertices
func Build(doc *asset.Document) (*BuildResult, error) {
	res := &BuildResult{}

	minB := [3]float32{math32.Inf(1), math32.Inf(1), math32.Inf(1)}
	maxB := [3]float32{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)}
	folded := false

	for _, inst := range doc.Instances {
		if inst.Primitive < 0 || inst.Primitive >= len(doc.Primitives) {
			continue
		}
		prim := &doc.Primitives[inst.Primitive]
		if len(prim.Positions) == 0 {
			continue
		}

		mesh := MeshData{
			Vertices: make([]Vertex, len(prim.Positions)),
			Material: prim.Material,
		}

		for i, pos := range prim.Positions {
			x, y, z := common.TransformPoint(inst.World[:], pos[0], pos[1], pos[2])

			// Normals go through the linear part of the transform only
			// (translation ignored), then renormalize with a fallback.
			n := [3]float32{0, 1, 0}
			if i < len(prim.Normals) {
				nx, ny, nz := common.TransformDirection(inst.World[:], prim.Normals[i][0], prim.Normals[i][1], prim.Normals[i][2])
				n = common.Normalize3(nx, ny, nz, normalEps, [3]float32{0, 1, 0})
			}

			uv := [2]float32{0, 0}
			if i < len(prim.UVs) {
				uv = prim.UVs[i]
			}

			mesh.Vertices[i] = Vertex{
				Position: [3]float32{x, y, z},
				Normal:   n,
				UV:       uv,
			}

			for a, v := range [3]float32{x, y, z} {
				if v < minB[a] {
					minB[a] = v
				}
				if v > maxB[a] {
					maxB[a] = v
				}
			}
			folded = true
		}

		if len(prim.Indices) > 0 {
			mesh.Indices = make([]uint32, len(prim.Indices))
			copy(mesh.Indices, prim.Indices)
		}

		res.Meshes = append(res.Meshes, mesh)
	}

	if !folded {
		return nil, ErrEmpty
	}

	for a := 0; a < 3; a++ {
		res.Center[a] = (minB[a] + maxB[a]) * 0.5
	}
	dx := maxB[0] - minB[0]
	dy := maxB[1] - minB[1]
	dz := maxB[2] - minB[2]
	res.Radius = math32.Sqrt(dx*dx+dy*dy+dz*dz) * 0.5
	if res.Radius < 1.0 {
		res.Radius = 1.0
	}

	return res, nil
}
