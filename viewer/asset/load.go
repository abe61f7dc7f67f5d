package asset

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/CU-Production/vrm-viewer/common"
	"github.com/CU-Production/vrm-viewer/viewer/logging"
)

// vrmExtensions are the glTF extension names that mark a model as VRM.
// "VRM" is the 0.x extension, "VRMC_vrm" the 1.0 one.
var vrmExtensions = []string{"VRM", "VRMC_vrm"}

// Load reads a .gltf, .glb or .vrm file from disk and resolves it into a
// Document. External buffers and images are loaded relative to the file.
//
// Parameters:
//   - path: model file path
//
// Returns:
//   - *Document: resolved model
//   - error: ErrOpen-wrapped parse errors, ErrNoMeshes when nothing renderable
func Load(path string) (*Document, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}
	return resolve(doc, filepath.Dir(path), path)
}

// resolve flattens a parsed glTF document: scene nodes become instances with
// world transforms, primitives are read into vertex streams, and material
// textures are pulled into memory.
func resolve(doc *gltf.Document, baseDir, path string) (*Document, error) {
	out := &Document{
		Path:  path,
		IsVRM: detectVRM(doc),
	}

	// meshStart[i] is the index of mesh i's first primitive in
	// out.Primitives; -1 when the mesh has no triangle primitives.
	meshStart := make([]int, len(doc.Meshes))
	meshCount := make([]int, len(doc.Meshes))

	for mi, mesh := range doc.Meshes {
		meshStart[mi] = -1
		for _, prim := range mesh.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				continue
			}
			p, err := readPrimitive(doc, prim)
			if err != nil {
				logging.Debug("skipping primitive",
					zap.String("mesh", mesh.Name), zap.Error(err))
				continue
			}
			if meshStart[mi] < 0 {
				meshStart[mi] = len(out.Primitives)
			}
			meshCount[mi]++
			out.Primitives = append(out.Primitives, p)
		}
	}
	if len(out.Primitives) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMeshes, path)
	}

	instantiate(doc, out, meshStart, meshCount)
	if len(out.Instances) == 0 {
		// No scene references any mesh; show everything at the origin.
		for mi := range doc.Meshes {
			addMeshInstances(out, meshStart[mi], meshCount[mi], identity())
		}
	}

	if err := resolveMaterials(doc, out, baseDir); err != nil {
		return nil, err
	}

	return out, nil
}

func detectVRM(doc *gltf.Document) bool {
	for _, used := range doc.ExtensionsUsed {
		for _, name := range vrmExtensions {
			if used == name {
				return true
			}
		}
	}
	return false
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (Primitive, error) {
	p := Primitive{Material: -1}
	if prim.Material != nil {
		p.Material = *prim.Material
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return p, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return p, fmt.Errorf("read positions: %w", err)
	}
	p.Positions = positions

	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
		if err != nil {
			return p, fmt.Errorf("read normals: %w", err)
		}
		p.Normals = normals
	}

	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
		if err != nil {
			return p, fmt.Errorf("read texcoords: %w", err)
		}
		p.UVs = uvs
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return p, fmt.Errorf("read indices: %w", err)
		}
		p.Indices = indices
	}

	return p, nil
}

// instantiate walks the default scene (or the first one) and emits an
// Instance per node-referenced triangle primitive.
func instantiate(doc *gltf.Document, out *Document, meshStart, meshCount []int) {
	if len(doc.Scenes) == 0 {
		return
	}
	scene := doc.Scenes[0]
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		scene = doc.Scenes[*doc.Scene]
	}

	for _, root := range scene.Nodes {
		visitNode(doc, out, root, identity(), meshStart, meshCount)
	}
}

func visitNode(doc *gltf.Document, out *Document, nodeIdx int, parent [16]float32, meshStart, meshCount []int) {
	if nodeIdx < 0 || nodeIdx >= len(doc.Nodes) {
		return
	}
	node := doc.Nodes[nodeIdx]

	local := localMatrix(node)
	var world [16]float32
	common.Mul4(world[:], parent[:], local[:])

	if node.Mesh != nil && *node.Mesh < len(meshStart) && meshStart[*node.Mesh] >= 0 {
		addMeshInstances(out, meshStart[*node.Mesh], meshCount[*node.Mesh], world)
	}

	for _, child := range node.Children {
		visitNode(doc, out, child, world, meshStart, meshCount)
	}
}

func addMeshInstances(out *Document, start, count int, world [16]float32) {
	for i := 0; i < count; i++ {
		out.Instances = append(out.Instances, Instance{Primitive: start + i, World: world})
	}
}

// localMatrix computes a node's local transform. A non-identity matrix wins;
// otherwise the TRS properties are composed.
func localMatrix(node *gltf.Node) [16]float32 {
	if m := node.MatrixOrDefault(); m != gltf.DefaultMatrix {
		var out [16]float32
		for i, v := range m {
			out[i] = float32(v)
		}
		return out
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()

	var out [16]float32
	common.ComposeTRS(out[:],
		[3]float32{float32(t[0]), float32(t[1]), float32(t[2])},
		[4]float32{float32(r[0]), float32(r[1]), float32(r[2]), float32(r[3])},
		[3]float32{float32(s[0]), float32(s[1]), float32(s[2])},
	)
	return out
}

func identity() [16]float32 {
	var m [16]float32
	common.Identity(m[:])
	return m
}

// resolveMaterials converts every referenced glTF material and pulls its
// base color texture bytes into the document. Texture indices are remapped
// to the document's compact texture list.
func resolveMaterials(doc *gltf.Document, out *Document, baseDir string) error {
	texRemap := map[int]int{}

	for _, mat := range doc.Materials {
		m := DefaultMaterial()
		m.Name = mat.Name

		if pbr := mat.PBRMetallicRoughness; pbr != nil {
			bc := pbr.BaseColorFactorOrDefault()
			m.BaseColor = [4]float32{float32(bc[0]), float32(bc[1]), float32(bc[2]), float32(bc[3])}
			m.Metallic = float32(pbr.MetallicFactorOrDefault())
			m.Roughness = float32(pbr.RoughnessFactorOrDefault())

			if pbr.BaseColorTexture != nil {
				srcTex := pbr.BaseColorTexture.Index
				if idx, seen := texRemap[srcTex]; seen {
					m.BaseTexture = idx
				} else if data, name, err := textureBytes(doc, srcTex, baseDir); err == nil {
					idx = len(out.Textures)
					out.Textures = append(out.Textures, Texture{Name: name, Data: data})
					texRemap[srcTex] = idx
					m.BaseTexture = idx
				}
				// A texture that cannot be read leaves BaseTexture at -1;
				// the renderer substitutes the shared white fallback.
			}
		}

		out.Materials = append(out.Materials, m)
	}

	return nil
}

// textureBytes returns the encoded image bytes for a glTF texture index,
// reading from the binary chunk, a data URI or an external file.
func textureBytes(doc *gltf.Document, texIdx int, baseDir string) ([]byte, string, error) {
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return nil, "", fmt.Errorf("texture index %d out of range", texIdx)
	}
	tex := doc.Textures[texIdx]
	if tex.Source == nil || *tex.Source >= len(doc.Images) {
		return nil, "", fmt.Errorf("texture %d has no image source", texIdx)
	}
	img := doc.Images[*tex.Source]

	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if bv.ByteOffset+bv.ByteLength > len(buf.Data) {
			return nil, "", fmt.Errorf("image buffer view out of range")
		}
		return buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], img.Name, nil
	}

	if img.URI != "" {
		if strings.HasPrefix(img.URI, "data:") {
			data, err := decodeDataURI(img.URI)
			return data, img.Name, err
		}
		data, err := os.ReadFile(filepath.Join(baseDir, img.URI))
		if err != nil {
			return nil, "", fmt.Errorf("reading image %s: %w", img.URI, err)
		}
		return data, img.Name, nil
	}

	return nil, "", fmt.Errorf("image %d has neither buffer view nor URI", *tex.Source)
}

func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URI")
	}
	if !strings.HasSuffix(uri[:comma], ";base64") {
		return nil, fmt.Errorf("unsupported data URI encoding")
	}
	return base64.StdEncoding.DecodeString(uri[comma+1:])
}
