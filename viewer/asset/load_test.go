package asset

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleDoc builds an in-memory document with a single indexed triangle.
func triangleDoc(t *testing.T) *gltf.Document {
	t.Helper()
	doc := gltf.NewDocument()

	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	norm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})

	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{
				gltf.POSITION:   pos,
				gltf.NORMAL:     norm,
				gltf.TEXCOORD_0: uv,
			},
			Indices: gltf.Index(idx),
		}},
	}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}
	return doc
}

func TestResolveTriangle(t *testing.T) {
	out, err := resolve(triangleDoc(t), ".", "tri.glb")
	require.NoError(t, err)

	require.Len(t, out.Primitives, 1)
	require.Len(t, out.Instances, 1)
	assert.False(t, out.IsVRM)

	p := out.Primitives[0]
	assert.Equal(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, p.Positions)
	assert.Equal(t, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}, p.Normals)
	assert.Equal(t, [][2]float32{{0, 0}, {1, 0}, {0, 1}}, p.UVs)
	assert.Equal(t, []uint32{0, 1, 2}, p.Indices)
	assert.Equal(t, -1, p.Material)

	// The only node has no transform, so the instance is at the origin.
	var id [16]float32
	id[0], id[5], id[10], id[15] = 1, 1, 1, 1
	assert.Equal(t, id, out.Instances[0].World)
}

func TestResolveNodeTransformHierarchy(t *testing.T) {
	doc := triangleDoc(t)
	doc.Nodes = []*gltf.Node{
		{Translation: [3]float64{1, 0, 0}, Children: []int{1}},
		{Translation: [3]float64{0, 2, 0}, Mesh: gltf.Index(0)},
	}
	doc.Scenes[0].Nodes = []int{0}

	out, err := resolve(doc, ".", "tri.glb")
	require.NoError(t, err)
	require.Len(t, out.Instances, 1)

	w := out.Instances[0].World
	assert.InDelta(t, 1.0, w[12], 1e-6)
	assert.InDelta(t, 2.0, w[13], 1e-6)
	assert.InDelta(t, 0.0, w[14], 1e-6)
}

func TestResolveExplicitMatrixWins(t *testing.T) {
	doc := triangleDoc(t)
	doc.Nodes[0].Matrix = [16]float64{
		2, 0, 0, 0,
		0, 2, 0, 0,
		0, 0, 2, 0,
		3, 0, 0, 1,
	}
	// A stray TRS must be ignored when a matrix is present.
	doc.Nodes[0].Translation = [3]float64{99, 99, 99}

	out, err := resolve(doc, ".", "tri.glb")
	require.NoError(t, err)
	w := out.Instances[0].World
	assert.Equal(t, float32(2), w[0])
	assert.Equal(t, float32(3), w[12])
}

func TestResolveSkipsNonTrianglePrimitives(t *testing.T) {
	doc := triangleDoc(t)
	doc.Meshes[0].Primitives[0].Mode = gltf.PrimitiveLines

	_, err := resolve(doc, ".", "lines.glb")
	assert.ErrorIs(t, err, ErrNoMeshes)
}

func TestResolveUnreferencedMeshFallsBack(t *testing.T) {
	doc := triangleDoc(t)
	doc.Scenes[0].Nodes = nil

	out, err := resolve(doc, ".", "tri.glb")
	require.NoError(t, err)
	require.Len(t, out.Instances, 1, "orphan meshes still render at the origin")
}

func TestDetectVRM(t *testing.T) {
	doc := triangleDoc(t)
	assert.False(t, detectVRM(doc))

	doc.ExtensionsUsed = []string{"KHR_materials_unlit", "VRM"}
	assert.True(t, detectVRM(doc))

	doc.ExtensionsUsed = []string{"VRMC_vrm"}
	assert.True(t, detectVRM(doc))
}

func TestResolveMaterials(t *testing.T) {
	doc := triangleDoc(t)
	doc.Materials = []*gltf.Material{{
		Name: "skin",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{0.5, 0.25, 1, 1},
			MetallicFactor:  gltf.Float(0.2),
			RoughnessFactor: gltf.Float(0.8),
		},
	}}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(0)

	out, err := resolve(doc, ".", "tri.glb")
	require.NoError(t, err)
	require.Len(t, out.Materials, 1)

	m := out.Materials[0]
	assert.Equal(t, "skin", m.Name)
	assert.InDelta(t, 0.5, m.BaseColor[0], 1e-6)
	assert.InDelta(t, 0.25, m.BaseColor[1], 1e-6)
	assert.InDelta(t, 0.2, m.Metallic, 1e-6)
	assert.InDelta(t, 0.8, m.Roughness, 1e-6)
	assert.Equal(t, -1, m.BaseTexture)
	assert.Equal(t, 0, out.Primitives[0].Material)
}

func TestResolveTextureFromDataURI(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	doc := triangleDoc(t)
	doc.Images = []*gltf.Image{{Name: "base", URI: uri}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
	doc.Materials = []*gltf.Material{{
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
	}}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(0)

	out, err := resolve(doc, ".", "tri.gltf")
	require.NoError(t, err)
	require.Len(t, out.Textures, 1)
	assert.Equal(t, 0, out.Materials[0].BaseTexture)
	assert.Equal(t, buf.Bytes(), out.Textures[0].Data)
}

func TestResolveBrokenTextureLeavesFallback(t *testing.T) {
	doc := triangleDoc(t)
	doc.Images = []*gltf.Image{{URI: "missing.png"}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
	doc.Materials = []*gltf.Material{{
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
	}}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(0)

	out, err := resolve(doc, t.TempDir(), "tri.gltf")
	require.NoError(t, err, "a broken texture must not fail the whole load")
	assert.Equal(t, -1, out.Materials[0].BaseTexture)
	assert.Empty(t, out.Textures)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/model.glb")
	assert.ErrorIs(t, err, ErrOpen)
}

func TestDecodeDataURI(t *testing.T) {
	data, err := decodeDataURI("data:application/octet-stream;base64," +
		base64.StdEncoding.EncodeToString([]byte("abc")))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	_, err = decodeDataURI("data:text/plain,abc")
	assert.Error(t, err)

	_, err = decodeDataURI("not a uri")
	assert.Error(t, err)
}
