package geometry

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CU-Production/vrm-viewer/viewer/asset"
)

func identityWorld() [16]float32 {
	var m [16]float32
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

func translateWorld(x, y, z float32) [16]float32 {
	m := identityWorld()
	m[12], m[13], m[14] = x, y, z
	return m
}

// unitCubeDoc returns a document with the 8 corners of a unit cube as a
// non-indexed point cloud (positions only, bounds are what matter).
func unitCubeDoc() *asset.Document {
	var corners [][3]float32
	for x := float32(0); x <= 1; x++ {
		for y := float32(0); y <= 1; y++ {
			for z := float32(0); z <= 1; z++ {
				corners = append(corners, [3]float32{x, y, z})
			}
		}
	}
	// Pad to a multiple of 3 so the corner list reads as triangles.
	corners = append(corners, [3]float32{0, 0, 0})

	return &asset.Document{
		Primitives: []asset.Primitive{{Positions: corners, Material: -1}},
		Instances:  []asset.Instance{{Primitive: 0, World: identityWorld()}},
	}
}

func TestBuildUnitCubeBounds(t *testing.T) {
	res, err := Build(unitCubeDoc())
	require.NoError(t, err)

	assert.InDelta(t, 0.5, res.Center[0], 1e-6)
	assert.InDelta(t, 0.5, res.Center[1], 1e-6)
	assert.InDelta(t, 0.5, res.Center[2], 1e-6)
	// Diagonal of a unit cube is sqrt(3); the half-diagonal is below the
	// 1.0 radius floor, so the floor wins.
	assert.Equal(t, float32(1.0), res.Radius)
}

func TestBuildRadiusFloor(t *testing.T) {
	doc := &asset.Document{
		Primitives: []asset.Primitive{{
			Positions: [][3]float32{{0, 0, 0}, {0.1, 0, 0}, {0, 0.1, 0}},
		}},
		Instances: []asset.Instance{{Primitive: 0, World: identityWorld()}},
	}
	res, err := Build(doc)
	require.NoError(t, err)
	assert.Equal(t, float32(1.0), res.Radius, "tiny models get the minimum radius")
}

func TestBuildLargeModelRadius(t *testing.T) {
	doc := &asset.Document{
		Primitives: []asset.Primitive{{
			Positions: [][3]float32{{-10, 0, 0}, {10, 0, 0}, {0, 0, 0}},
		}},
		Instances: []asset.Instance{{Primitive: 0, World: identityWorld()}},
	}
	res, err := Build(doc)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, res.Radius, 1e-5)
	assert.InDelta(t, 0.0, res.Center[0], 1e-6)
}

func TestBuildBakesInstanceTransform(t *testing.T) {
	doc := &asset.Document{
		Primitives: []asset.Primitive{{
			Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		}},
		Instances: []asset.Instance{{Primitive: 0, World: translateWorld(5, 0, 0)}},
	}
	res, err := Build(doc)
	require.NoError(t, err)
	require.Len(t, res.Meshes, 1)

	assert.Equal(t, [3]float32{5, 0, 0}, res.Meshes[0].Vertices[0].Position)
	// Translation must not bend normals.
	assert.Equal(t, [3]float32{0, 0, 1}, res.Meshes[0].Vertices[0].Normal)
}

func TestBuildNormalsRenormalizedUnderScale(t *testing.T) {
	world := identityWorld()
	world[0] = 3 // non-uniform scale in X

	doc := &asset.Document{
		Primitives: []asset.Primitive{{
			Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Normals:   [][3]float32{{1, 1, 0}, {1, 1, 0}, {1, 1, 0}},
		}},
		Instances: []asset.Instance{{Primitive: 0, World: world}},
	}
	res, err := Build(doc)
	require.NoError(t, err)

	n := res.Meshes[0].Vertices[0].Normal
	l := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	assert.InDelta(t, 1.0, l, 1e-5, "normals stay unit length after scaling")
	// The linear part stretches the scaled axis: (1,1,0) under
	// diag(3,1,1) renormalizes to roughly (0.949, 0.316, 0).
	assert.InDelta(t, 0.9487, n[0], 1e-3)
	assert.InDelta(t, 0.3162, n[1], 1e-3)
	assert.Greater(t, n[0], n[1], "the scaled axis dominates")
}

func TestBuildDegenerateNormalFallback(t *testing.T) {
	doc := &asset.Document{
		Primitives: []asset.Primitive{{
			Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Normals:   [][3]float32{{0, 0, 0}, {1e-6, 0, 0}, {0, 0, 1}},
		}},
		Instances: []asset.Instance{{Primitive: 0, World: identityWorld()}},
	}
	res, err := Build(doc)
	require.NoError(t, err)

	up := [3]float32{0, 1, 0}
	assert.Equal(t, up, res.Meshes[0].Vertices[0].Normal)
	assert.Equal(t, up, res.Meshes[0].Vertices[1].Normal)
	assert.Equal(t, [3]float32{0, 0, 1}, res.Meshes[0].Vertices[2].Normal)
}

func TestBuildMissingNormalsAndUVs(t *testing.T) {
	doc := &asset.Document{
		Primitives: []asset.Primitive{{
			Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		}},
		Instances: []asset.Instance{{Primitive: 0, World: identityWorld()}},
	}
	res, err := Build(doc)
	require.NoError(t, err)

	v := res.Meshes[0].Vertices[0]
	assert.Equal(t, [3]float32{0, 1, 0}, v.Normal)
	assert.Equal(t, [2]float32{0, 0}, v.UV)
}

func TestBuildIndicesCopied(t *testing.T) {
	src := []uint32{0, 1, 2}
	doc := &asset.Document{
		Primitives: []asset.Primitive{{
			Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Indices:   src,
		}},
		Instances: []asset.Instance{{Primitive: 0, World: identityWorld()}},
	}
	res, err := Build(doc)
	require.NoError(t, err)

	require.Equal(t, src, res.Meshes[0].Indices)
	// The copy must not alias the document's slice.
	res.Meshes[0].Indices[0] = 99
	assert.Equal(t, uint32(0), src[0])
}

func TestBuildSharedPrimitiveTwoInstances(t *testing.T) {
	doc := &asset.Document{
		Primitives: []asset.Primitive{{
			Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		}},
		Instances: []asset.Instance{
			{Primitive: 0, World: translateWorld(-2, 0, 0)},
			{Primitive: 0, World: translateWorld(2, 0, 0)},
		},
	}
	res, err := Build(doc)
	require.NoError(t, err)

	require.Len(t, res.Meshes, 2)
	assert.InDelta(t, 0.5, res.Center[0], 1e-6)
}

func TestBuildEmpty(t *testing.T) {
	_, err := Build(&asset.Document{})
	assert.ErrorIs(t, err, ErrEmpty)
}
