// Package asset loads glTF, GLB and VRM model files into a flattened,
// GPU-agnostic document that the geometry builder consumes.
package asset

import "errors"

var (
	// ErrOpen indicates the model file could not be opened or parsed.
	ErrOpen = errors.New("asset: open failed")
	// ErrNoMeshes indicates the model contains no triangle geometry.
	ErrNoMeshes = errors.New("asset: no triangle meshes")
)

// Primitive is one triangle-mode glTF primitive with its vertex streams
// read into CPU memory. Normals and UVs are nil when the source omits them;
// Indices is nil for non-indexed primitives.
type Primitive struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Indices   []uint32
	Material  int // index into Document.Materials, -1 when unset
}

// Instance places a primitive in the scene with a world transform. The same
// primitive may be instanced by several nodes.
type Instance struct {
	Primitive int
	World     [16]float32 // column-major
}

// Material is the subset of glTF PBR material state the viewer shades with.
type Material struct {
	Name        string
	BaseColor   [4]float32
	Metallic    float32
	Roughness   float32
	BaseTexture int // index into Document.Textures, -1 when untextured
}

// Texture holds still-encoded image bytes for one referenced glTF texture.
// Decoding to RGBA happens later so it can run on the worker pool.
type Texture struct {
	Name string
	Data []byte
}

// Document is a fully resolved model: every buffer read, every node
// transform flattened to world space, every texture's bytes in memory.
type Document struct {
	Path       string
	IsVRM      bool
	Primitives []Primitive
	Instances  []Instance
	Materials  []Material
	Textures   []Texture
}

// DefaultMaterial returns the material used for primitives with no material
// reference: opaque white, non-metallic, fully rough.
func DefaultMaterial() Material {
	return Material{
		Name:        "default",
		BaseColor:   [4]float32{1, 1, 1, 1},
		Metallic:    0,
		Roughness:   1,
		BaseTexture: -1,
	}
}
