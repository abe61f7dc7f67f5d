package shading

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/CU-Production/vrm-viewer/viewer/settings"
)

// Model selects the fragment shading path; the value is written into the
// material uniform and switched on in the shader.
type Model uint32

const (
	// ModelPBR is physically based shading with image-based lighting.
	ModelPBR Model = iota
	// ModelToon is the stylized two-band ramp with rim and highlight.
	ModelToon
	// ModelPreview lights every surface with a fixed gray material and
	// four point lights, for inspecting geometry without its textures.
	ModelPreview
)

// MeshShaderSource is the WGSL for the mesh pipeline: one vertex stage and
// a fragment stage implementing all three shading models.
//
//go:embed shaders/mesh.wgsl
var MeshShaderSource string

// SkyboxShaderSource is the WGSL for the fullscreen skybox pass.
//
//go:embed shaders/skybox.wgsl
var SkyboxShaderSource string

// GPUFrameParams is the per-frame uniform shared by every mesh draw.
// Matches the WGSL FrameParams struct layout exactly (see MeshShaderSource).
// Size: 112 bytes (mat4x4 + three vec4, std140 aligned).
type GPUFrameParams struct {
	ViewProj  [16]float32 // offset  0: combined view-projection matrix, column-major (64 bytes)
	CameraPos [4]float32  // offset 64: world-space eye position (xyz), w unused (16 bytes)
	LightDir  [4]float32  // offset 80: normalized light direction (xyz) + light intensity (w) (16 bytes)
	Ambient   [4]float32  // offset 96: ambient color (rgb) + specular env mip count (w) (16 bytes)
}

// Size returns the size of the GPUFrameParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUFrameParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFrameParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 112-byte buffer ready for GPU upload.
func (g *GPUFrameParams) Marshal() []byte {
	buf := make([]byte, 112)
	putMat4(buf[0:64], g.ViewProj)
	putVec4(buf[64:80], g.CameraPos)
	putVec4(buf[80:96], g.LightDir)
	putVec4(buf[96:112], g.Ambient)
	return buf
}

// GPUMaterialParams is the per-mesh material uniform.
// Matches the WGSL MaterialParams struct layout exactly (see MeshShaderSource).
// Size: 64 bytes (one vec4 + twelve scalars, std140 aligned).
type GPUMaterialParams struct {
	BaseColor      [4]float32 // offset  0: RGBA base color factor (16 bytes)
	Metallic       float32    // offset 16: metallic factor in [0, 1] (4 bytes)
	Roughness      float32    // offset 20: perceptual roughness in [0, 1] (4 bytes)
	Model          uint32     // offset 24: shading model selector (4 bytes)
	LightIntensity float32    // offset 28: toon light multiplier (4 bytes)
	ShadeToony     float32    // offset 32: toon band sharpness (4 bytes)
	ShadeStrength  float32    // offset 36: toon shade darkening (4 bytes)
	RimThreshold   float32    // offset 40: rim light start angle (4 bytes)
	RimSoftness    float32    // offset 44: rim light falloff width (4 bytes)
	SpecIntensity  float32    // offset 48: toon highlight intensity (4 bytes)
	Pad            [3]float32 // offset 52: std140 padding to 64 bytes (12 bytes)
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, 64)
	putVec4(buf[0:16], g.BaseColor)
	putF32(buf[16:20], g.Metallic)
	putF32(buf[20:24], g.Roughness)
	binary.LittleEndian.PutUint32(buf[24:28], g.Model)
	putF32(buf[28:32], g.LightIntensity)
	putF32(buf[32:36], g.ShadeToony)
	putF32(buf[36:40], g.ShadeStrength)
	putF32(buf[40:44], g.RimThreshold)
	putF32(buf[44:48], g.RimSoftness)
	putF32(buf[48:52], g.SpecIntensity)
	return buf
}

// ApplyToon copies the live toon parameters into the uniform.
func (g *GPUMaterialParams) ApplyToon(p settings.ToonParams) {
	g.LightIntensity = p.LightIntensity
	g.ShadeToony = p.ShadeToony
	g.ShadeStrength = p.ShadeStrength
	g.RimThreshold = p.RimThreshold
	g.RimSoftness = p.RimSoftness
	g.SpecIntensity = p.SpecIntensity
}

// GPUSkyParams is the skybox pass uniform.
// Matches the WGSL SkyParams struct layout exactly (see SkyboxShaderSource).
// Size: 80 bytes (mat4x4 + four scalars, std140 aligned).
type GPUSkyParams struct {
	InvViewProj [16]float32 // offset  0: inverse view-projection matrix, column-major (64 bytes)
	Exposure    float32     // offset 64: linear exposure multiplier (4 bytes)
	LOD         float32     // offset 68: cubemap mip level to sample (4 bytes)
	Pad         [2]float32  // offset 72: std140 padding to 80 bytes (8 bytes)
}

// Size returns the size of the GPUSkyParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUSkyParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSkyParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload.
func (g *GPUSkyParams) Marshal() []byte {
	buf := make([]byte, 80)
	putMat4(buf[0:64], g.InvViewProj)
	putF32(buf[64:68], g.Exposure)
	putF32(buf[68:72], g.LOD)
	return buf
}

func putF32(dst []byte, v float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
}

func putVec4(dst []byte, v [4]float32) {
	for i, x := range v {
		putF32(dst[i*4:], x)
	}
}

func putMat4(dst []byte, m [16]float32) {
	for i, x := range m {
		putF32(dst[i*4:], x)
	}
}
