package render

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/CU-Production/vrm-viewer/common"
	"github.com/CU-Production/vrm-viewer/viewer/geometry"
	"github.com/CU-Production/vrm-viewer/viewer/shading"
)

// RenderMesh holds the GPU resources for one drawable mesh: interleaved
// vertex data, optional indices, and the per-material bind group.
type RenderMesh struct {
	VertexBuffer *wgpu.Buffer
	IndexBuffer  *wgpu.Buffer
	VertexCount  uint32
	IndexCount   uint32
	HasIndices   bool

	MaterialBuffer *wgpu.Buffer
	BindGroup      *wgpu.BindGroup

	// Texture is the sampled base color texture. Meshes without their own
	// texture bind the renderer's shared white texture and leave OwnsTexture
	// false so Release does not free it.
	Texture     *GPUTexture
	OwnsTexture bool

	Params shading.GPUMaterialParams
}

// Release frees the mesh's GPU resources. The shared fallback texture is
// left alone.
func (m *RenderMesh) Release() {
	if m == nil {
		return
	}
	if m.BindGroup != nil {
		m.BindGroup.Release()
		m.BindGroup = nil
	}
	if m.MaterialBuffer != nil {
		m.MaterialBuffer.Release()
		m.MaterialBuffer = nil
	}
	if m.OwnsTexture && m.Texture != nil {
		m.Texture.Release()
	}
	m.Texture = nil
	if m.IndexBuffer != nil {
		m.IndexBuffer.Release()
		m.IndexBuffer = nil
	}
	if m.VertexBuffer != nil {
		m.VertexBuffer.Release()
		m.VertexBuffer = nil
	}
}

// createMeshBuffers uploads the vertex and index streams for one mesh.
func (c *Context) createMeshBuffers(label string, data *geometry.MeshData) (*RenderMesh, error) {
	vertexBytes := common.SliceToBytes(data.Vertices)
	vb, err := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Vertex Buffer",
		Size:  uint64(len(vertexBytes)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("creating vertex buffer: %w", err)
	}
	c.queue.WriteBuffer(vb, 0, vertexBytes)

	mesh := &RenderMesh{
		VertexBuffer: vb,
		VertexCount:  uint32(len(data.Vertices)),
	}

	if len(data.Indices) > 0 {
		indexBytes := common.SliceToBytes(data.Indices)
		ib, err := c.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label + " Index Buffer",
			Size:  uint64(len(indexBytes)),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			vb.Release()
			return nil, fmt.Errorf("creating index buffer: %w", err)
		}
		c.queue.WriteBuffer(ib, 0, indexBytes)
		mesh.IndexBuffer = ib
		mesh.IndexCount = uint32(len(data.Indices))
		mesh.HasIndices = true
	}

	return mesh, nil
}
