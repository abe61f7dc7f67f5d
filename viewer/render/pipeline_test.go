package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CU-Production/vrm-viewer/viewer/shading"
)

// The vertex attribute offsets in the pipeline descriptor are written as
// literals; pin them against the actual struct layout.
func TestVertexStrideMatchesLayout(t *testing.T) {
	assert.Equal(t, uint64(32), vertexStride)
}

func TestUniformSizesMatchShaders(t *testing.T) {
	assert.Equal(t, 112, (&shading.GPUFrameParams{}).Size())
	assert.Equal(t, 64, (&shading.GPUMaterialParams{}).Size())
	assert.Equal(t, 80, (&shading.GPUSkyParams{}).Size())
}
