package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaults(t *testing.T) {
	s := New()

	assert.False(t, s.ModelLoaded)
	assert.True(t, s.ShowSkybox)
	assert.Equal(t, float32(1.0), s.SkyboxExposure)
	assert.Equal(t, float32(1.5), s.SkyboxLOD)
	assert.True(t, s.ShowGUI)
	assert.False(t, s.GUIHovered)
	assert.Equal(t, DefaultToon(), s.Toon)
}

func TestSetModelSelectsShading(t *testing.T) {
	s := New()

	s.SetModel("avatar.vrm", true, 12)
	assert.True(t, s.ModelLoaded)
	assert.True(t, s.IsVRM)
	assert.True(t, s.UseToonShader, "VRM models default to toon shading")
	assert.Equal(t, 12, s.MeshCount)

	s.SetModel("scene.glb", false, 3)
	assert.False(t, s.IsVRM)
	assert.False(t, s.UseToonShader, "plain glTF models default to PBR")
	assert.Equal(t, 3, s.MeshCount)
}

func TestClearModel(t *testing.T) {
	s := New()
	s.SetModel("avatar.vrm", true, 12)
	s.ClearModel()

	assert.False(t, s.ModelLoaded)
	assert.False(t, s.IsVRM)
	assert.False(t, s.UseToonShader)
	assert.Equal(t, 0, s.MeshCount)
	assert.Empty(t, s.ModelPath)
	// Skybox settings survive model changes.
	assert.True(t, s.ShowSkybox)
}

func TestShadingModel(t *testing.T) {
	s := New()
	assert.Equal(t, uint32(0), s.ShadingModel())

	s.UseToonShader = true
	assert.Equal(t, uint32(1), s.ShadingModel())

	s.MaterialPreview = true
	assert.Equal(t, uint32(2), s.ShadingModel(), "preview overrides toon")

	s.ClearModel()
	assert.False(t, s.MaterialPreview)
	assert.Equal(t, uint32(0), s.ShadingModel())
}
