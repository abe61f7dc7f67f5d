// Package settings holds the runtime-adjustable viewer state shared between
// input handling and rendering.
package settings

// ToonParams holds the stylized shading parameters.
type ToonParams struct {
	LightIntensity float32
	ShadeToony     float32
	ShadeStrength  float32
	RimThreshold   float32
	RimSoftness    float32
	SpecIntensity  float32
}

// DefaultToon returns the neutral toon look applied to fresh models.
func DefaultToon() ToonParams {
	return ToonParams{
		LightIntensity: 1.0,
		ShadeToony:     0.9,
		ShadeStrength:  0.8,
		RimThreshold:   0.5,
		RimSoftness:    0.2,
		SpecIntensity:  0.5,
	}
}

// State is the viewer's mutable session state. It is owned by the main
// thread; background loaders never touch it directly.
type State struct {
	ModelLoaded bool
	IsVRM       bool
	MeshCount   int
	ModelPath   string

	// UseToonShader selects toon shading instead of PBR for the loaded model.
	UseToonShader bool

	// MaterialPreview substitutes a fixed gray material under simple
	// lighting, overriding both toon and PBR.
	MaterialPreview bool

	ShowSkybox     bool
	SkyboxExposure float32
	SkyboxLOD      float32

	// ShowGUI and GUIHovered belong to the external settings overlay. The
	// viewer only toggles visibility and skips camera drag while hovered.
	ShowGUI    bool
	GUIHovered bool

	Toon ToonParams
}

// New returns session state with skybox and toon defaults applied.
func New() *State {
	return &State{
		ShowSkybox:     true,
		SkyboxExposure: 1.0,
		SkyboxLOD:      1.5,
		ShowGUI:        true,
		Toon:           DefaultToon(),
	}
}

// SetModel records a newly loaded model. VRM models default to toon shading,
// plain glTF models to PBR.
func (s *State) SetModel(path string, isVRM bool, meshCount int) {
	s.ModelLoaded = true
	s.ModelPath = path
	s.IsVRM = isVRM
	s.MeshCount = meshCount
	s.UseToonShader = isVRM
}

// ClearModel resets the model-dependent state after resources are released.
func (s *State) ClearModel() {
	s.ModelLoaded = false
	s.ModelPath = ""
	s.IsVRM = false
	s.MeshCount = 0
	s.UseToonShader = false
	s.MaterialPreview = false
}

// ShadingModel resolves the active shading model from the toggle flags.
// Material preview wins over the toon/PBR choice.
func (s *State) ShadingModel() uint32 {
	switch {
	case s.MaterialPreview:
		return 2
	case s.UseToonShader:
		return 1
	default:
		return 0
	}
}
