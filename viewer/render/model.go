package render

// Model is the set of GPU meshes built from one loaded document, drawn
// together each frame.
type Model struct {
	Meshes []*RenderMesh
}

// MeshCount reports how many drawable meshes the model carries.
func (m *Model) MeshCount() int {
	if m == nil {
		return 0
	}
	return len(m.Meshes)
}

// Release frees every mesh's GPU resources. Safe to call on nil.
func (m *Model) Release() {
	if m == nil {
		return
	}
	for _, mesh := range m.Meshes {
		mesh.Release()
	}
	m.Meshes = nil
}
