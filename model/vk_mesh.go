package model

import (
	"github.com/pkg/errors"
)

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	VIndices []uint32
}

func NewMesh(v []Vertex, id []uint32) *Mesh {
	return &Mesh{
		Vertices: v,
		VIndices: id,
	}
}

// Validate rejects meshes that cannot be drawn as a triangle list.
func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 || len(m.VIndices) == 0 {
		return errors.New("mesh is empty")
	}
	if len(m.VIndices)%3 != 0 {
		return errors.Errorf("index count %d is not a multiple of 3", len(m.VIndices))
	}
	for i, idx := range m.VIndices {
		if int(idx) >= len(m.Vertices) {
			return errors.Errorf("index %d at %d is out of range for %d vertices", idx, i, len(m.Vertices))
		}
	}
	return nil
}
