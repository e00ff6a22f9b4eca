package model

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

type objKey struct {
	pos int
	uv  int
}

// LoadObj reads a Wavefront OBJ file. Materials are ignored, the texture is bound separately.
func LoadObj(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open mesh %s", path)
	}
	defer f.Close()

	m, err := DecodeObj(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode mesh %s", path)
	}
	log.Printf("Loaded %s: %d vertices, %d indices", path, len(m.Vertices), len(m.VIndices))
	return m, nil
}

// DecodeObj triangulates every face as a fan and merges corners that share position and texture
// coordinate. The v axis is flipped to match Vulkan's top-left texture origin.
func DecodeObj(r io.Reader) (*Mesh, error) {
	decoder, err := obj.DecodeReader(r, strings.NewReader(""))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse obj")
	}

	var vertices []Vertex
	var indices []uint32
	unique := map[objKey]uint32{}

	addVertex := func(face *obj.Face, i int) error {
		vi := face.Vertices[i]
		if vi < 0 || vi*3+2 >= len(decoder.Vertices) {
			return errors.Errorf("vertex index %d out of range", vi)
		}
		key := objKey{pos: vi, uv: -1}
		if i < len(face.Uvs) && face.Uvs[i] >= 0 && face.Uvs[i]*2+1 < len(decoder.Uvs) {
			key.uv = face.Uvs[i]
		}
		if idx, ok := unique[key]; ok {
			indices = append(indices, idx)
			return nil
		}

		v := Vertex{
			Pos: mgl32.Vec3{
				decoder.Vertices[vi*3],
				decoder.Vertices[vi*3+1],
				decoder.Vertices[vi*3+2],
			},
			Color: mgl32.Vec3{1, 1, 1},
		}
		if key.uv >= 0 {
			v.TexCoord = mgl32.Vec2{
				decoder.Uvs[key.uv*2],
				1.0 - decoder.Uvs[key.uv*2+1],
			}
		}
		idx := uint32(len(vertices))
		unique[key] = idx
		vertices = append(vertices, v)
		indices = append(indices, idx)
		return nil
	}

	for oi := range decoder.Objects {
		for fi := range decoder.Objects[oi].Faces {
			face := &decoder.Objects[oi].Faces[fi]
			for i := 2; i < len(face.Vertices); i++ {
				for _, corner := range [3]int{0, i - 1, i} {
					if err := addVertex(face, corner); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	m := NewMesh(vertices, indices)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
