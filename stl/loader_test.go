package stl

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(triangles [][4]mgl32.Vec3) []byte {
	b := make([]byte, headerSize+countSize, headerSize+countSize+len(triangles)*triangleSize)
	copy(b, "test header")
	binary.LittleEndian.PutUint32(b[headerSize:], uint32(len(triangles)))
	for _, tri := range triangles {
		for _, vec := range tri {
			for _, f := range vec {
				b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
			}
		}
		b = append(b, 0, 0)
	}
	return b
}

func TestDecode(t *testing.T) {
	data := encode([][4]mgl32.Vec3{
		{{0, 0, -1}, {0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, 1}, {1, 1, 0}, {2, 1, 0}, {1, 2, 0}},
	})

	m, err := Decode(data)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Len(t, m.Vertices, 6)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, m.VIndices)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, m.Vertices[1].Pos)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, m.Vertices[0].Color)
	assert.Equal(t, mgl32.Vec2{1, 2}, m.Vertices[5].TexCoord)
}

func TestDecodeRejectsBrokenData(t *testing.T) {
	valid := encode([][4]mgl32.Vec3{{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {0, 1, 0}}})

	tests := map[string][]byte{
		"short header": valid[:50],
		"truncated":    valid[:len(valid)-10],
		"no triangles": encode(nil),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			assert.Error(t, err)
		})
	}
}

func TestReadStlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.stl")
	require.NoError(t, os.WriteFile(path, encode([][4]mgl32.Vec3{{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {0, 1, 0}}}), 0o644))

	m, err := ReadStlFile(path)
	require.NoError(t, err)
	assert.Len(t, m.VIndices, 3)

	_, err = ReadStlFile(filepath.Join(t.TempDir(), "missing.stl"))
	assert.Error(t, err)
}
