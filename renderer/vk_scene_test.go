package renderer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadModelBuiltins(t *testing.T) {
	for _, name := range []string{"", "cube", "CUBE"} {
		m, err := LoadModel(name)
		require.NoError(t, err, name)
		assert.Equal(t, MeshCube, m.Name, name)
		assert.Equal(t, uint32(36), m.IndexCount(), name)
	}
	m, err := LoadModel("plane")
	require.NoError(t, err)
	assert.Equal(t, MeshPlane, m.Name)
	assert.Equal(t, uint32(6), m.IndexCount())
}

func TestLoadModelFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.obj")
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	m, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, "tri.obj", m.Name)
	assert.Equal(t, uint32(3), m.IndexCount())

	_, err = LoadModel("cube.fbx")
	assert.Error(t, err)
}

func TestLoadMeshFromObjFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.OBJ")
	src := "o tri\nv 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nf 1/1 2/2 3/3\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	m, err := LoadMesh(path)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, m.VIndices)
}

func TestLoadMeshErrors(t *testing.T) {
	_, err := LoadMesh("model.fbx")
	assert.Error(t, err)

	_, err = LoadMesh("cube")
	assert.Error(t, err, "built in names are resolved by LoadModel")

	_, err = LoadMesh(filepath.Join(t.TempDir(), "missing.obj"))
	assert.Error(t, err)
}
