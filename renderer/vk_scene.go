package renderer

import (
	"log"
	"path/filepath"
	"strings"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	"vulkan_mesh_demo/model"
	"vulkan_mesh_demo/stl"
)

// Built in meshes that can be named in place of a file path.
const (
	MeshCube  = "cube"
	MeshPlane = "plane"
)

// LoadModel resolves the configured mesh: an empty name or a built in name, otherwise a mesh file.
func LoadModel(path string) (*model.Model, error) {
	switch strings.ToLower(path) {
	case "", MeshCube:
		return model.NewCubeModel(MeshCube), nil
	case MeshPlane:
		return model.NewGridPlane(MeshPlane), nil
	}
	mesh, err := LoadMesh(path)
	if err != nil {
		return nil, err
	}
	return model.NewModel(mesh, filepath.Base(path)), nil
}

// LoadMesh reads a '.obj' or '.stl' file.
func LoadMesh(path string) (*model.Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return model.LoadObj(path)
	case ".stl":
		return stl.ReadStlFile(path)
	}
	return nil, errors.Errorf("unsupported mesh format '%s'", path)
}

func (c *Core) createModel() {
	m, err := LoadModel(c.cfg.Mesh)
	if err != nil {
		log.Panicf("Failed to load mesh: %+v", err)
	}
	if err := c.AddToScene(m); err != nil {
		log.Panicf("Failed to upload mesh '%s': %+v", m.Name, err)
	}
	c.model = m
}

// AddToScene uploads the vertices and indices of m into device local buffers.
func (c *Core) AddToScene(m *model.Model) error {
	vertBuf, err := c.uploadBuffer(m.GetVBufferBytes(), vk.BufferUsageVertexBufferBit)
	if err != nil {
		return errors.Wrap(err, "vertex buffer")
	}
	idxBuf, err := c.uploadBuffer(m.GetIdxBufferBytes(), vk.BufferUsageIndexBufferBit)
	if err != nil {
		vertBuf.Destroy(c.device)
		return errors.Wrap(err, "index buffer")
	}
	m.VertexBuffer = vertBuf
	m.IndexBuffer = idxBuf
	log.Printf(
		"Created buffers for \"%s\": vertices %d Byte, indices %d Byte",
		m.Name, m.GetVBufferSize(), m.GetIdxBufferSize(),
	)
	return nil
}
