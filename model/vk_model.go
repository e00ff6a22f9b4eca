package model

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"vulkan_mesh_demo/common"
)

// Model ties a Mesh to the device buffers it was uploaded to.
type Model struct {
	Mesh         *Mesh
	Name         string
	VertexBuffer *common.Buffer
	IndexBuffer  *common.Buffer
}

func NewModel(m *Mesh, n string) *Model {
	return &Model{
		Name: n,
		Mesh: m,
	}
}

// GetVBufferSize returns the size required for keeping the vertices in device memory.
func (m *Model) GetVBufferSize() vk.DeviceSize {
	return vk.DeviceSize(SizeOfVertex * len(m.Mesh.Vertices))
}

// GetVBufferBytes returns the raw bytes representing all vertices for this model.
// Mainly used to execute vk.Memcopy(..., src []byte) to move memory from CPU to GPU
func (m *Model) GetVBufferBytes() []byte {
	return common.RawBytes(m.Mesh.Vertices)
}

func (m *Model) GetIdxBufferSize() vk.DeviceSize {
	return vk.DeviceSize(int(unsafe.Sizeof(uint32(0))) * len(m.Mesh.VIndices))
}

func (m *Model) GetIdxBufferBytes() []byte {
	return common.RawBytes(m.Mesh.VIndices)
}

// IndexCount is the number of indices drawn per frame.
func (m *Model) IndexCount() uint32 {
	return uint32(len(m.Mesh.VIndices))
}

// Destroy frees the device buffers, the Mesh stays usable.
func (m *Model) Destroy(dc *common.Device) {
	if m.VertexBuffer != nil {
		m.VertexBuffer.Destroy(dc)
		m.VertexBuffer = nil
	}
	if m.IndexBuffer != nil {
		m.IndexBuffer.Destroy(dc)
		m.IndexBuffer = nil
	}
}
