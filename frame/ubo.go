package frame

import (
	"bytes"
	"encoding/binary"
	"time"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformBufferObject holds the transforms bound at binding 0 of the vertex shader. Matrices are
// column major, which is what the shader expects.
type UniformBufferObject struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

// SizeOfUbo is the byte size of a UniformBufferObject on the device (3 * 64 Byte).
const SizeOfUbo = int(unsafe.Sizeof(UniformBufferObject{}))

var (
	eye    = mgl32.Vec3{2, 2, 2}
	center = mgl32.Vec3{0, 0, 0}
	up     = mgl32.Vec3{0, 0, 1}
)

// NewUniformBufferObject spins the mesh around the z-axis at 90 degree per second and views it from
// (2,2,2). The projection uses the fixed target aspect since the viewport is fitted to it.
func NewUniformBufferObject(elapsed time.Duration, aspect float32) UniformBufferObject {
	secs := float32(elapsed.Seconds())
	proj := mgl32.Perspective(mgl32.DegToRad(45), aspect, 0.1, 10)
	// Vulkan clip space has y pointing down
	proj[5] *= -1
	return UniformBufferObject{
		Model: mgl32.HomogRotate3D(secs*mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1}),
		View:  mgl32.LookAtV(eye, center, up),
		Proj:  proj,
	}
}

// Bytes returns the tightly packed little endian representation used for vk.Memcopy.
func (u *UniformBufferObject) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, SizeOfUbo))
	// writing fixed size float arrays into a bytes.Buffer cannot fail
	_ = binary.Write(buf, binary.LittleEndian, u)
	return buf.Bytes()
}
