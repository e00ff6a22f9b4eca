package model

import "github.com/go-gl/mathgl/mgl32"

// NewCubeMesh returns a unit cube centred at the origin. Corners share vertices, so the texture is
// mirrored on every other face.
func NewCubeMesh() *Mesh {
	v := []Vertex{ // 8 * 32 = 256 Byte
		{Pos: mgl32.Vec3{-0.5, -0.5, -0.5}, Color: mgl32.Vec3{1, 0, 0}, TexCoord: mgl32.Vec2{1, 1}},     // [0]
		{Pos: mgl32.Vec3{0.5, -0.5, -0.5}, Color: mgl32.Vec3{0, 1, 0}, TexCoord: mgl32.Vec2{0, 1}},      // [1]
		{Pos: mgl32.Vec3{0.5, 0.5, -0.5}, Color: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{0, 0}},       // [2]
		{Pos: mgl32.Vec3{-0.5, 0.5, -0.5}, Color: mgl32.Vec3{1, 0.5, 1}, TexCoord: mgl32.Vec2{1, 0}},    // [3]
		{Pos: mgl32.Vec3{-0.5, -0.5, 0.5}, Color: mgl32.Vec3{1, 0.5, 0.5}, TexCoord: mgl32.Vec2{1, 1}},  // [4]
		{Pos: mgl32.Vec3{0.5, -0.5, 0.5}, Color: mgl32.Vec3{0.5, 1, 0.5}, TexCoord: mgl32.Vec2{0, 1}},   // [5]
		{Pos: mgl32.Vec3{0.5, 0.5, 0.5}, Color: mgl32.Vec3{0.5, 0.5, 1}, TexCoord: mgl32.Vec2{0, 0}},    // [6]
		{Pos: mgl32.Vec3{-0.5, 0.5, 0.5}, Color: mgl32.Vec3{0, 0.5, 0}, TexCoord: mgl32.Vec2{1, 0}},     // [7]
	}

	id := []uint32{
		2, 1, 0, 0, 3, 2, // front
		5, 1, 6, 1, 2, 6, // right
		4, 5, 6, 7, 4, 6, // back
		4, 7, 0, 0, 7, 3, // left
		0, 1, 5, 5, 4, 0, // top
		3, 7, 6, 2, 3, 6, // bottom
	}

	return NewMesh(v, id)
}

func NewCubeModel(name string) *Model {
	return NewModel(NewCubeMesh(), name)
}
