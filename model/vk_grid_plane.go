package model

import "github.com/go-gl/mathgl/mgl32"

// NewPlaneMesh returns a 2x2 quad in the z = 0 plane with the full texture mapped onto it.
func NewPlaneMesh() *Mesh {
	v := []Vertex{
		{Pos: mgl32.Vec3{-1, -1, 0}, Color: mgl32.Vec3{1, 1, 1}, TexCoord: mgl32.Vec2{0, 1}}, // [0]
		{Pos: mgl32.Vec3{-1, 1, 0}, Color: mgl32.Vec3{1, 1, 1}, TexCoord: mgl32.Vec2{0, 0}},  // [1]
		{Pos: mgl32.Vec3{1, 1, 0}, Color: mgl32.Vec3{1, 1, 1}, TexCoord: mgl32.Vec2{1, 0}},   // [2]
		{Pos: mgl32.Vec3{1, -1, 0}, Color: mgl32.Vec3{1, 1, 1}, TexCoord: mgl32.Vec2{1, 1}},  // [3]
	}

	id := []uint32{
		0, 1, 2,
		2, 3, 0,
	}

	return NewMesh(v, id)
}

func NewGridPlane(name string) *Model {
	return NewModel(NewPlaneMesh(), name)
}
