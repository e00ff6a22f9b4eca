package stl

import (
	"encoding/binary"
	"log"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"vulkan_mesh_demo/model"
)

const (
	headerSize   = 80
	countSize    = 4
	triangleSize = 50 // normal, 3 corners, attribute byte count
)

// ReadStlFile loads a binary STL file.
func ReadStlFile(path string) (*model.Mesh, error) {
	log.Printf("Reading stl file %s", path)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read stl file %s", path)
	}
	m, err := Decode(b)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode stl file %s", path)
	}
	log.Printf("Successfully read stl file, Triangle Count: %d, Triangle memory size: %d KiB", len(m.VIndices)/3, len(b[headerSize:])/1024)
	return m, nil
}

// Decode parses binary STL data. The facet normal is mapped to the vertex color, texture
// coordinates are projected from the x and y position.
func Decode(b []byte) (*model.Mesh, error) {
	if len(b) < headerSize+countSize {
		return nil, errors.Errorf("stl data too short: %d bytes", len(b))
	}
	tCnt := binary.LittleEndian.Uint32(b[headerSize : headerSize+countSize])
	body := b[headerSize+countSize:]
	if uint64(len(body)) < uint64(tCnt)*triangleSize {
		return nil, errors.Errorf("stl header announces %d triangles but only %d bytes follow", tCnt, len(body))
	}
	if tCnt == 0 {
		return nil, errors.New("stl file contains no triangles")
	}
	return toMesh(body, tCnt), nil
}

func toMesh(bytes []byte, triangleCnt uint32) *model.Mesh {
	v := make([]model.Vertex, 0, triangleCnt*3)
	id := make([]uint32, 0, triangleCnt*3)

	for t := 0; t < int(triangleCnt); t++ {
		i := t * triangleSize
		normal := toVec3(bytes[i : i+12])
		color := mgl32.Vec3{abs(normal.X()), abs(normal.Y()), abs(normal.Z())}
		for c := 0; c < 3; c++ {
			off := i + 12 + c*12
			pos := toVec3(bytes[off : off+12])
			id = append(id, uint32(len(v)))
			v = append(v, model.Vertex{
				Pos:      pos,
				Color:    color,
				TexCoord: mgl32.Vec2{pos.X(), pos.Y()},
			})
		}
	}

	return model.NewMesh(v, id)
}

func toVec3(bytes []byte) mgl32.Vec3 {
	return mgl32.Vec3{
		toFloat32(bytes[:4]),
		toFloat32(bytes[4:8]),
		toFloat32(bytes[8:12]),
	}
}

func toFloat32(bytes []byte) float32 {
	bits := binary.LittleEndian.Uint32(bytes)
	return math.Float32frombits(bits)
}

func abs(f float32) float32 {
	return float32(math.Abs(float64(f)))
}
