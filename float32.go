package closest

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

// MeshFromFloat32 builds a Mesh from single precision vertex data as
// uploaded to the GPU. normals may be nil or must have the same
// length as positions.
func MeshFromFloat32(positions, normals []ms3.Vec, triangles []uint32) Mesh {
	if normals != nil && len(normals) != len(positions) {
		panic("normals and positions length mismatch")
	}
	m := Mesh{
		Vertices:  make([]Vertex, len(positions)),
		Triangles: triangles,
	}
	for i := range positions {
		m.Vertices[i].Pos = r3From32(positions[i])
		if normals != nil {
			m.Vertices[i].Normal = r3From32(normals[i])
		}
	}
	return m
}

// ClosestPoint32 is the single precision variant of ClosestPoint for render
// loops working with GPU vertex types. A query point with NaN or infinite
// components has no closest point.
func (q *Query) ClosestPoint32(p ms3.Vec, maxDist float32) (ms3.Vec, bool) {
	checkMaxDist(float64(maxDist))
	if bad32(p) {
		return ms3.Vec{}, false
	}
	got, ok := q.ClosestPoint(r3From32(p), float64(maxDist))
	if !ok {
		return ms3.Vec{}, false
	}
	return ms3.Vec{X: float32(got.X), Y: float32(got.Y), Z: float32(got.Z)}, true
}

func r3From32(v ms3.Vec) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func bad32(v ms3.Vec) bool {
	return math32.IsNaN(v.X) || math32.IsInf(v.X, 0) ||
		math32.IsNaN(v.Y) || math32.IsInf(v.Y, 0) ||
		math32.IsNaN(v.Z) || math32.IsInf(v.Z, 0)
}
