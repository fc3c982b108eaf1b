package closest

import (
	"errors"
	"fmt"

	"github.com/soypat/closest/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrTriangleIndexCount is returned when a mesh's triangle index list
	// length is not a multiple of 3.
	ErrTriangleIndexCount = errors.New("triangle index count not a multiple of 3")
	// ErrVertexIndexRange is returned when a triangle references a vertex
	// that does not exist.
	ErrVertexIndexRange = errors.New("triangle vertex index out of range")
)

// Vertex is a mesh vertex. Normal is carried along for callers that render
// the mesh and is not used by queries.
type Vertex struct {
	Pos    r3.Vec
	Normal r3.Vec
}

// Mesh is an indexed triangle mesh. Triangles holds three vertex indices
// per triangle, flattened. A Mesh must not be modified once handed to NewQuery.
type Mesh struct {
	Vertices  []Vertex
	Triangles []uint32
}

// MeshFromPositions builds a Mesh with zero normals.
func MeshFromPositions(positions []r3.Vec, triangles []uint32) Mesh {
	m := Mesh{
		Vertices:  make([]Vertex, len(positions)),
		Triangles: triangles,
	}
	for i := range positions {
		m.Vertices[i].Pos = positions[i]
	}
	return m
}

// Validate checks the index list describes whole triangles and
// that every index refers to an existing vertex.
func (m Mesh) Validate() error {
	if len(m.Triangles)%3 != 0 {
		return fmt.Errorf("%d indices: %w", len(m.Triangles), ErrTriangleIndexCount)
	}
	nv := uint64(len(m.Vertices))
	for i, vi := range m.Triangles {
		if uint64(vi) >= nv {
			return fmt.Errorf("triangle %d corner %d references vertex %d of %d: %w", i/3, i%3, vi, nv, ErrVertexIndexRange)
		}
	}
	return nil
}

// TriangleCount returns the number of triangles in the mesh.
func (m Mesh) TriangleCount() int { return len(m.Triangles) / 3 }

// Triangle returns the corner positions of the ith triangle.
func (m Mesh) Triangle(i int) Triangle3 {
	base := 3 * i
	return Triangle3{
		m.Vertices[m.Triangles[base]].Pos,
		m.Vertices[m.Triangles[base+1]].Pos,
		m.Vertices[m.Triangles[base+2]].Pos,
	}
}

// Bounds returns the bounding box of all vertices referenced by triangles.
// Unreferenced vertices do not contribute.
func (m Mesh) Bounds() r3.Box {
	return r3.Box(m.bounds())
}

func (m Mesh) bounds() d3.Box {
	bb := d3.EmptyBox()
	for _, vi := range m.Triangles {
		bb = bb.Include(m.Vertices[vi].Pos)
	}
	return bb
}
