package closest

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// PointCloud holds one sample point per triangle corner, in triangle order.
// Corners shared between triangles are repeated, so the sample at index i
// always belongs to triangle i/3 and the three corners of that triangle
// are stored at 3*(i/3), 3*(i/3)+1 and 3*(i/3)+2.
type PointCloud struct {
	points []r3.Vec
}

// NewPointCloud copies every triangle corner position of m. m must be valid.
func NewPointCloud(m Mesh) *PointCloud {
	pc := &PointCloud{
		points: make([]r3.Vec, len(m.Triangles)),
	}
	for i, vi := range m.Triangles {
		pc.points[i] = m.Vertices[vi].Pos
	}
	return pc
}

// Len returns the number of sample points, three per triangle.
func (pc *PointCloud) Len() int { return len(pc.points) }

// TriangleCount returns the number of triangles the cloud was sampled from.
func (pc *PointCloud) TriangleCount() int { return len(pc.points) / 3 }

// Point returns the sample point at idx.
func (pc *PointCloud) Point(idx int) r3.Vec { return pc.points[idx] }

// TriangleIndex returns the index of the triangle that owns sample idx.
func (pc *PointCloud) TriangleIndex(idx int) int { return idx / 3 }

// Triangle returns the triangle that owns sample idx. Any of the
// triangle's three sample indices return the same triangle.
func (pc *PointCloud) Triangle(idx int) Triangle3 {
	return pc.triangle(idx / 3)
}

// triangle returns the kth triangle.
func (pc *PointCloud) triangle(k int) Triangle3 {
	base := 3 * k
	return Triangle3{pc.points[base], pc.points[base+1], pc.points[base+2]}
}
