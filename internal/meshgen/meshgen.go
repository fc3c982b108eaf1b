// Package meshgen generates procedural meshes for tests and benchmarks.
package meshgen

import (
	"math/rand"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/closest"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sphere returns an icosphere of the given radius centered at the origin.
// Each level of detail quadruples the triangle count of the icosahedron.
func Sphere(detail int, radius float64) closest.Mesh {
	m := fauxgl.NewSphere(detail)
	m.Transform(fauxgl.Scale(fauxgl.V(radius, radius, radius)))
	return FromFauxgl(m)
}

// NoisySphere returns an icosphere whose vertices are displaced radially by
// up to amplitude, giving uneven triangle sizes and orientations.
func NoisySphere(detail int, radius, amplitude float64, seed int64) closest.Mesh {
	m := Sphere(detail, radius)
	rng := rand.New(rand.NewSource(seed))
	for i := range m.Vertices {
		v := &m.Vertices[i]
		scale := 1 + amplitude*(2*rng.Float64()-1)/radius
		v.Pos = r3.Scale(scale, v.Pos)
	}
	return m
}

// Cube returns an axis aligned cube of the given side centered at the origin.
func Cube(side float64) closest.Mesh {
	m := fauxgl.NewCube()
	m.BiUnitCube()
	half := side / 2
	m.Transform(fauxgl.Scale(fauxgl.V(half, half, half)))
	return FromFauxgl(m)
}

// FromFauxgl converts a triangle soup to an indexed mesh, merging
// vertices with identical positions. The first normal seen for a
// position is kept.
func FromFauxgl(fm *fauxgl.Mesh) closest.Mesh {
	var m closest.Mesh
	cache := make(map[fauxgl.Vector]uint32)
	add := func(v fauxgl.Vertex) uint32 {
		if idx, ok := cache[v.Position]; ok {
			return idx
		}
		idx := uint32(len(m.Vertices))
		cache[v.Position] = idx
		m.Vertices = append(m.Vertices, closest.Vertex{
			Pos:    r3Vec(v.Position),
			Normal: r3Vec(v.Normal),
		})
		return idx
	}
	m.Triangles = make([]uint32, 0, 3*len(fm.Triangles))
	for _, t := range fm.Triangles {
		m.Triangles = append(m.Triangles, add(t.V1), add(t.V2), add(t.V3))
	}
	return m
}

// RandomInShell returns n points at distances in [rmin, rmax) from the origin,
// uniformly distributed in direction.
func RandomInShell(n int, rmin, rmax float64, seed int64) []r3.Vec {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]r3.Vec, n)
	for i := range pts {
		var dir r3.Vec
		for r3.Norm2(dir) < 1e-6 {
			dir = r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		}
		r := rmin + (rmax-rmin)*rng.Float64()
		pts[i] = r3.Scale(r, r3.Unit(dir))
	}
	return pts
}

func r3Vec(v fauxgl.Vector) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}
