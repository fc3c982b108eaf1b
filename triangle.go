package closest

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateTol is the relative size of the Gram determinant below which a
// triangle is treated as having no area.
const degenerateTol = 1e-12

// Triangle3 is a 3D triangle.
type Triangle3 [3]r3.Vec

// Normal returns the unit normal of the triangle using the right hand rule.
// Degenerate triangles have no normal and return the zero vector.
func (t Triangle3) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
	l := r3.Norm(n)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}

// Area returns the area of the triangle.
func (t Triangle3) Area() float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0])))
}

// Centroid returns the arithmetic mean of the triangle's vertices.
func (t Triangle3) Centroid() r3.Vec {
	return r3.Scale(1./3., r3.Add(r3.Add(t[0], t[1]), t[2]))
}

// Degenerate returns true if two of the triangle's vertices are within tol
// of each other or all three are collinear.
func (t Triangle3) Degenerate(tol float64) bool {
	e0 := r3.Sub(t[1], t[0])
	e1 := r3.Sub(t[2], t[0])
	a00, a01, a11 := r3.Dot(e0, e0), r3.Dot(e0, e1), r3.Dot(e1, e1)
	tol2 := tol * tol
	if a00 <= tol2 || a11 <= tol2 || r3.Norm2(r3.Sub(t[2], t[1])) <= tol2 {
		return true
	}
	return a00*a11-a01*a01 <= degenerateTol*a00*a11
}

// Closest returns the point on the filled triangle closest to p.
func (t Triangle3) Closest(p r3.Vec) r3.Vec {
	return ClosestOnTriangle(p, t[0], t[1], t[2])
}

// ClosestOnTriangle returns the point on the filled triangle (v0, v1, v2)
// closest to p under Euclidean distance. Vertices are returned exactly
// when they are the answer.
//
// Triangles with zero area are handled as the union of their three edges.
//
// Reference:
//   - Distance Between Point and Triangle in 3D
//     David Eberly, Geometric Tools, Redmond WA 98052
//     https://www.geometrictools.com/Documentation/DistancePoint3Triangle3.pdf
func ClosestOnTriangle(p, v0, v1, v2 r3.Vec) r3.Vec {
	s, t, ok := triangleParams(p, v0, v1, v2)
	if !ok {
		return closestOnEdges(p, v0, v1, v2)
	}
	switch {
	case s == 0 && t == 0:
		return v0
	case s == 1:
		return v1
	case t == 1:
		return v2
	}
	e0 := r3.Sub(v1, v0)
	e1 := r3.Sub(v2, v0)
	return r3.Add(v0, r3.Add(r3.Scale(s, e0), r3.Scale(t, e1)))
}

// triangleParams returns the parameters (s, t) of the closest point
// v0 + s*(v1-v0) + t*(v2-v0) to p with s,t >= 0 and s+t <= 1.
// ok is false for triangles with no area.
//
// The (s,t) plane is split into 7 regions around the triangle:
//
//	     t
//	 \ 2 |
//	  \  |
//	   \ |
//	    \|
//	     \
//	     |\
//	  3  | \  1
//	     | 0 \
//	     |    \
//	 ----+-----\---- s
//	  4  |  5   \ 6
//
// Region 0 is the interior where the unconstrained minimum is the answer.
// The other regions clamp onto a vertex or edge.
func triangleParams(p, v0, v1, v2 r3.Vec) (s, t float64, ok bool) {
	d := r3.Sub(p, v0)
	e0 := r3.Sub(v1, v0)
	e1 := r3.Sub(v2, v0)
	a00 := r3.Dot(e0, e0)
	a01 := r3.Dot(e0, e1)
	a11 := r3.Dot(e1, e1)
	b0 := -r3.Dot(d, e0)
	b1 := -r3.Dot(d, e1)

	det := a00*a11 - a01*a01
	if a00 == 0 || a11 == 0 || det <= degenerateTol*a00*a11 {
		return 0, 0, false
	}
	s = a01*b1 - a11*b0
	t = a01*b0 - a00*b1

	if s+t <= det {
		switch {
		case s < 0 && t < 0: // region 4
			if b0 < 0 {
				t = 0
				s = clampRatio(-b0, a00)
			} else {
				s = 0
				t = edgeParam(b1, a11)
			}
		case s < 0: // region 3
			s = 0
			t = edgeParam(b1, a11)
		case t < 0: // region 5
			t = 0
			s = edgeParam(b0, a00)
		default: // region 0
			s /= det
			t /= det
		}
		return s, t, true
	}

	// Edge v1-v2 is parametrized by s with t = 1-s.
	denom := a00 - 2*a01 + a11
	switch {
	case s < 0: // region 2
		tmp0 := a01 + b0
		tmp1 := a11 + b1
		if tmp1 > tmp0 {
			s = clampRatio(tmp1-tmp0, denom)
			t = 1 - s
		} else {
			s = 0
			if tmp1 <= 0 {
				t = 1
			} else {
				t = edgeParam(b1, a11)
			}
		}
	case t < 0: // region 6
		tmp0 := a01 + b1
		tmp1 := a00 + b0
		if tmp1 > tmp0 {
			t = clampRatio(tmp1-tmp0, denom)
			s = 1 - t
		} else {
			t = 0
			if tmp1 <= 0 {
				s = 1
			} else {
				s = edgeParam(b0, a00)
			}
		}
	default: // region 1
		numer := a11 + b1 - a01 - b0
		if numer <= 0 {
			s = 0
		} else {
			s = clampRatio(numer, denom)
		}
		t = 1 - s
	}
	return s, t, true
}

// edgeParam minimizes the squared distance along an edge starting
// at v0 given b = -dot(p-v0, edge) and a = dot(edge, edge).
func edgeParam(b, a float64) float64 {
	if b >= 0 {
		return 0
	}
	return clampRatio(-b, a)
}

// clampRatio returns numer/denom for a non-negative numer, clamped to 1.
func clampRatio(numer, denom float64) float64 {
	if numer >= denom {
		return 1
	}
	return numer / denom
}

// closestOnEdges returns the closest point to p over the three edges of a
// triangle. Used for triangles with no area where the closed triangle
// is a segment or a single point.
func closestOnEdges(p, v0, v1, v2 r3.Vec) r3.Vec {
	best := v0
	bestDist2 := math.Inf(1)
	for _, edge := range [3][2]r3.Vec{{v0, v1}, {v1, v2}, {v2, v0}} {
		c := closestOnSegment(p, edge[0], edge[1])
		if d2 := r3.Norm2(r3.Sub(p, c)); d2 < bestDist2 {
			best, bestDist2 = c, d2
		}
	}
	return best
}

func closestOnSegment(p, a, b r3.Vec) r3.Vec {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 == 0 {
		return a
	}
	t := r3.Dot(r3.Sub(p, a), ab) / l2
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	return r3.Add(a, r3.Scale(t, ab))
}
