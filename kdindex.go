package closest

import (
	"sort"

	"github.com/soypat/closest/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ kdtree.Interface  = samples{}
	_ kdtree.Bounder    = samples{}
	_ kdtree.Comparable = (*sample)(nil)
)

// Neighbor is a sample point returned by a k-nearest search.
type Neighbor struct {
	// Index of the sample in the PointCloud.
	Index int
	// Dist2 is the squared distance from the query point to the sample.
	Dist2 float64
}

// kdIndex is a static k-d tree over the samples of a PointCloud.
// It is never modified after newKDIndex returns.
type kdIndex struct {
	tree *kdtree.Tree
	// nodes backs the tree's Comparables. kdtree.New reorders it
	// in place which is why it is a copy of the cloud's points.
	nodes samples
}

// newKDIndex builds a balanced k-d tree over every sample in pc.
func newKDIndex(pc *PointCloud) *kdIndex {
	ix := &kdIndex{nodes: make(samples, pc.Len())}
	if len(ix.nodes) == 0 {
		return ix
	}
	for i := range ix.nodes {
		ix.nodes[i] = sample{pos: pc.Point(i), idx: i}
	}
	ix.tree = kdtree.New(ix.nodes, true)
	return ix
}

// Len returns the number of indexed samples.
func (ix *kdIndex) Len() int { return len(ix.nodes) }

// NearestK returns the k samples nearest to p ordered by ascending squared
// distance. Fewer than k are returned when the index holds fewer samples.
func (ix *kdIndex) NearestK(p r3.Vec, k int) []Neighbor {
	if k <= 0 || ix.tree == nil {
		return nil
	}
	keep := kdtree.NewNKeeper(k)
	ix.tree.NearestSet(keep, &sample{pos: p, idx: -1})
	got := make([]Neighbor, 0, len(keep.Heap))
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			// Sentinel left in place when there are fewer than k samples.
			continue
		}
		got = append(got, Neighbor{Index: c.Comparable.(*sample).idx, Dist2: c.Dist})
	}
	sort.Slice(got, func(i, j int) bool {
		if got[i].Dist2 == got[j].Dist2 {
			return got[i].Index < got[j].Index
		}
		return got[i].Dist2 < got[j].Dist2
	})
	return got
}

// sample is a kdtree.Comparable point remembering its position in the cloud.
type sample struct {
	pos r3.Vec
	idx int
}

// Compare returns the signed distance of s from the plane passing through
// c and perpendicular to the dimension d.
func (s *sample) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*sample)
	return d3.Component(s.pos, int(d)) - d3.Component(q.pos, int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (s *sample) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (s *sample) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(s.pos, c.(*sample).pos))
}

type samples []sample

// Index returns the ith element of the list of points.
func (s samples) Index(i int) kdtree.Comparable { return &s[i] }

// Len returns the length of the list.
func (s samples) Len() int { return len(s) }

// Pivot partitions the list based on the dimension specified.
func (s samples) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), samples: s}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (s samples) Slice(start, end int) kdtree.Interface { return s[start:end] }

// Bounds implements the kdtree.Bounder interface and expects
// a calculation based on current samples which may be modified
// by kdtree.New()
func (s samples) Bounds() *kdtree.Bounding {
	bb := d3.EmptyBox()
	for i := range s {
		bb = bb.Include(s[i].pos)
	}
	return &kdtree.Bounding{
		Min: &sample{pos: bb.Min, idx: -1},
		Max: &sample{pos: bb.Max, idx: -1},
	}
}

type kdPlane struct {
	dim     int
	samples samples
}

func (p kdPlane) Less(i, j int) bool {
	return d3.Component(p.samples[i].pos, p.dim) < d3.Component(p.samples[j].pos, p.dim)
}
func (p kdPlane) Swap(i, j int) {
	p.samples[i], p.samples[j] = p.samples[j], p.samples[i]
}
func (p kdPlane) Len() int {
	return len(p.samples)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.samples = p.samples[start:end]
	return p
}
