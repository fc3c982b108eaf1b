package closest

import (
	"fmt"
	"math"
	"time"

	"github.com/soypat/closest/internal/d3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// Query answers closest point on mesh queries. It is immutable once
// NewQuery returns and is safe for concurrent use by multiple goroutines.
type Query struct {
	mesh  Mesh
	cloud *PointCloud
	index *kdIndex
	bb    d3.Box
	cfg   Config
	log   *zap.Logger
}

// Result is the outcome of a successful query.
type Result struct {
	// Point is the closest point on the mesh surface.
	Point r3.Vec
	// Triangle is the index of the mesh triangle Point lies on.
	Triangle int
	// Dist2 is the squared distance from the query point to Point.
	Dist2 float64
}

// Option modifies how NewQuery builds a Query.
type Option func(*Query)

// WithLogger sets the logger used to report build statistics.
func WithLogger(log *zap.Logger) Option {
	return func(q *Query) {
		if log != nil {
			q.log = log
		}
	}
}

// NewQuery validates m and cfg and builds the corner sample cloud and
// spatial index used to answer queries. m must not be modified afterwards.
func NewQuery(m Mesh, cfg Config, opts ...Option) (*Query, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mesh: %w", err)
	}
	q := &Query{
		mesh: m,
		cfg:  cfg,
		log:  zap.NewNop(),
		bb:   m.bounds(),
	}
	for _, opt := range opts {
		opt(q)
	}

	start := time.Now()
	q.cloud = NewPointCloud(m)
	q.log.Debug("built mesh point cloud",
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", m.TriangleCount()),
		zap.Int("points", q.cloud.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)

	start = time.Now()
	q.index = newKDIndex(q.cloud)
	q.log.Debug("built mesh query tree",
		zap.Int("points", q.index.Len()),
		zap.Int("k", cfg.K),
		zap.Duration("elapsed", time.Since(start)),
	)
	return q, nil
}

// ClosestPoint returns the point on the mesh closest to p if it lies within
// maxDist of p, boundary included. The second return value is false when
// no such point exists, which includes query points with NaN or infinite
// components. It panics if maxDist is not positive.
//
// Only triangles owning one of the K nearest corner samples are examined
// on meshes above Config.ExhaustiveBelow triangles, see Config.K.
func (q *Query) ClosestPoint(p r3.Vec, maxDist float64) (r3.Vec, bool) {
	res, ok := q.Nearest(p, maxDist)
	return res.Point, ok
}

// Nearest is like ClosestPoint but also reports the triangle
// and squared distance of the result.
func (q *Query) Nearest(p r3.Vec, maxDist float64) (Result, bool) {
	checkMaxDist(maxDist)
	maxDist2 := maxDist * maxDist
	if q.cloud.Len() == 0 || !d3.Finite(p) || q.bb.Dist2(p) > maxDist2 {
		return Result{}, false
	}
	if q.cloud.TriangleCount() <= q.cfg.ExhaustiveBelow {
		return q.exhaustive(p, maxDist2)
	}
	neighbors := q.index.NearestK(p, q.cfg.K)
	var visited []int
	if q.cfg.Dedupe {
		visited = make([]int, 0, len(neighbors))
	}
	best := Result{Triangle: -1, Dist2: math.Inf(1)}
nextNeighbor:
	for _, nb := range neighbors {
		k := q.cloud.TriangleIndex(nb.Index)
		if q.cfg.Dedupe {
			for _, v := range visited {
				if v == k {
					continue nextNeighbor
				}
			}
			visited = append(visited, k)
		}
		best = q.project(best, p, k, maxDist2)
	}
	return best, best.Triangle >= 0
}

// ClosestPointExhaustive is like ClosestPoint but projects p onto every
// triangle of the mesh. The result is exact at O(n) cost.
func (q *Query) ClosestPointExhaustive(p r3.Vec, maxDist float64) (r3.Vec, bool) {
	checkMaxDist(maxDist)
	res, ok := q.exhaustive(p, maxDist*maxDist)
	return res.Point, ok
}

func (q *Query) exhaustive(p r3.Vec, maxDist2 float64) (Result, bool) {
	best := Result{Triangle: -1, Dist2: math.Inf(1)}
	for k := 0; k < q.cloud.TriangleCount(); k++ {
		best = q.project(best, p, k, maxDist2)
	}
	return best, best.Triangle >= 0
}

// project returns the better of best and the projection of p onto triangle k.
// Ties keep best.
func (q *Query) project(best Result, p r3.Vec, k int, maxDist2 float64) Result {
	onTri := q.cloud.triangle(k).Closest(p)
	d2 := r3.Norm2(r3.Sub(p, onTri))
	if d2 <= maxDist2 && d2 < best.Dist2 {
		return Result{Point: onTri, Triangle: k, Dist2: d2}
	}
	return best
}

// K returns the number of nearest samples examined per query.
func (q *Query) K() int { return q.cfg.K }

// Config returns the configuration the Query was built with.
func (q *Query) Config() Config { return q.cfg }

// Mesh returns the mesh the Query was built from.
func (q *Query) Mesh() Mesh { return q.mesh }

// Bounds returns the bounding box of the mesh's triangles.
func (q *Query) Bounds() r3.Box { return r3.Box(q.bb) }

func checkMaxDist(maxDist float64) {
	if !(maxDist > 0) {
		panic(fmt.Sprintf("closest: maximum search distance must be positive, got %g", maxDist))
	}
}
