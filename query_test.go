package closest_test

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/soypat/closest"
	"github.com/soypat/closest/internal/meshgen"
	"gonum.org/v1/gonum/spatial/r3"
)

func singleTriangle() closest.Mesh {
	return closest.MeshFromPositions([]r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}, []uint32{0, 1, 2})
}

// configs returns the default configuration and one that always
// goes through the spatial index.
func configs() map[string]closest.Config {
	indexed := closest.DefaultConfig()
	indexed.ExhaustiveBelow = 0
	return map[string]closest.Config{
		"default": closest.DefaultConfig(),
		"indexed": indexed,
	}
}

func TestQueryScenarios(t *testing.T) {
	for name, cfg := range configs() {
		q, err := closest.NewQuery(singleTriangle(), cfg)
		if err != nil {
			t.Fatal(err)
		}
		for _, test := range []struct {
			p       r3.Vec
			maxDist float64
			want    r3.Vec
			found   bool
		}{
			{p: r3.Vec{X: 0.25, Y: 0.25, Z: 5}, maxDist: 10, want: r3.Vec{X: 0.25, Y: 0.25, Z: 0}, found: true},
			{p: r3.Vec{X: -1, Y: -1, Z: 0}, maxDist: 10, want: r3.Vec{X: 0, Y: 0, Z: 0}, found: true},
			{p: r3.Vec{X: 0.5, Y: 0.5, Z: 5}, maxDist: 1},
			// Boundary is inclusive.
			{p: r3.Vec{X: 0.25, Y: 0.25, Z: 5}, maxDist: 5, want: r3.Vec{X: 0.25, Y: 0.25, Z: 0}, found: true},
			{p: r3.Vec{X: 0.25, Y: 0.25, Z: 5}, maxDist: math.Nextafter(5, 0)},
			{p: r3.Vec{X: 0.2, Y: 0.3, Z: 0}, maxDist: 1e-9, want: r3.Vec{X: 0.2, Y: 0.3, Z: 0}, found: true},
		} {
			got, ok := q.ClosestPoint(test.p, test.maxDist)
			if ok != test.found || got != test.want {
				t.Errorf("%s: ClosestPoint(%v, %g) got %v %v, want %v %v",
					name, test.p, test.maxDist, got, ok, test.want, test.found)
			}
			got, ok = q.ClosestPointExhaustive(test.p, test.maxDist)
			if ok != test.found || got != test.want {
				t.Errorf("%s: ClosestPointExhaustive(%v, %g) got %v %v, want %v %v",
					name, test.p, test.maxDist, got, ok, test.want, test.found)
			}
		}
	}
}

func TestQueryEmptyMesh(t *testing.T) {
	for name, cfg := range configs() {
		q, err := closest.NewQuery(closest.Mesh{}, cfg)
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range []r3.Vec{{}, {X: 1, Y: 2, Z: 3}, {X: -1e9, Y: 0, Z: 1e9}} {
			if got, ok := q.ClosestPoint(p, math.MaxFloat64); ok {
				t.Errorf("%s: found %v on empty mesh", name, got)
			}
		}
	}
}

func TestQueryNonFinitePoint(t *testing.T) {
	for name, cfg := range configs() {
		q, err := closest.NewQuery(singleTriangle(), cfg)
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range []r3.Vec{{X: math.NaN()}, {Y: math.Inf(1)}, {Z: math.Inf(-1)}} {
			if got, ok := q.ClosestPoint(p, math.MaxFloat64); ok {
				t.Errorf("%s: found %v for %v", name, got, p)
			}
		}
	}
}

func TestQueryNearestResult(t *testing.T) {
	m := closest.MeshFromPositions([]r3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 11, Y: 0, Z: 0}, {X: 10, Y: 1, Z: 0},
	}, []uint32{0, 1, 2, 3, 4, 5})
	q, err := closest.NewQuery(m, configs()["indexed"])
	if err != nil {
		t.Fatal(err)
	}
	res, ok := q.Nearest(r3.Vec{X: 10.25, Y: 0.25, Z: 2}, 3)
	if !ok {
		t.Fatal("not found")
	}
	if res.Triangle != 1 || res.Point != (r3.Vec{X: 10.25, Y: 0.25, Z: 0}) || res.Dist2 != 4 {
		t.Errorf("got %+v", res)
	}
	if got := q.Bounds(); got.Min != (r3.Vec{}) || got.Max != (r3.Vec{X: 11, Y: 1, Z: 0}) {
		t.Errorf("bounds got %v", got)
	}
}

func TestQueryInvalidMaxDistPanics(t *testing.T) {
	q, err := closest.NewQuery(singleTriangle(), closest.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for _, maxDist := range []float64{0, -1, math.NaN(), math.Inf(-1)} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("no panic for maximum distance %g", maxDist)
				}
			}()
			q.ClosestPoint(r3.Vec{}, maxDist)
		}()
	}
}

func TestNewQueryErrors(t *testing.T) {
	tri := singleTriangle()
	_, err := closest.NewQuery(closest.Mesh{Vertices: tri.Vertices, Triangles: []uint32{0, 1, 2, 0}}, closest.DefaultConfig())
	if !errors.Is(err, closest.ErrTriangleIndexCount) {
		t.Errorf("got %v, want %v", err, closest.ErrTriangleIndexCount)
	}
	_, err = closest.NewQuery(closest.Mesh{Vertices: tri.Vertices, Triangles: []uint32{0, 1, 3}}, closest.DefaultConfig())
	if !errors.Is(err, closest.ErrVertexIndexRange) {
		t.Errorf("got %v, want %v", err, closest.ErrVertexIndexRange)
	}
	_, err = closest.NewQuery(tri, closest.Config{K: 0})
	if err == nil {
		t.Error("expected error for K=0")
	}
}

func TestQueryMatchesExhaustive(t *testing.T) {
	cfg := closest.DefaultConfig()
	cfg.K = 64
	cfg.ExhaustiveBelow = 0
	for name, m := range map[string]closest.Mesh{
		"sphere": meshgen.Sphere(3, 1),
		"noisy":  meshgen.NoisySphere(3, 1, 0.03, 1),
	} {
		q, err := closest.NewQuery(m, cfg)
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range meshgen.RandomInShell(2000, 0.9, 1.1, 2) {
			got, ok := q.Nearest(p, 0.5)
			want, wantOK := exhaustiveResult(q, p, 0.5)
			if ok != wantOK || (ok && math.Abs(got.Dist2-want) > 1e-12) {
				t.Fatalf("%s: query %v got %+v %v, exhaustive distance² %g %v", name, p, got, ok, want, wantOK)
			}
		}
	}
}

func TestQueryMonotonic(t *testing.T) {
	q, err := closest.NewQuery(meshgen.NoisySphere(2, 1, 0.05, 3), closest.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range meshgen.RandomInShell(500, 0.5, 1.5, 4) {
		small, okSmall := q.Nearest(p, 0.2)
		large, okLarge := q.Nearest(p, 0.6)
		if okSmall && (!okLarge || large != small) {
			t.Fatalf("query %v: found %+v within 0.2 but %+v %v within 0.6", p, small, large, okLarge)
		}
		again, okAgain := q.Nearest(p, 0.2)
		if again != small || okAgain != okSmall {
			t.Fatalf("query %v not repeatable", p)
		}
		if okSmall && small.Dist2 > 0.2*0.2 {
			t.Fatalf("query %v: result %+v beyond maximum distance", p, small)
		}
	}
}

func TestQueryDedupeUnchanged(t *testing.T) {
	m := meshgen.Sphere(2, 1)
	cfg := closest.DefaultConfig()
	cfg.ExhaustiveBelow = 0
	dedupe, err := closest.NewQuery(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Dedupe = false
	plain, err := closest.NewQuery(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range meshgen.RandomInShell(500, 0.7, 1.3, 5) {
		a, okA := dedupe.Nearest(p, 1)
		b, okB := plain.Nearest(p, 1)
		if a != b || okA != okB {
			t.Fatalf("query %v: dedupe %+v, without %+v", p, a, b)
		}
	}
}

func TestQueryConcurrent(t *testing.T) {
	q, err := closest.NewQuery(meshgen.Sphere(3, 1), closest.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	queries := meshgen.RandomInShell(1000, 0.8, 1.2, 6)
	want := make([]closest.Result, len(queries))
	for i, p := range queries {
		want[i], _ = q.Nearest(p, 1)
	}
	var wg sync.WaitGroup
	errs := make(chan r3.Vec, len(queries))
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(queries); i += 8 {
				got, _ := q.Nearest(queries[i], 1)
				if got != want[i] {
					errs <- queries[i]
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for p := range errs {
		t.Errorf("concurrent query %v differs from sequential", p)
	}
}

func TestQueryCubeFaces(t *testing.T) {
	q, err := closest.NewQuery(meshgen.Cube(2), configs()["indexed"])
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		// Points above the +X face project straight onto it.
		p := r3.Vec{X: 1 + rng.Float64(), Y: 1.8*rng.Float64() - 0.9, Z: 1.8*rng.Float64() - 0.9}
		got, ok := q.ClosestPoint(p, 2)
		want := r3.Vec{X: 1, Y: p.Y, Z: p.Z}
		if !ok || r3.Norm(r3.Sub(got, want)) > 1e-12 {
			t.Fatalf("query %v got %v %v, want %v", p, got, ok, want)
		}
	}
}

// exhaustiveResult returns the squared distance to the mesh by
// projecting p onto every triangle.
func exhaustiveResult(q *closest.Query, p r3.Vec, maxDist float64) (float64, bool) {
	m := q.Mesh()
	best := math.Inf(1)
	for k := 0; k < m.TriangleCount(); k++ {
		d2 := r3.Norm2(r3.Sub(p, m.Triangle(k).Closest(p)))
		best = math.Min(best, d2)
	}
	return best, best <= maxDist*maxDist
}

func BenchmarkNewQuery(b *testing.B) {
	m := meshgen.Sphere(5, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := closest.NewQuery(m, closest.DefaultConfig())
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkClosestPoint(b *testing.B) {
	m := meshgen.Sphere(5, 1)
	queries := meshgen.RandomInShell(1024, 0.8, 1.2, 1)
	for _, k := range []int{8, 32, 128} {
		cfg := closest.DefaultConfig()
		cfg.K = k
		q, err := closest.NewQuery(m, cfg)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(fmt.Sprintf("K=%d", k), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				q.ClosestPoint(queries[i%len(queries)], 0.5)
			}
		})
	}
}

func BenchmarkClosestPointExhaustive(b *testing.B) {
	q, err := closest.NewQuery(meshgen.Sphere(3, 1), closest.DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	queries := meshgen.RandomInShell(1024, 0.8, 1.2, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.ClosestPointExhaustive(queries[i%len(queries)], 0.5)
	}
}
