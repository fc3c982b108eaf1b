package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/soypat/closest"
	"github.com/soypat/closest/internal/logger"
	"github.com/soypat/closest/internal/meshgen"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// benchResult holds the outcome of running all queries for a single K.
type benchResult struct {
	K int
	// Misses counts queries whose answer differs from the exhaustive search.
	Misses int
	// Found counts queries with a point within range.
	Found   int
	Queries int
	// Mean per-query latency of the indexed and exhaustive searches.
	Mean, MeanExhaustive time.Duration
}

func (r benchResult) MissRate() float64 {
	if r.Queries == 0 {
		return 0
	}
	return float64(r.Misses) / float64(r.Queries)
}

func runBench(cmd *cobra.Command, args []string) error {
	log := logger.New(flagLogLevel, flagLogFile)
	defer log.Sync()

	cfg := closest.DefaultConfig()
	if flagConfig != "" {
		var err error
		cfg, err = closest.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
	}
	ks := flagKs
	if len(ks) == 0 {
		ks = []int{cfg.K}
	}
	if flagQueries <= 0 {
		return errors.New("need at least one query")
	}
	if !(flagRadius > 0) {
		return errors.New("radius must be positive")
	}

	mesh, err := buildMesh(flagMesh, flagDetail, flagSeed)
	if err != nil {
		return err
	}
	log.Info("generated mesh",
		zap.String("mesh", flagMesh),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("triangles", mesh.TriangleCount()),
	)
	queries := meshgen.RandomInShell(flagQueries, 1-flagShell, 1+flagShell, flagSeed)

	workers := flagWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]benchResult, 0, len(ks))
	for _, k := range ks {
		c := cfg
		c.K = k
		// Always exercise the index so results reflect K.
		c.ExhaustiveBelow = 0
		q, err := closest.NewQuery(mesh, c, closest.WithLogger(log))
		if err != nil {
			return err
		}
		res, err := bench(cmd.Context(), q, queries, flagRadius, workers)
		if err != nil {
			return err
		}
		log.Info("benchmarked K",
			zap.Int("k", k),
			zap.Int("misses", res.Misses),
			zap.Duration("mean", res.Mean),
		)
		results = append(results, res)
	}
	printResults(os.Stdout, results)
	if flagPlot != "" {
		if err := plotResults(flagPlot, results); err != nil {
			return fmt.Errorf("plotting: %w", err)
		}
		log.Info("wrote plot", zap.String("file", flagPlot))
	}
	return nil
}

func buildMesh(kind string, detail int, seed int64) (closest.Mesh, error) {
	if detail < 0 {
		return closest.Mesh{}, errors.New("negative detail")
	}
	switch kind {
	case "sphere":
		return meshgen.Sphere(detail, 1), nil
	case "noisy":
		return meshgen.NoisySphere(detail, 1, 0.05, seed), nil
	case "cube":
		return meshgen.Cube(2), nil
	}
	return closest.Mesh{}, fmt.Errorf("unknown mesh %q", kind)
}

// bench runs every query through the indexed and exhaustive searches
// using at most workers goroutines.
func bench(ctx context.Context, q *closest.Query, queries []r3.Vec, radius float64, workers int) (benchResult, error) {
	const chunk = 256
	type partial struct {
		misses, found       int
		elapsed, elapsedExh time.Duration
	}
	partials := make([]partial, (len(queries)+chunk-1)/chunk)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range partials {
		start := i * chunk
		end := start + chunk
		if end > len(queries) {
			end = len(queries)
		}
		part := &partials[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, p := range queries[start:end] {
				t0 := time.Now()
				got, ok := q.ClosestPoint(p, radius)
				t1 := time.Now()
				want, wantOK := q.ClosestPointExhaustive(p, radius)
				part.elapsed += t1.Sub(t0)
				part.elapsedExh += time.Since(t1)
				if ok {
					part.found++
				}
				if ok != wantOK || !sameDistance(p, got, want) {
					part.misses++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return benchResult{}, err
	}
	res := benchResult{K: q.K(), Queries: len(queries)}
	var elapsed, elapsedExh time.Duration
	for _, part := range partials {
		res.Misses += part.misses
		res.Found += part.found
		elapsed += part.elapsed
		elapsedExh += part.elapsedExh
	}
	res.Mean = elapsed / time.Duration(len(queries))
	res.MeanExhaustive = elapsedExh / time.Duration(len(queries))
	return res, nil
}

// sameDistance reports whether got and want are equally far from p.
// Different points at the same distance are both correct answers.
func sameDistance(p, got, want r3.Vec) bool {
	const tol = 1e-9
	dg := r3.Norm(r3.Sub(p, got))
	dw := r3.Norm(r3.Sub(p, want))
	return dg-dw <= tol*(1+dw)
}

func printResults(w io.Writer, results []benchResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "K\tqueries\tfound\tmisses\tmiss rate\tmean\tmean exhaustive")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.4f%%\t%v\t%v\n",
			r.K, r.Queries, r.Found, r.Misses, 100*r.MissRate(), r.Mean, r.MeanExhaustive)
	}
	tw.Flush()
}
