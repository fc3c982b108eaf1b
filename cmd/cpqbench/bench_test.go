package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soypat/closest"
	"github.com/soypat/closest/internal/meshgen"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestBenchAgainstExhaustive(t *testing.T) {
	mesh := meshgen.Sphere(3, 1)
	cfg := closest.DefaultConfig()
	cfg.K = 64
	cfg.ExhaustiveBelow = 0
	q, err := closest.NewQuery(mesh, cfg)
	if err != nil {
		t.Fatal(err)
	}
	queries := meshgen.RandomInShell(2000, 0.8, 1.2, 3)
	res, err := bench(context.Background(), q, queries, 0.5, 4)
	if err != nil {
		t.Fatal(err)
	}
	if res.Queries != len(queries) {
		t.Errorf("got %d queries, want %d", res.Queries, len(queries))
	}
	if res.Found != len(queries) {
		t.Errorf("all queries within 0.2 of the sphere should be found, got %d/%d", res.Found, len(queries))
	}
	if res.Misses != 0 {
		t.Errorf("K=%d missed %d queries", res.K, res.Misses)
	}
}

func TestBenchCancelled(t *testing.T) {
	q, err := closest.NewQuery(meshgen.Sphere(1, 1), closest.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = bench(ctx, q, meshgen.RandomInShell(1000, 0.5, 1.5, 1), 1, 2)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestSameDistance(t *testing.T) {
	p := r3.Vec{Z: 1}
	if !sameDistance(p, r3.Vec{X: 1}, r3.Vec{Y: 1}) {
		t.Error("equidistant points should match")
	}
	if sameDistance(p, r3.Vec{X: 1}, r3.Vec{}) {
		t.Error("farther result should not match")
	}
}

func TestBuildMesh(t *testing.T) {
	for _, kind := range []string{"sphere", "noisy", "cube"} {
		m, err := buildMesh(kind, 1, 1)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if err := m.Validate(); err != nil {
			t.Errorf("%s: %v", kind, err)
		}
	}
	if _, err := buildMesh("torus", 1, 1); err == nil {
		t.Error("expected error for unknown mesh")
	}
}

func TestPrintAndPlotResults(t *testing.T) {
	results := []benchResult{
		{K: 8, Misses: 12, Found: 90, Queries: 100, Mean: 3 * time.Microsecond},
		{K: 32, Misses: 0, Found: 90, Queries: 100, Mean: 7 * time.Microsecond},
	}
	var b bytes.Buffer
	printResults(&b, results)
	out := b.String()
	if !strings.Contains(out, "12.0000%") || !strings.Contains(out, "mean exhaustive") {
		t.Errorf("unexpected table:\n%s", out)
	}

	filename := filepath.Join(t.TempDir(), "k.png")
	if err := plotResults(filename, results); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(filename)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() == 0 {
		t.Error("empty plot file")
	}
}
