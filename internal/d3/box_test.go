package d3

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestBoxDist2(t *testing.T) {
	bb := EmptyBox().Include(r3.Vec{}).Include(r3.Vec{X: 1, Y: 2, Z: 3})
	for _, test := range []struct {
		p    r3.Vec
		want float64
	}{
		{p: r3.Vec{X: 0.5, Y: 1, Z: 1.5}, want: 0},
		{p: r3.Vec{X: 1, Y: 2, Z: 3}, want: 0},
		{p: r3.Vec{X: -1, Y: 1, Z: 1}, want: 1},
		{p: r3.Vec{X: 2, Y: 3, Z: 4}, want: 3},
		{p: r3.Vec{X: 0.5, Y: -2, Z: 5}, want: 4 + 4},
	} {
		got := bb.Dist2(test.p)
		if got != test.want {
			t.Errorf("Dist2(%v) got %g, want %g", test.p, got, test.want)
		}
	}
	if !bb.Contains(r3.Vec{X: 1, Y: 1, Z: 1}) {
		t.Error("box should contain point")
	}
}

func TestEmptyBox(t *testing.T) {
	bb := EmptyBox()
	if !bb.Empty() {
		t.Fatal("EmptyBox should be empty")
	}
	if !math.IsInf(bb.Dist2(r3.Vec{}), 1) {
		t.Error("empty box should be infinitely far away")
	}
	bb = bb.Include(r3.Vec{X: 1, Y: 1, Z: 1})
	if bb.Empty() || bb.Size() != (r3.Vec{}) {
		t.Errorf("single point box got %+v", bb)
	}
	ext := bb.Extend(EmptyBox().Include(r3.Vec{X: 3, Y: -1, Z: 1}))
	if ext.Center() != (r3.Vec{X: 2, Y: 0, Z: 1}) {
		t.Errorf("extended box center got %v", ext.Center())
	}
	if Max(ext.Size()) != 2 {
		t.Errorf("extended box size got %v", ext.Size())
	}
}
