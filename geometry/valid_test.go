package geometry_test

import (
	"math"
	"testing"

	"github.com/eak1mov/go-tilecore/geometry"
	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

func TestMakeValidBowtie(t *testing.T) {
	bowtie := orb.MultiPolygon{{{{0, 0}, {2, 2}, {2, 0}, {0, 2}, {0, 0}}}}
	got := geometry.MakeValidMultiPolygon(bowtie)
	if got, want := len(got), 2; got != want {
		t.Fatalf("len(MakeValidMultiPolygon) = %v, want = %v", got, want)
	}
	for _, p := range got {
		if got, want := planar.Area(p), 1.0; math.Abs(got-want) > 1e-9 {
			t.Errorf("Area(%v) = %v, want = %v", p, got, want)
		}
		if got, want := p[0].Orientation(), orb.CCW; got != want {
			t.Errorf("Orientation(%v) = %v, want = %v", p, got, want)
		}
	}
}

func TestMakeValidKeepsValidPolygon(t *testing.T) {
	p := orb.Polygon{square(0, 0, 10, 10), square(2, 2, 4, 4)}
	got := geometry.MakeValidMultiPolygon(orb.MultiPolygon{p})
	if got, want := len(got), 1; got != want {
		t.Fatalf("len(MakeValidMultiPolygon) = %v, want = %v", got, want)
	}
	if got, want := len(got[0]), 2; got != want {
		t.Fatalf("rings = %v, want = %v", got, want)
	}
	if got, want := planar.Area(got[0]), 96.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Area = %v, want = %v", got, want)
	}
}

func TestMakeValidPassesThroughLines(t *testing.T) {
	g := geometry.FromLineString(orb.LineString{{0, 0}, {1, 1}, {0, 1}, {1, 0}})
	if diff := cmp.Diff(g.Orb(), geometry.MakeValid(g).Orb()); diff != "" {
		t.Errorf("MakeValid mismatch (-want+got):\n%v", diff)
	}
}

func TestRemoveSpikes(t *testing.T) {
	ring := orb.Ring{{0, 0}, {4, 0}, {4, 0}, {4, 4}, {4, 6}, {4, 4}, {0, 4}, {0, 0}}
	want := orb.Ring{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}
	if diff := cmp.Diff(want, geometry.RemoveSpikes(ring)); diff != "" {
		t.Errorf("RemoveSpikes mismatch (-want+got):\n%v", diff)
	}
}

func TestMakeValidInvertedLoopBecomesHole(t *testing.T) {
	// The ring touches itself at (5, 10) and runs the triangle below it
	// clockwise, carving it out of the square.
	ring := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {5, 10}, {7, 5}, {3, 5}, {5, 10}, {0, 10}, {0, 0}}
	got := geometry.MakeValidMultiPolygon(orb.MultiPolygon{{ring}})
	if got, want := len(got), 1; got != want {
		t.Fatalf("len(MakeValidMultiPolygon) = %v, want = %v", got, want)
	}
	if got, want := planar.Area(got[0]), 90.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Area = %v, want = %v", got, want)
	}
	if got, want := got[0][0].Orientation(), orb.CCW; got != want {
		t.Errorf("outer Orientation = %v, want = %v", got, want)
	}
}

func TestMakeValidDissolvesOverlappingLoops(t *testing.T) {
	// A counter-clockwise square and L-shaped loop, both covering [1,2]x[1,2].
	ring := orb.Ring{{0, 0}, {2, 0}, {2, 2}, {3, 2}, {3, 3}, {1, 3}, {1, 1}, {2, 1}, {2, 2}, {0, 2}, {0, 0}}
	got := geometry.MakeValidMultiPolygon(orb.MultiPolygon{{ring}})
	if got, want := len(got), 1; got != want {
		t.Fatalf("len(MakeValidMultiPolygon) = %v, want = %v", got, want)
	}
	if got, want := planar.Area(got[0]), 6.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Area = %v, want = %v", got, want)
	}
}
