package geometry

import (
	"cmp"
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	sf "github.com/peterstace/simplefeatures/geom"
)

// ValidTolerance is the distance and area below which MakeValid treats
// vertices as coincident and loops as empty.
const ValidTolerance = 1e-12

// MakeValid repairs self-intersecting polygons. Other geometry types are
// returned unchanged.
func MakeValid(g Geometry) Geometry {
	mp, err := g.AsMultiPolygon()
	if err != nil {
		return g
	}
	return FromMultiPolygon(MakeValidMultiPolygon(mp))
}

// MakeValidMultiPolygon corrects every member of mp and collects the pieces.
// A self-crossing ring is cut at its crossings into simple loops. Loops
// turning the same way as their ring add area, loops turning the other way
// and all loops of inner rings remove it.
func MakeValidMultiPolygon(mp orb.MultiPolygon) orb.MultiPolygon {
	var result orb.MultiPolygon
	for _, p := range mp {
		result = append(result, correct(p, ValidTolerance)...)
	}
	return result
}

func correct(p orb.Polygon, tolerance float64) []orb.Polygon {
	if len(p) == 0 {
		return nil
	}

	// A ring with no net area, such as a symmetric bowtie, has no winding
	// to compare against; all of its loops count as area.
	winding := p[0].Orientation()
	var positive, negative []orb.Ring
	for _, loop := range splitLoops(p[0], tolerance) {
		if winding != 0 && loop.Orientation() != winding {
			negative = append(negative, loop)
		} else {
			positive = append(positive, loop)
		}
	}
	if len(positive) == 0 {
		return nil
	}
	for _, inner := range p[1:] {
		negative = append(negative, splitLoops(inner, tolerance)...)
	}

	polygons, err := overlay(positive, negative)
	if err != nil {
		polygons = make([]orb.Polygon, len(positive))
		for i, loop := range positive {
			polygons[i] = orb.Polygon{loop}
		}
	}
	for _, polygon := range polygons {
		orientRings(polygon)
	}
	return polygons
}

// overlay returns the union of positive minus the union of negative.
func overlay(positive, negative []orb.Ring) ([]orb.Polygon, error) {
	area, err := unionLoops(positive)
	if err != nil {
		return nil, err
	}
	if len(negative) > 0 {
		holes, err := unionLoops(negative)
		if err != nil {
			return nil, err
		}
		if area, err = sf.Difference(area, holes); err != nil {
			return nil, err
		}
	}
	g, err := fromSF(area)
	if err != nil {
		return nil, err
	}
	return polygonsOf(g), nil
}

func unionLoops(loops []orb.Ring) (sf.Geometry, error) {
	var result sf.Geometry
	for i, loop := range loops {
		g, err := toSF(orb.Polygon{loop})
		if err != nil {
			return sf.Geometry{}, err
		}
		if i == 0 {
			result = g
			continue
		}
		if result, err = sf.Union(result, g); err != nil {
			return sf.Geometry{}, err
		}
	}
	return result, nil
}

func polygonsOf(g orb.Geometry) []orb.Polygon {
	switch g := g.(type) {
	case orb.Polygon:
		if len(g) > 0 {
			return []orb.Polygon{g}
		}
	case orb.MultiPolygon:
		return g
	case orb.Collection:
		var result []orb.Polygon
		for _, member := range g {
			result = append(result, polygonsOf(member)...)
		}
		return result
	}
	return nil
}

// orientRings turns the outer ring of p counter-clockwise and holes clockwise.
func orientRings(p orb.Polygon) {
	for i, r := range p {
		want := orb.CW
		if i == 0 {
			want = orb.CCW
		}
		if r.Orientation() != want {
			r.Reverse()
		}
	}
}

// splitLoops cuts a ring at its self-crossings and repeated vertices and
// returns the simple closed loops whose area exceeds tolerance.
func splitLoops(ring orb.Ring, tolerance float64) []orb.Ring {
	points := dedupe(ring, tolerance)
	if len(points) < 4 {
		return nil
	}
	points = insertCrossings(points)

	var loops []orb.Ring
	var path []orb.Point
	position := make(map[orb.Point]int)
	for _, p := range points {
		i, seen := position[p]
		if !seen {
			position[p] = len(path)
			path = append(path, p)
			continue
		}
		loop := append(orb.Ring(nil), path[i:]...)
		loop = append(loop, p)
		if len(loop) >= 4 && math.Abs(planar.Area(loop)) > tolerance {
			loops = append(loops, loop)
		}
		for _, q := range path[i+1:] {
			delete(position, q)
		}
		path = path[:i+1]
	}
	return loops
}

// dedupe returns a closed copy of ring without consecutive vertices closer
// than tolerance.
func dedupe(ring orb.Ring, tolerance float64) orb.Ring {
	result := make(orb.Ring, 0, len(ring)+1)
	for _, p := range ring {
		if n := len(result); n > 0 && planar.Distance(result[n-1], p) <= tolerance {
			continue
		}
		result = append(result, p)
	}
	if n := len(result); n > 1 && planar.Distance(result[0], result[n-1]) <= tolerance {
		result[n-1] = result[0]
	} else if n > 0 {
		result = append(result, result[0])
	}
	return result
}

// insertCrossings adds the points where non-adjacent segments of a closed
// ring cross each other as vertices of both segments.
func insertCrossings(points orb.Ring) orb.Ring {
	type cut struct {
		t float64
		p orb.Point
	}
	cuts := make(map[int][]cut)
	index := newRingIndex(points)
	for i, s := range index.segments {
		index.search(s, func(j int, t segment) bool {
			if j <= i {
				return true
			}
			if p, ok := crossing(s, t); ok {
				cuts[i] = append(cuts[i], cut{planar.Distance(s.a, p), p})
				cuts[j] = append(cuts[j], cut{planar.Distance(t.a, p), p})
			}
			return true
		})
	}
	if len(cuts) == 0 {
		return points
	}

	result := make(orb.Ring, 0, len(points)+2*len(cuts))
	for i := 0; i+1 < len(points); i++ {
		result = append(result, points[i])
		segmentCuts := cuts[i]
		slices.SortFunc(segmentCuts, func(a, b cut) int { return cmp.Compare(a.t, b.t) })
		for _, c := range segmentCuts {
			result = append(result, c.p)
		}
	}
	return append(result, points[len(points)-1])
}

// RemoveSpikes drops repeated vertices and vertices where the ring doubles
// back on itself. The result is closed unless it has no vertices.
func RemoveSpikes(ring orb.Ring) orb.Ring {
	if len(ring) == 0 {
		return nil
	}
	open := ring
	if ring.Closed() {
		open = ring[:len(ring)-1]
	}

	result := make(orb.Ring, 0, len(ring))
	for _, p := range open {
		for {
			n := len(result)
			if n > 0 && result[n-1] == p {
				break
			}
			if n > 1 && isSpike(result[n-2], result[n-1], p) {
				result = result[:n-1]
				continue
			}
			result = append(result, p)
			break
		}
	}
	// The seam between the last and first vertex can hide spikes too.
	for len(result) > 2 {
		n := len(result)
		switch {
		case result[n-1] == result[0]:
			result = result[:n-1]
		case isSpike(result[n-2], result[n-1], result[0]):
			result = result[:n-1]
		case isSpike(result[n-1], result[0], result[1]):
			result = result[1:]
		default:
			return append(result, result[0])
		}
	}
	if len(result) == 0 {
		return nil
	}
	return append(result, result[0])
}

// isSpike reports whether b is a dead end between a and c: the three are
// collinear and the path turns back at b.
func isSpike(a, b, c orb.Point) bool {
	if orient(a, b, c) != 0 {
		return false
	}
	return (b[0]-a[0])*(c[0]-b[0])+(b[1]-a[1])*(c[1]-b[1]) < 0
}
