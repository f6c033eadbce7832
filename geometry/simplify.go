package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// SimplifyRing removes vertices of a closed ring that deviate from the chord
// between their neighbours by less than tolerance, as long as the new chord
// crosses no unrelated segment of the ring. The first and last vertex and
// every vertex on the ring's envelope are kept.
func SimplifyRing(ring orb.Ring, tolerance float64) orb.Ring {
	return simplifyRing(ring, tolerance, nil)
}

// simplifyRing also rejects chords crossing obstruction, the segments of
// related rings; obstruction may be nil.
func simplifyRing(input orb.Ring, tolerance float64, obstruction *segmentIndex) orb.Ring {
	if len(input) < 3 {
		return append(orb.Ring(nil), input...)
	}

	nodes := make([]int, len(input))
	for i := range nodes {
		nodes[i] = i
	}

	// Segment ids are the input index of their starting vertex.
	index := newRingIndex(input)
	envelope := input.Bound()

	for entry := len(input) - 3; entry >= 0; entry-- {
		start, middle, end := nodes[entry], nodes[entry+1], nodes[entry+2]

		m := input[middle]
		if m[0] == envelope.Min[0] || m[1] == envelope.Min[1] ||
			m[0] == envelope.Max[0] || m[1] == envelope.Max[1] {
			continue
		}

		chord := segment{input[start], input[end]}

		maxDistance := 0.0
		for i := start + 1; i < end; i++ {
			maxDistance = max(maxDistance, planar.DistanceFromSegment(chord.a, chord.b, input[i]))
		}
		if maxDistance >= tolerance {
			continue
		}

		count := index.countIntersecting(chord) + obstruction.countIntersecting(chord)
		if count != min(4, len(nodes)-1) {
			continue
		}

		nodes = append(nodes[:entry+1], nodes[entry+2:]...)
		index.remove(start)
		index.remove(middle)
		index.insert(start, chord)
	}

	output := make(orb.Ring, len(nodes))
	for i, n := range nodes {
		output[i] = input[n]
	}
	return output
}

// degenerate reports whether a simplified ring is too small to keep.
func degenerate(r orb.Ring, tolerance float64) bool {
	return len(r) < 4 || planar.Length(r) <= 3*tolerance
}

// SimplifyPolygon simplifies the inner rings against the outer ring, merges
// inner rings that come to overlap, then simplifies the outer ring against the
// kept inner rings. Degenerate inner rings are dropped; if the outer ring
// degenerates the result is nil, meaning the polygon should be omitted.
func SimplifyPolygon(p orb.Polygon, tolerance float64) orb.Polygon {
	if len(p) == 0 {
		return nil
	}

	outerIndex := newRingIndex(p[0])

	var inners []orb.Polygon
	for _, inner := range p[1:] {
		r := simplifyRing(inner, tolerance, outerIndex)
		if degenerate(r, tolerance) {
			continue
		}
		inners = Combine(inners, orb.Polygon{r})
	}

	innerIndex := newSegmentIndex()
	result := orb.Polygon{nil}
	for _, inner := range inners {
		r := inner[0]
		innerIndex.addRing(r)
		result = append(result, r)
	}

	outer := simplifyRing(p[0], tolerance, innerIndex)
	if degenerate(outer, tolerance) {
		return nil
	}
	result[0] = outer

	orientation := outer.Orientation()
	for _, r := range result[1:] {
		if r.Orientation() == orientation {
			r.Reverse()
		}
	}
	return result
}

// SimplifyMultiPolygon simplifies each member, drops omitted members and
// merges members that overlap after simplification.
func SimplifyMultiPolygon(mp orb.MultiPolygon, tolerance float64) orb.MultiPolygon {
	var result []orb.Polygon
	for _, p := range mp {
		simplified := SimplifyPolygon(p, tolerance)
		if len(simplified) == 0 {
			continue
		}
		result = Combine(result, simplified)
	}
	return orb.MultiPolygon(result)
}

// SimplifyLineString applies Douglas-Peucker simplification. Lines cannot
// enclose anything, so no topology check is made. The input is not modified.
func SimplifyLineString(ls orb.LineString, tolerance float64) orb.LineString {
	simplified, ok := simplify.DouglasPeucker(tolerance).Simplify(ls.Clone()).(orb.LineString)
	if !ok {
		return nil
	}
	return simplified
}
