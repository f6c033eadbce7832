package geometry

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

type segment struct {
	a, b orb.Point
}

func (s segment) bounds() (lo, hi [2]float64) {
	lo = [2]float64{min(s.a[0], s.b[0]), min(s.a[1], s.b[1])}
	hi = [2]float64{max(s.a[0], s.b[0]), max(s.a[1], s.b[1])}
	return lo, hi
}

// segmentIndex is an rtree over line segments keyed by caller-chosen ids.
type segmentIndex struct {
	tree     rtree.RTreeG[int]
	segments map[int]segment
	nextID   int
}

func newSegmentIndex() *segmentIndex {
	return &segmentIndex{segments: make(map[int]segment)}
}

// newRingIndex indexes the segments of points; segment i runs from points[i]
// to points[i+1] and has id i.
func newRingIndex(points []orb.Point) *segmentIndex {
	idx := &segmentIndex{segments: make(map[int]segment, len(points))}
	for i := 0; i+1 < len(points); i++ {
		idx.insert(i, segment{points[i], points[i+1]})
	}
	return idx
}

func (idx *segmentIndex) insert(id int, s segment) {
	idx.segments[id] = s
	lo, hi := s.bounds()
	idx.tree.Insert(lo, hi, id)
	idx.nextID = max(idx.nextID, id+1)
}

// addRing appends the segments of points under fresh ids.
func (idx *segmentIndex) addRing(points []orb.Point) {
	for i := 0; i+1 < len(points); i++ {
		idx.insert(idx.nextID, segment{points[i], points[i+1]})
	}
}

func (idx *segmentIndex) remove(id int) {
	s, ok := idx.segments[id]
	if !ok {
		return
	}
	lo, hi := s.bounds()
	idx.tree.Delete(lo, hi, id)
	delete(idx.segments, id)
}

// search calls fn with every indexed segment whose box overlaps the box of s,
// until fn returns false.
func (idx *segmentIndex) search(s segment, fn func(id int, t segment) bool) {
	lo, hi := s.bounds()
	idx.tree.Search(lo, hi, func(_, _ [2]float64, id int) bool {
		return fn(id, idx.segments[id])
	})
}

// countIntersecting returns how many indexed segments touch or cross s.
// A nil index holds no segments.
func (idx *segmentIndex) countIntersecting(s segment) int {
	if idx == nil {
		return 0
	}
	count := 0
	idx.search(s, func(_ int, t segment) bool {
		if segmentsIntersect(s, t) {
			count++
		}
		return true
	})
	return count
}

func orient(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// onSegment reports whether p, known to be collinear with s, lies within s.
func onSegment(s segment, p orb.Point) bool {
	return min(s.a[0], s.b[0]) <= p[0] && p[0] <= max(s.a[0], s.b[0]) &&
		min(s.a[1], s.b[1]) <= p[1] && p[1] <= max(s.a[1], s.b[1])
}

func oppositeSigns(a, b float64) bool {
	return (a > 0 && b < 0) || (a < 0 && b > 0)
}

// segmentsIntersect reports whether s and t share at least one point.
func segmentsIntersect(s, t segment) bool {
	d1 := orient(t.a, t.b, s.a)
	d2 := orient(t.a, t.b, s.b)
	d3 := orient(s.a, s.b, t.a)
	d4 := orient(s.a, s.b, t.b)

	if oppositeSigns(d1, d2) && oppositeSigns(d3, d4) {
		return true
	}
	return (d1 == 0 && onSegment(t, s.a)) ||
		(d2 == 0 && onSegment(t, s.b)) ||
		(d3 == 0 && onSegment(s, t.a)) ||
		(d4 == 0 && onSegment(s, t.b))
}

// crossing returns the point where s and t properly cross each other.
func crossing(s, t segment) (orb.Point, bool) {
	d1 := orient(t.a, t.b, s.a)
	d2 := orient(t.a, t.b, s.b)
	d3 := orient(s.a, s.b, t.a)
	d4 := orient(s.a, s.b, t.b)
	if !oppositeSigns(d1, d2) || !oppositeSigns(d3, d4) {
		return orb.Point{}, false
	}
	k := d1 / (d1 - d2)
	return orb.Point{s.a[0] + k*(s.b[0]-s.a[0]), s.a[1] + k*(s.b[1]-s.a[1])}, true
}
