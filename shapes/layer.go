package shapes

import (
	"github.com/paulmach/orb"
	"github.com/peterstace/simplefeatures/rtree"
)

// LayerIndex is a bounding-box tree over the geometries of one named layer.
// Boxes are collected while the store is built; the tree is bulk loaded
// when the store is frozen.
type LayerIndex struct {
	items []rtree.BulkItem
	tree  *rtree.RTree
	boxes map[uint32]orb.Bound
}

func newLayerIndex() *LayerIndex {
	return &LayerIndex{boxes: make(map[uint32]orb.Bound)}
}

func toBox(b orb.Bound) rtree.Box {
	return rtree.Box{MinX: b.Min[0], MinY: b.Min[1], MaxX: b.Max[0], MaxY: b.Max[1]}
}

func (l *LayerIndex) insert(box orb.Bound, id uint32) {
	l.boxes[id] = box
	l.items = append(l.items, rtree.BulkItem{Box: toBox(box), RecordID: int(id)})
}

func (l *LayerIndex) build() {
	l.tree = rtree.BulkLoad(l.items)
	l.items = nil
}

func (l *LayerIndex) Len() int {
	return len(l.boxes)
}

// Search calls fn with each id whose box intersects box, until fn returns false.
// An index that has not been built yet matches nothing.
func (l *LayerIndex) Search(box orb.Bound, fn func(id uint32, bound orb.Bound) bool) {
	if l.tree == nil {
		return
	}
	_ = l.tree.RangeSearch(toBox(box), func(recordID int) error {
		id := uint32(recordID)
		if !fn(id, l.boxes[id]) {
			return rtree.Stop
		}
		return nil
	})
}

// IndexQuery selects candidate ids from a layer index by their boxes alone.
type IndexQuery func(idx *LayerIndex, box orb.Bound) []uint32

func boxQuery(match func(stored, query orb.Bound) bool) IndexQuery {
	return func(idx *LayerIndex, box orb.Bound) []uint32 {
		var ids []uint32
		idx.Search(box, func(id uint32, stored orb.Bound) bool {
			if match(stored, box) {
				ids = append(ids, id)
			}
			return true
		})
		return ids
	}
}

func boundCovers(outer, inner orb.Bound) bool {
	return outer.Min[0] <= inner.Min[0] && inner.Max[0] <= outer.Max[0] &&
		outer.Min[1] <= inner.Min[1] && inner.Max[1] <= outer.Max[1]
}

var (
	// Intersecting selects geometries whose box intersects the query box.
	Intersecting IndexQuery = boxQuery(func(stored, query orb.Bound) bool { return true })

	// CoveredBy selects geometries whose box lies within the query box.
	CoveredBy IndexQuery = boxQuery(func(stored, query orb.Bound) bool { return boundCovers(query, stored) })

	// Covering selects geometries whose box contains the query box, e.g. the
	// polygons a point may fall in.
	Covering IndexQuery = boxQuery(func(stored, query orb.Bound) bool { return boundCovers(stored, query) })
)
