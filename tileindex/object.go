package tileindex

import (
	"cmp"

	"github.com/eak1mov/go-tilecore/geometry"
)

// AttributeRef is an opaque handle into an external attribute store.
type AttributeRef uint64

// OutputObject is one renderable feature. Objects are created by a Builder
// and referenced by pointer from any number of tiles; they are never modified
// after creation.
type OutputObject struct {
	GeomType   geometry.Type
	Layer      uint8
	MinZoom    uint32
	ObjectID   uint64
	Attributes AttributeRef
}

// CompareObjects orders objects by layer, geometry type, attributes and id.
func CompareObjects(a, b *OutputObject) int {
	if c := cmp.Compare(a.Layer, b.Layer); c != 0 {
		return c
	}
	if c := cmp.Compare(a.GeomType, b.GeomType); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Attributes, b.Attributes); c != 0 {
		return c
	}
	return cmp.Compare(a.ObjectID, b.ObjectID)
}
