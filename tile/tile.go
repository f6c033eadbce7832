// Package tile provides tile coordinate types shared by the tile index and geometry stores.
package tile

import (
	"cmp"
	"slices"
)

// Coordinates address a tile within the grid of an implicit zoom level.
type Coordinates struct {
	X uint32
	Y uint32
}

// Compare orders coordinates lexicographically on (X, Y).
func Compare(a, b Coordinates) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Y, b.Y)
}

func (c Coordinates) Less(other Coordinates) bool {
	return Compare(c, other) < 0
}

// Valid reports whether c lies inside the grid of zoom z.
func (c Coordinates) Valid(z uint32) bool {
	return z <= MaxZoom && c.X < (1<<z) && c.Y < (1<<z)
}

// Shift returns the ancestor of c that many levels up the pyramid.
func (c Coordinates) Shift(levels uint32) Coordinates {
	return Coordinates{X: c.X >> levels, Y: c.Y >> levels}
}

func (c Coordinates) At(z uint32) ID {
	return ID{X: c.X, Y: c.Y, Z: z}
}

// ID represents tile coordinates in the XYZ scheme (Tiled web map).
type ID struct {
	X uint32
	Y uint32
	Z uint32
}

// Valid reports whether t lies inside the grid of its zoom.
func (t ID) Valid() bool {
	return t.Coordinates().Valid(t.Z)
}

func (t ID) Coordinates() Coordinates {
	return Coordinates{X: t.X, Y: t.Y}
}

// CoordinatesSet is an unordered set of tile coordinates.
// Use Sorted or All for a deterministic order.
type CoordinatesSet map[Coordinates]struct{}

func NewCoordinatesSet(coords ...Coordinates) CoordinatesSet {
	s := make(CoordinatesSet, len(coords))
	for _, c := range coords {
		s.Insert(c)
	}
	return s
}

func (s CoordinatesSet) Insert(c Coordinates) {
	s[c] = struct{}{}
}

func (s CoordinatesSet) Len() int {
	return len(s)
}

// Sorted returns the members of s in lexicographic order.
func (s CoordinatesSet) Sorted() []Coordinates {
	result := make([]Coordinates, 0, len(s))
	for c := range s {
		result = append(result, c)
	}
	slices.SortFunc(result, Compare)
	return result
}
