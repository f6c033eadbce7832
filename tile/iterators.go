package tile

import (
	"iter"
	"slices"
)

// All returns an iterator over the set in lexicographic order.
func (s CoordinatesSet) All() iter.Seq[Coordinates] {
	return slices.Values(s.Sorted())
}

// Hilbert returns an iterator over the set ordered along the Hilbert curve of zoom z.
// Neighbouring tiles are visited close together, which keeps per-tile caches warm.
// Every member must lie inside the grid of zoom z.
func (s CoordinatesSet) Hilbert(z uint32) iter.Seq[Coordinates] {
	return func(yield func(Coordinates) bool) {
		codes := make([]uint64, 0, len(s))
		for c := range s {
			codes = append(codes, EncodeID(c.At(z)))
		}
		slices.Sort(codes)
		for _, code := range codes {
			if !yield(DecodeID(code).Coordinates()) {
				return
			}
		}
	}
}
