package tile

import (
	"fmt"

	"github.com/google/hilbert"
)

// MaxZoom is the deepest zoom a tile ID can be encoded at.
const MaxZoom = 31

// zoomStart is the number of tiles on all zooms above z, i.e. the code of the
// first tile of zoom z.
func zoomStart(z uint32) uint64 {
	return (uint64(1)<<(2*z) - 1) / 3
}

func curve(z uint32) *hilbert.Hilbert {
	h, err := hilbert.NewHilbert(1 << z)
	if err != nil {
		panic(fmt.Sprintf("tilecore: hilbert curve for zoom %d: %v", z, err))
	}
	return h
}

// EncodeID maps a tile to its position on the Hilbert curve of the whole pyramid:
// all tiles of lower zooms come first, then tiles of zoom Z in curve order.
// It panics if the tile lies outside its zoom grid.
func EncodeID(id ID) uint64 {
	if !id.Valid() {
		panic(fmt.Sprintf("tilecore: tile %d/%d/%d is outside the grid", id.Z, id.X, id.Y))
	}
	d, err := curve(id.Z).MapInverse(int(id.X), int(id.Y))
	if err != nil {
		panic(fmt.Sprintf("tilecore: encode tile %d/%d/%d: %v", id.Z, id.X, id.Y, err))
	}
	return zoomStart(id.Z) + uint64(d)
}

// DecodeID is the inverse of EncodeID.
func DecodeID(code uint64) ID {
	var z uint32
	for z < MaxZoom && zoomStart(z+1) <= code {
		z++
	}
	x, y, err := curve(z).Map(int(code - zoomStart(z)))
	if err != nil {
		panic(fmt.Sprintf("tilecore: decode tile code %d: %v", code, err))
	}
	return ID{X: uint32(x), Y: uint32(y), Z: z}
}
