package mercator

import (
	"github.com/eak1mov/go-tilecore/tile"
	"github.com/paulmach/orb"
)

// InsertIntermediateTiles adds to tileSet every tile touched by the line,
// filling the tile rectangle between consecutive vertices whose tiles are not
// edge neighbours, so the footprint has no gaps.
func InsertIntermediateTiles(ls orb.LineString, baseZoom uint32, tileSet tile.CoordinatesSet) {
	insertIntermediateTiles(ls, baseZoom, tileSet)
}

// InsertIntermediateRingTiles is InsertIntermediateTiles for a ring boundary.
func InsertIntermediateRingTiles(r orb.Ring, baseZoom uint32, tileSet tile.CoordinatesSet) {
	insertIntermediateTiles(r, baseZoom, tileSet)
}

func insertIntermediateTiles(points []orb.Point, baseZoom uint32, tileSet tile.CoordinatesSet) {
	var last tile.Coordinates
	for i, p := range points {
		current := tile.Coordinates{
			X: Lon2TileX(p[0], baseZoom),
			Y: Latp2TileY(p[1], baseZoom),
		}
		tileSet.Insert(current)

		if i > 0 && absDiff(current.X, last.X)+absDiff(current.Y, last.Y) > 1 {
			for x := min(current.X, last.X); x <= max(current.X, last.X); x++ {
				for y := min(current.Y, last.Y); y <= max(current.Y, last.Y); y++ {
					tileSet.Insert(tile.Coordinates{X: x, Y: y})
				}
			}
		}
		last = current
	}
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// FillCoveredTiles fills, for each column present in tileSet, every row
// between the smallest and largest row already present in that column.
func FillCoveredTiles(tileSet tile.CoordinatesSet) {
	sorted := tileSet.Sorted()
	for i := 1; i < len(sorted); i++ {
		prev, current := sorted[i-1], sorted[i]
		if prev.X != current.X {
			continue
		}
		for y := prev.Y + 1; y < current.Y; y++ {
			tileSet.Insert(tile.Coordinates{X: current.X, Y: y})
		}
	}
}
