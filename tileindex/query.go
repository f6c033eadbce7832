package tileindex

import (
	"slices"
	"sort"

	"github.com/eak1mov/go-tilecore/tile"
)

// GetTileCoordinates returns the tiles of zoom populated in any of sources.
func GetTileCoordinates(sources []*Source, zoom uint32) tile.CoordinatesSet {
	result := tile.NewCoordinatesSet()
	for _, s := range sources {
		s.MergeTileCoordsAtZoom(zoom, result)
	}
	return result
}

// GetTileData returns the objects of tile c at zoom from all sources, each
// object once, grouped by layer as GetObjectsAtSubLayer requires.
func GetTileData(sources []*Source, c tile.Coordinates, zoom uint32) []*OutputObject {
	var data []*OutputObject
	for _, s := range sources {
		data = s.MergeSingleTileDataAtZoom(c, zoom, data)
	}

	seen := make(map[*OutputObject]struct{}, len(data))
	data = slices.DeleteFunc(data, func(o *OutputObject) bool {
		if _, ok := seen[o]; ok {
			return true
		}
		seen[o] = struct{}{}
		return false
	})
	slices.SortStableFunc(data, CompareObjects)
	return data
}

// GetObjectsAtSubLayer returns the contiguous run of objects in layer.
// data must be sorted by layer.
func GetObjectsAtSubLayer(data []*OutputObject, layer uint8) []*OutputObject {
	lo := sort.Search(len(data), func(i int) bool { return data[i].Layer >= layer })
	hi := sort.Search(len(data), func(i int) bool { return data[i].Layer > layer })
	return data[lo:hi]
}
