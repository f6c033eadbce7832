package tileindex_test

import (
	"errors"
	"testing"

	"github.com/eak1mov/go-tilecore/geometry"
	"github.com/eak1mov/go-tilecore/tile"
	"github.com/eak1mov/go-tilecore/tileindex"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newBuilder(t *testing.T, baseZoom uint32) *tileindex.Builder {
	t.Helper()
	b, err := tileindex.NewBuilder(baseZoom, tileindex.WithChunkSize(4))
	require.NoError(t, err)
	return b
}

func TestNewBuilderZoomTooDeep(t *testing.T) {
	if _, err := tileindex.NewBuilder(32); !errors.Is(err, tileindex.ErrZoomTooDeep) {
		t.Errorf("NewBuilder(32) error = %v, want %v", err, tileindex.ErrZoomTooDeep)
	}
}

func TestConcurrentCreateObject(t *testing.T) {
	const workers = 64
	b := newBuilder(t, 10)

	refs := make([]*tileindex.OutputObject, workers)
	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			refs[i] = b.CreateObject(tileindex.OutputObject{ObjectID: uint64(i)})
			b.AddObject(tile.Coordinates{X: uint32(i % 8), Y: 0}, refs[i])
			return nil
		})
	}
	require.NoError(t, g.Wait())

	source := b.Freeze()
	if got, want := source.Len(), workers; got != want {
		t.Errorf("Len() = %v, want = %v", got, want)
	}

	seen := make(map[*tileindex.OutputObject]bool)
	for i, ref := range refs {
		if seen[ref] {
			t.Errorf("reference %p returned twice", ref)
		}
		seen[ref] = true
		if got, want := ref.ObjectID, uint64(i); got != want {
			t.Errorf("refs[%d].ObjectID = %v, want = %v", i, got, want)
		}
	}
	for _, o := range source.Objects() {
		if !seen[o] {
			t.Errorf("stored object %p was never returned", o)
		}
	}
}

func TestFreezeStopsWrites(t *testing.T) {
	b := newBuilder(t, 4)
	b.Freeze()
	require.Panics(t, func() { b.CreateObject(tileindex.OutputObject{}) })
	require.Panics(t, func() { b.AddObject(tile.Coordinates{}, nil) })
	require.Panics(t, func() { b.Freeze() })
}

func TestMergeTileCoordsAtZoom(t *testing.T) {
	b := newBuilder(t, 4)
	b.AddObject(tile.Coordinates{X: 4, Y: 4}, b.CreateObject(tileindex.OutputObject{}))
	source := b.Freeze()

	for _, tc := range []struct {
		zoom uint32
		want []tile.Coordinates
	}{
		{zoom: 0, want: []tile.Coordinates{{X: 0, Y: 0}}},
		{zoom: 2, want: []tile.Coordinates{{X: 1, Y: 1}}},
		{zoom: 4, want: []tile.Coordinates{{X: 4, Y: 4}}},
		{zoom: 5, want: []tile.Coordinates{{X: 8, Y: 8}, {X: 8, Y: 9}, {X: 9, Y: 8}, {X: 9, Y: 9}}},
	} {
		got := tile.NewCoordinatesSet()
		source.MergeTileCoordsAtZoom(tc.zoom, got)
		if diff := cmp.Diff(tc.want, got.Sorted()); diff != "" {
			t.Errorf("MergeTileCoordsAtZoom(%d) mismatch (-want+got):\n%v", tc.zoom, diff)
		}
	}
}

func TestMergeSingleTileDataAtZoom(t *testing.T) {
	b := newBuilder(t, 2)
	objects := make([]*tileindex.OutputObject, 6)
	for i := range objects {
		objects[i] = b.CreateObject(tileindex.OutputObject{ObjectID: uint64(i)})
	}
	b.AddObject(tile.Coordinates{X: 1, Y: 1}, objects[0])
	b.AddObject(tile.Coordinates{X: 0, Y: 1}, objects[1])
	b.AddObject(tile.Coordinates{X: 1, Y: 1}, objects[2])
	b.AddObject(tile.Coordinates{X: 0, Y: 0}, objects[3])
	b.AddObject(tile.Coordinates{X: 2, Y: 0}, objects[4])
	b.AddObject(tile.Coordinates{X: 1, Y: 2}, objects[5])
	source := b.Freeze()

	ids := func(data []*tileindex.OutputObject) []uint64 {
		var result []uint64
		for _, o := range data {
			result = append(result, o.ObjectID)
		}
		return result
	}

	for _, tc := range []struct {
		coords tile.Coordinates
		zoom   uint32
		want   []uint64
	}{
		{coords: tile.Coordinates{X: 0, Y: 0}, zoom: 1, want: []uint64{3, 1, 0, 2}},
		{coords: tile.Coordinates{X: 1, Y: 0}, zoom: 1, want: []uint64{4}},
		{coords: tile.Coordinates{X: 0, Y: 1}, zoom: 1, want: []uint64{5}},
		{coords: tile.Coordinates{X: 0, Y: 0}, zoom: 0, want: []uint64{3, 1, 0, 2, 5, 4}},
		{coords: tile.Coordinates{X: 1, Y: 1}, zoom: 2, want: []uint64{0, 2}},
		{coords: tile.Coordinates{X: 3, Y: 3}, zoom: 3, want: []uint64{0, 2}},
		{coords: tile.Coordinates{X: 3, Y: 3}, zoom: 2, want: nil},
		{coords: tile.Coordinates{X: 2, Y: 0}, zoom: 1, want: nil},
		{coords: tile.Coordinates{X: 0, Y: 4}, zoom: 2, want: nil},
	} {
		got := ids(source.MergeSingleTileDataAtZoom(tc.coords, tc.zoom, nil))
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("MergeSingleTileDataAtZoom(%v, %d) mismatch (-want+got):\n%v", tc.coords, tc.zoom, diff)
		}
	}
}

func TestMergeRejectsZoomAboveMax(t *testing.T) {
	b := newBuilder(t, 2)
	b.AddObject(tile.Coordinates{X: 1, Y: 1}, b.CreateObject(tileindex.OutputObject{ObjectID: 1}))
	source := b.Freeze()

	require.Panics(t, func() {
		source.MergeTileCoordsAtZoom(tileindex.MaxZoom+1, tile.CoordinatesSet{})
	})
	require.Panics(t, func() {
		source.MergeSingleTileDataAtZoom(tile.Coordinates{}, tileindex.MaxZoom+1, nil)
	})
	require.NotPanics(t, func() {
		source.MergeSingleTileDataAtZoom(tile.Coordinates{}, tileindex.MaxZoom, nil)
	})
}

func TestClear(t *testing.T) {
	b := newBuilder(t, 3)
	ref := b.CreateObject(tileindex.OutputObject{ObjectID: 7})
	b.AddObject(tile.Coordinates{X: 1, Y: 1}, ref)
	b.Clear()
	source := b.Freeze()

	if got := tileindex.GetTileCoordinates([]*tileindex.Source{source}, 3); got.Len() != 0 {
		t.Errorf("GetTileCoordinates after Clear = %v, want empty", got.Sorted())
	}
	if got, want := ref.ObjectID, uint64(7); got != want {
		t.Errorf("ObjectID after Clear = %v, want = %v", got, want)
	}
}

func TestGetTileData(t *testing.T) {
	roads := newBuilder(t, 2)
	water := newBuilder(t, 1)

	road := roads.CreateObject(tileindex.OutputObject{Layer: 2, GeomType: geometry.TypeLineString, ObjectID: 1})
	roads.AddObject(tile.Coordinates{X: 0, Y: 0}, road)
	roads.AddObject(tile.Coordinates{X: 1, Y: 0}, road)
	poi := roads.CreateObject(tileindex.OutputObject{Layer: 3, GeomType: geometry.TypePoint, ObjectID: 2})
	roads.AddObject(tile.Coordinates{X: 1, Y: 1}, poi)

	lake := water.CreateObject(tileindex.OutputObject{Layer: 0, GeomType: geometry.TypePolygon, ObjectID: 3})
	water.AddObject(tile.Coordinates{X: 0, Y: 0}, lake)
	river := water.CreateObject(tileindex.OutputObject{Layer: 2, GeomType: geometry.TypeMultiLineString, ObjectID: 4})
	water.AddObject(tile.Coordinates{X: 0, Y: 0}, river)

	sources := []*tileindex.Source{roads.Freeze(), water.Freeze()}

	coords := tileindex.GetTileCoordinates(sources, 1)
	if diff := cmp.Diff([]tile.Coordinates{{X: 0, Y: 0}}, coords.Sorted()); diff != "" {
		t.Errorf("GetTileCoordinates mismatch (-want+got):\n%v", diff)
	}

	data := tileindex.GetTileData(sources, tile.Coordinates{X: 0, Y: 0}, 0)
	want := []*tileindex.OutputObject{lake, road, river, poi}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("GetTileData mismatch (-want+got):\n%v", diff)
	}

	for _, tc := range []struct {
		layer uint8
		want  []*tileindex.OutputObject
	}{
		{layer: 0, want: []*tileindex.OutputObject{lake}},
		{layer: 1, want: []*tileindex.OutputObject{}},
		{layer: 2, want: []*tileindex.OutputObject{road, river}},
		{layer: 3, want: []*tileindex.OutputObject{poi}},
		{layer: 9, want: []*tileindex.OutputObject{}},
	} {
		got := tileindex.GetObjectsAtSubLayer(data, tc.layer)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("GetObjectsAtSubLayer(%d) mismatch (-want+got):\n%v", tc.layer, diff)
		}
	}
}
