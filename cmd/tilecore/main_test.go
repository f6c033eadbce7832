package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/eak1mov/go-tilecore/geometry"
	"github.com/eak1mov/go-tilecore/geomstore"
	"github.com/eak1mov/go-tilecore/mercator"
	"github.com/eak1mov/go-tilecore/shapes"
	"github.com/eak1mov/go-tilecore/tile"
	"github.com/google/subcommands"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

const testCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "centre"},
     "geometry": {"type": "Point", "coordinates": [10, 10]}},
    {"type": "Feature", "properties": {"layer": 1},
     "geometry": {"type": "LineString", "coordinates": [[-20, -20], [20, 20]]}},
    {"type": "Feature", "properties": {"name": "square", "minzoom": 2},
     "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [5, 0], [5, 5], [0, 5], [0, 0]]]}},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "MultiPoint", "coordinates": [[1, 1], [2, 2]]}}
  ]
}`

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.geojson")
	require.NoError(t, os.WriteFile(path, []byte(testCollection), 0o644))
	return path
}

func TestLoadShapes(t *testing.T) {
	in := inputFlags{inputPath: writeInput(t), baseZoom: 4, layerName: "test", nameKey: "name"}
	store, err := loadShapes(&in, geomstore.NewMemory())
	require.NoError(t, err)

	if got, want := store.Source().Len(), 5; got != want {
		t.Errorf("Source().Len() = %v, want = %v", got, want)
	}

	box, err := parseBound("9,9,11,11")
	require.NoError(t, err)
	ids := store.QueryMatchingGeometries("test", false, box, shapes.CoveredBy, nil)
	require.Len(t, ids, 1)
	require.Equal(t, []string{"centre"}, store.NamesOfGeometries(ids))

	g, err := store.Retrieve(ids[0])
	require.NoError(t, err)
	p, err := g.AsPoint()
	require.NoError(t, err)
	require.InDelta(t, mercator.Lat2Latp(10), p[1], 1e-9)
}

func TestCoverRejectsZoomAboveMax(t *testing.T) {
	cmd := &coverCmd{
		input: inputFlags{inputPath: writeInput(t), baseZoom: 4, layerName: "test"},
		zoom:  40,
	}
	require.Equal(t, subcommands.ExitFailure, cmd.Execute(context.Background(), nil))
}

func TestIndexQueryRelations(t *testing.T) {
	for _, rel := range []string{"intersects", "within", "contains"} {
		if _, err := indexQuery(rel); err != nil {
			t.Errorf("indexQuery(%q) failed: %v", rel, err)
		}
	}
	if _, err := indexQuery("touches"); err == nil {
		t.Error("indexQuery(touches) succeeded")
	}
	if _, err := parseBound("1,2,3"); err == nil {
		t.Error("parseBound(1,2,3) succeeded")
	}
}

func TestRenderGeometry(t *testing.T) {
	bbox := mercator.NewBbox(tile.Coordinates{X: 1, Y: 0}, 1, false)

	tests := []struct {
		name string
		g    geometry.Geometry
		want int
	}{
		{"point inside", geometry.FromPoint(orb.Point{90, 90}), 1},
		{"point outside", geometry.FromPoint(orb.Point{-90, 90}), 0},
		{"line crossing", geometry.FromLineString(orb.LineString{{-90, 90}, {90, 90}}), 2},
		{"polygon inside", geometry.FromMultiPolygon(orb.MultiPolygon{{{{10, 10}, {50, 10}, {50, 50}, {10, 50}, {10, 10}}}}), 5},
		{"polygon outside", geometry.FromMultiPolygon(orb.MultiPolygon{{{{-50, -50}, {-10, -50}, {-10, -10}, {-50, -10}, {-50, -50}}}}), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderGeometry(tt.g, bbox, bbox.XScale)
			require.NoError(t, err)
			if got != tt.want {
				t.Errorf("renderGeometry() = %v, want = %v", got, tt.want)
			}
		})
	}
}
