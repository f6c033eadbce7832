package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/eak1mov/go-tilecore/geometry"
	"github.com/eak1mov/go-tilecore/geomstore"
	"github.com/eak1mov/go-tilecore/mercator"
	"github.com/eak1mov/go-tilecore/shapes"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// inputFlags are shared by all subcommands that ingest a GeoJSON file.
type inputFlags struct {
	inputPath string
	dbPath    string
	baseZoom  uint
	layerName string
	nameKey   string
}

func (in *inputFlags) setFlags(f *flag.FlagSet) {
	f.StringVar(&in.inputPath, "i", "", "Input GeoJSON path")
	f.StringVar(&in.dbPath, "db", "", "SQLite geometry store path (default: in memory)")
	f.UintVar(&in.baseZoom, "z", 14, "Base zoom of the tile index")
	f.StringVar(&in.layerName, "layer", "shapes", "Name of the indexed layer")
	f.StringVar(&in.nameKey, "name", "name", "Feature property holding the geometry name")
}

// openStore returns the geometry store selected by dbPath and a function
// releasing it.
func openStore(dbPath string) (geomstore.Store, func() error, error) {
	if dbPath == "" {
		return geomstore.NewMemory(), func() error { return nil }, nil
	}
	s, err := geomstore.NewSQLite(dbPath, geomstore.WithLogger(slog.Default()))
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func readFeatures(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return fc, nil
}

// toGeometries projects f to (lon, latp) and splits it into the geometry
// kinds the store accepts. Multi-points become separate points.
func toGeometries(f *geojson.Feature) ([]geometry.Geometry, error) {
	g := mercator.ProjectGeometry(orb.Clone(f.Geometry))
	if mp, ok := g.(orb.MultiPoint); ok {
		result := make([]geometry.Geometry, len(mp))
		for i, p := range mp {
			result[i] = geometry.FromPoint(p)
		}
		return result, nil
	}
	geom, err := geometry.New(g)
	if err != nil {
		return nil, err
	}
	return []geometry.Geometry{geom}, nil
}

// loadShapes ingests the input file into a frozen shape store. Every
// feature is indexed under in.layerName.
func loadShapes(in *inputFlags, geoms geomstore.Store) (*shapes.Store, error) {
	fc, err := readFeatures(in.inputPath)
	if err != nil {
		return nil, err
	}

	builder, err := shapes.NewBuilder(uint32(in.baseZoom), geoms, shapes.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}
	builder.CreateNamedLayerIndex(in.layerName)

	for i, f := range fc.Features {
		parts, err := toGeometries(f)
		if err != nil {
			log.Printf("skipping feature %d: %v", i, err)
			continue
		}
		name, named := f.Properties[in.nameKey].(string)
		layer := uint8(f.Properties.MustInt("layer", 0))
		minZoom := uint32(f.Properties.MustInt("minzoom", 0))
		for _, g := range parts {
			_, err := builder.AddObject(shapes.Feature{
				Layer:     layer,
				LayerName: in.layerName,
				Type:      g.Type(),
				Geometry:  g,
				Indexed:   true,
				Named:     named,
				Name:      name,
				MinZoom:   minZoom,
			})
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
		}
	}
	return builder.Freeze(), nil
}
