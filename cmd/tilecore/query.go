package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/eak1mov/go-tilecore/geometry"
	"github.com/eak1mov/go-tilecore/mercator"
	"github.com/eak1mov/go-tilecore/shapes"
	"github.com/eak1mov/go-tilecore/tileindex"
	"github.com/google/subcommands"
	"github.com/paulmach/orb"
)

type queryCmd struct {
	input     inputFlags
	bbox      string
	relation  string
	queryName string
	once      bool
	exact     bool
}

func (c *queryCmd) Name() string     { return "query" }
func (c *queryCmd) Synopsis() string { return "find features in a bounding box" }
func (c *queryCmd) Usage() string {
	return "tilecore query -i <path> -bbox <minlon,minlat,maxlon,maxlat> [-rel <relation> -once -exact -q <layer>]\n"
}
func (c *queryCmd) SetFlags(f *flag.FlagSet) {
	c.input.setFlags(f)
	f.StringVar(&c.bbox, "bbox", "", "Query box in degrees: minlon,minlat,maxlon,maxlat")
	f.StringVar(&c.relation, "rel", "intersects", "Box relation (intersects, within, contains)")
	f.StringVar(&c.queryName, "q", "", "Layer to query (default: the ingested layer)")
	f.BoolVar(&c.once, "once", false, "Stop at the first match")
	f.BoolVar(&c.exact, "exact", false, "Check candidates against the full geometry")
}

func parseBound(value string) (orb.Bound, error) {
	var minLon, minLat, maxLon, maxLat float64
	if _, err := fmt.Sscanf(value, "%f,%f,%f,%f", &minLon, &minLat, &maxLon, &maxLat); err != nil {
		return orb.Bound{}, fmt.Errorf("invalid bbox %q: %w", value, err)
	}
	return orb.Bound{
		Min: mercator.ToLatp(orb.Point{minLon, minLat}),
		Max: mercator.ToLatp(orb.Point{maxLon, maxLat}),
	}, nil
}

func indexQuery(relation string) (shapes.IndexQuery, error) {
	switch relation {
	case "intersects":
		return shapes.Intersecting, nil
	case "within":
		return shapes.CoveredBy, nil
	case "contains":
		return shapes.Covering, nil
	}
	return nil, fmt.Errorf("invalid relation: %q", relation)
}

func (c *queryCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	box, err := parseBound(c.bbox)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	query, err := indexQuery(c.relation)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	geoms, closeStore, err := openStore(c.input.dbPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer closeStore()

	store, err := loadShapes(&c.input, geoms)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	var check func(*tileindex.OutputObject) bool
	if c.exact {
		check = func(o *tileindex.OutputObject) bool {
			g, err := store.Retrieve(uint32(o.ObjectID))
			if err != nil {
				log.Printf("retrieve %d: %v", o.ObjectID, err)
				return false
			}
			return intersectsBound(g.Orb(), box)
		}
	}

	layer := c.input.layerName
	if c.queryName != "" {
		layer = c.queryName
	}
	ids := store.QueryMatchingGeometries(layer, c.once, box, query, check)
	for _, id := range ids {
		name := store.NamesOfGeometries([]uint32{id})
		if len(name) == 0 {
			fmt.Println(id)
		} else {
			fmt.Printf("%d\t%s\n", id, name[0])
		}
	}
	return subcommands.ExitSuccess
}

func intersectsBound(g orb.Geometry, box orb.Bound) bool {
	return geometry.Intersects(g, box.ToPolygon())
}
