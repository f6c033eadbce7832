package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"runtime"
	"sync/atomic"

	"github.com/eak1mov/go-tilecore/geometry"
	"github.com/eak1mov/go-tilecore/mercator"
	"github.com/eak1mov/go-tilecore/shapes"
	"github.com/eak1mov/go-tilecore/tile"
	"github.com/eak1mov/go-tilecore/tileindex"
	"github.com/google/subcommands"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

type renderCmd struct {
	input    inputFlags
	minZoom  uint
	maxZoom  uint
	hiRes    bool
	simplify float64
	jobs     int
	verbose  bool
}

func (c *renderCmd) Name() string     { return "render" }
func (c *renderCmd) Synopsis() string { return "clip and simplify features for every covered tile" }
func (c *renderCmd) Usage() string {
	return "tilecore render -i <path> [-z <zoom> -minzoom <zoom> -maxzoom <zoom> -simplify <px> -j <jobs> -v]\n"
}
func (c *renderCmd) SetFlags(f *flag.FlagSet) {
	c.input.setFlags(f)
	f.UintVar(&c.minZoom, "minzoom", 0, "First zoom to render")
	f.UintVar(&c.maxZoom, "maxzoom", 14, "Last zoom to render")
	f.BoolVar(&c.hiRes, "hires", false, "Use the high resolution tile extent")
	f.Float64Var(&c.simplify, "simplify", 1, "Simplification tolerance in pixels (0 disables)")
	f.IntVar(&c.jobs, "j", runtime.NumCPU(), "Number of tiles rendered in parallel")
	f.BoolVar(&c.verbose, "v", false, "Print per-tile statistics")
}

type renderStats struct {
	tiles    atomic.Int64
	features atomic.Int64
	vertices atomic.Int64
}

func (c *renderCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.minZoom > c.maxZoom || c.maxZoom > tileindex.MaxZoom {
		log.Printf("invalid zoom range: %d-%d", c.minZoom, c.maxZoom)
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
	sources := []*tileindex.Source{store.Source()}

	for z := uint32(c.minZoom); z <= uint32(c.maxZoom); z++ {
		tiles := tileindex.GetTileCoordinates(sources, z)
		bar := progressbar.NewOptions(tiles.Len(),
			progressbar.OptionSetDescription(fmt.Sprintf("z%d", z)),
			progressbar.OptionShowCount(),
		)

		var stats renderStats
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(max(c.jobs, 1))
		for t := range tiles.Hilbert(z) {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				defer bar.Add(1)
				return c.renderTile(store, sources, t, z, &stats)
			})
		}
		err := g.Wait()
		bar.Finish()
		fmt.Println()
		if err != nil {
			log.Println(err)
			return subcommands.ExitFailure
		}

		fmt.Printf("z%d: %d tiles, %d features, %d vertices\n",
			z, stats.tiles.Load(), stats.features.Load(), stats.vertices.Load())
	}
	return subcommands.ExitSuccess
}

func (c *renderCmd) renderTile(store *shapes.Store, sources []*tileindex.Source, t tile.Coordinates, z uint32, stats *renderStats) error {
	bbox := mercator.NewBbox(t, z, c.hiRes)
	tolerance := c.simplify * bbox.XScale

	data := tileindex.GetTileData(sources, t, z)
	features, vertices := 0, 0
	for len(data) > 0 {
		layer := tileindex.GetObjectsAtSubLayer(data, data[0].Layer)
		data = data[len(layer):]

		for _, o := range layer {
			if o.MinZoom > z {
				continue
			}
			g, err := store.Retrieve(uint32(o.ObjectID))
			if err != nil {
				return fmt.Errorf("tile %d/%d/%d: %w", z, t.X, t.Y, err)
			}
			n, err := renderGeometry(g, bbox, tolerance)
			if err != nil {
				return fmt.Errorf("tile %d/%d/%d object %d: %w", z, t.X, t.Y, o.ObjectID, err)
			}
			if n > 0 {
				features++
				vertices += n
			}
		}
	}

	stats.tiles.Add(1)
	stats.features.Add(int64(features))
	stats.vertices.Add(int64(vertices))
	if c.verbose {
		log.Printf("%d/%d/%d: %d features, %d vertices", z, t.X, t.Y, features, vertices)
	}
	return nil
}

// renderGeometry clips g to the tile and simplifies it, returning the number
// of vertices left. Zero means the feature is omitted from the tile.
func renderGeometry(g geometry.Geometry, bbox mercator.Bbox, tolerance float64) (int, error) {
	switch g.Type() {
	case geometry.TypePoint:
		p, err := g.AsPoint()
		if err != nil {
			return 0, err
		}
		if !bbox.ClippingBox.Contains(p) {
			return 0, nil
		}
		return 1, nil

	case geometry.TypeLineString, geometry.TypeMultiLineString:
		n := 0
		for _, ls := range clipLines(g.Orb(), bbox.ClippingBox) {
			if tolerance > 0 {
				ls = geometry.SimplifyLineString(ls, tolerance)
			}
			if len(ls) >= 2 {
				n += len(ls)
			}
		}
		return n, nil

	case geometry.TypePolygon:
		mp, err := g.AsMultiPolygon()
		if err != nil {
			return 0, err
		}
		mp = geometry.ClipMultiPolygon(mp, bbox.ClippingBox)
		if tolerance > 0 {
			mp = geometry.SimplifyMultiPolygon(mp, tolerance)
		}
		mp = geometry.MakeValidMultiPolygon(mp)
		mp = mercator.RoundCoordinates(bbox, mp)
		n := 0
		for _, p := range mp {
			for _, r := range p {
				n += len(r)
			}
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: %v", geometry.ErrGeometryType, g.Type())
}

func clipLines(g orb.Geometry, box orb.Bound) orb.MultiLineString {
	switch clipped := clip.Geometry(box, orb.Clone(g)).(type) {
	case orb.LineString:
		return orb.MultiLineString{clipped}
	case orb.MultiLineString:
		return clipped
	}
	return nil
}
