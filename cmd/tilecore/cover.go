package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/eak1mov/go-tilecore/mercator"
	"github.com/eak1mov/go-tilecore/tileindex"
	"github.com/google/subcommands"
)

type coverCmd struct {
	input inputFlags
	zoom  int
	fill  bool
}

func (c *coverCmd) Name() string     { return "cover" }
func (c *coverCmd) Synopsis() string { return "list tiles covered by features" }
func (c *coverCmd) Usage() string {
	return "tilecore cover -i <path> [-z <zoom> -at <zoom> -fill -db <path>]\n"
}
func (c *coverCmd) SetFlags(f *flag.FlagSet) {
	c.input.setFlags(f)
	f.IntVar(&c.zoom, "at", -1, "Zoom to list tiles at (default: base zoom)")
	f.BoolVar(&c.fill, "fill", false, "Fill vertical gaps in each tile column")
}

func (c *coverCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.zoom > tileindex.MaxZoom {
		log.Printf("zoom %d exceeds max zoom %d", c.zoom, tileindex.MaxZoom)
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

	zoom := uint32(c.input.baseZoom)
	if c.zoom >= 0 {
		zoom = uint32(c.zoom)
	}
	tiles := tileindex.GetTileCoordinates([]*tileindex.Source{store.Source()}, zoom)
	if c.fill {
		mercator.FillCoveredTiles(tiles)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for t := range tiles.All() {
		fmt.Fprintf(w, "%d/%d/%d\n", zoom, t.X, t.Y)
	}
	return subcommands.ExitSuccess
}
