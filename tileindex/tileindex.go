// Package tileindex maps tile coordinates at a fixed base zoom to the
// features drawn in them, and aggregates that index to coarser zooms.
//
// A data source is filled through a Builder, which serializes concurrent
// writers with a single lock. Freeze ends the write phase and returns a
// Source; its queries take no locks and are safe for concurrent use because
// nothing can be written to a frozen index.
package tileindex

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/eak1mov/go-tilecore/tile"
)

// MaxZoom is the deepest zoom whose coordinates fit in tile.Coordinates.
const MaxZoom = tile.MaxZoom

var ErrZoomTooDeep = errors.New("tilecore: zoom level too deep")

type config struct {
	chunkSize int
	logger    *slog.Logger
}

type Option func(*config)

// WithChunkSize sets how many objects each arena chunk holds.
func WithChunkSize(n int) Option {
	return func(c *config) { c.chunkSize = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Builder collects objects and their tile placements during ingestion.
type Builder struct {
	mu       sync.Mutex
	baseZoom uint32
	logger   *slog.Logger
	objects  *Arena[OutputObject]
	index    map[tile.Coordinates][]*OutputObject
	frozen   bool
}

func NewBuilder(baseZoom uint32, opts ...Option) (*Builder, error) {
	if baseZoom > MaxZoom {
		return nil, fmt.Errorf("%w: base zoom %d", ErrZoomTooDeep, baseZoom)
	}
	c := config{
		chunkSize: defaultChunkSize,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &Builder{
		baseZoom: baseZoom,
		logger:   c.logger,
		objects:  NewArena[OutputObject](c.chunkSize),
		index:    make(map[tile.Coordinates][]*OutputObject),
	}, nil
}

func (b *Builder) BaseZoom() uint32 {
	return b.baseZoom
}

func (b *Builder) checkWritable() {
	if b.frozen {
		panic("tilecore: write to frozen tile index")
	}
}

// CreateObject stores a copy of o and returns a reference that stays valid
// for the lifetime of the index.
func (b *Builder) CreateObject(o OutputObject) *OutputObject {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkWritable()
	return b.objects.Append(o)
}

// AddObject appends ref to the objects drawn in the base zoom tile c.
func (b *Builder) AddObject(c tile.Coordinates, ref *OutputObject) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkWritable()
	b.index[c] = append(b.index[c], ref)
}

// Clear drops all tile placements. Objects already created stay valid.
func (b *Builder) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkWritable()
	b.index = make(map[tile.Coordinates][]*OutputObject)
}

// Freeze ends the write phase. Any later write to b panics.
func (b *Builder) Freeze() *Source {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkWritable()
	b.frozen = true

	coords := slices.SortedFunc(maps.Keys(b.index), tile.Compare)
	b.logger.Debug("tilecore: tile index frozen",
		"baseZoom", b.baseZoom, "objects", b.objects.Len(), "tiles", len(coords))

	return &Source{
		baseZoom: b.baseZoom,
		objects:  b.objects,
		index:    b.index,
		coords:   coords,
	}
}

// Source is a frozen tile index. All methods are safe for concurrent use.
type Source struct {
	baseZoom uint32
	objects  *Arena[OutputObject]
	index    map[tile.Coordinates][]*OutputObject
	coords   []tile.Coordinates // populated tiles, lexicographic
}

func (s *Source) BaseZoom() uint32 {
	return s.baseZoom
}

// Len returns the number of objects created in the source.
func (s *Source) Len() int {
	return s.objects.Len()
}

// Objects returns every object of the source in creation order.
func (s *Source) Objects() []*OutputObject {
	return slices.Collect(s.objects.All())
}

func checkZoom(zoom uint32) {
	if zoom > MaxZoom {
		panic(fmt.Sprintf("tilecore: zoom %d exceeds MaxZoom", zoom))
	}
}

// MergeTileCoordsAtZoom inserts into dst the tiles of zoom that hold any object.
// Below the base zoom each populated tile maps to its ancestor; above it, to
// all of its descendants. It panics if zoom exceeds MaxZoom.
func (s *Source) MergeTileCoordsAtZoom(zoom uint32, dst tile.CoordinatesSet) {
	checkZoom(zoom)
	switch {
	case zoom <= s.baseZoom:
		shift := s.baseZoom - zoom
		for _, c := range s.coords {
			dst.Insert(c.Shift(shift))
		}
	default:
		shift := zoom - s.baseZoom
		scale := uint32(1) << shift
		for _, c := range s.coords {
			for x := range scale {
				for y := range scale {
					dst.Insert(tile.Coordinates{X: c.X<<shift + x, Y: c.Y<<shift + y})
				}
			}
		}
	}
}

// MergeSingleTileDataAtZoom appends to dst the objects of tile c at zoom:
// base tiles in lexicographic order, each in insertion order. A tile outside
// the grid of zoom holds nothing. It panics if zoom exceeds MaxZoom.
func (s *Source) MergeSingleTileDataAtZoom(c tile.Coordinates, zoom uint32, dst []*OutputObject) []*OutputObject {
	checkZoom(zoom)
	if !c.Valid(zoom) {
		return dst
	}
	if zoom >= s.baseZoom {
		return append(dst, s.index[c.Shift(zoom-s.baseZoom)]...)
	}

	shift := s.baseZoom - zoom
	minX, maxX := uint64(c.X)<<shift, (uint64(c.X)+1)<<shift
	minY, maxY := uint64(c.Y)<<shift, (uint64(c.Y)+1)<<shift

	start, _ := slices.BinarySearchFunc(s.coords, minX, func(c tile.Coordinates, x uint64) int {
		return cmp.Compare(uint64(c.X), x)
	})
	for _, src := range s.coords[start:] {
		if uint64(src.X) >= maxX {
			break
		}
		if uint64(src.Y) >= minY && uint64(src.Y) < maxY {
			dst = append(dst, s.index[src]...)
		}
	}
	return dst
}
