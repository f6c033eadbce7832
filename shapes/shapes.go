// Package shapes holds geometries from auxiliary sources (such as
// shapefiles), registers them in a base zoom tile index for rendering, and
// optionally indexes them per named layer for spatial queries.
//
// Coordinates are (lon, latp) pairs as produced by mercator.ProjectGeometry.
package shapes

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/paulmach/orb"

	"github.com/eak1mov/go-tilecore/geometry"
	"github.com/eak1mov/go-tilecore/geomstore"
	"github.com/eak1mov/go-tilecore/mercator"
	"github.com/eak1mov/go-tilecore/tile"
	"github.com/eak1mov/go-tilecore/tileindex"
)

var ErrNoLayer = errors.New("tilecore: no indexed layer")

// Feature describes one geometry to add.
type Feature struct {
	Layer     uint8
	LayerName string
	Type      geometry.Type
	Geometry  geometry.Geometry

	// Indexed features are added to the spatial index of LayerName,
	// which must have been created with CreateNamedLayerIndex.
	Indexed bool
	Named   bool
	Name    string

	Attributes tileindex.AttributeRef
	MinZoom    uint32
}

type config struct {
	logger    *slog.Logger
	indexOpts []tileindex.Option
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
		c.indexOpts = append(c.indexOpts, tileindex.WithLogger(logger))
	}
}

// WithIndexOptions passes options to the underlying tile index.
func WithIndexOptions(opts ...tileindex.Option) Option {
	return func(c *config) { c.indexOpts = append(c.indexOpts, opts...) }
}

// Builder ingests features. It is safe for concurrent use until Freeze.
type Builder struct {
	baseZoom   uint32
	tiles      *tileindex.Builder
	geometries geomstore.Store
	logger     *slog.Logger

	mu     sync.Mutex
	nextID uint32
	layers map[string]*LayerIndex
	cache  map[uint32]*tileindex.OutputObject
	names  map[uint32]string
	frozen bool
}

func NewBuilder(baseZoom uint32, geometries geomstore.Store, opts ...Option) (*Builder, error) {
	c := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&c)
	}

	tiles, err := tileindex.NewBuilder(baseZoom, c.indexOpts...)
	if err != nil {
		return nil, err
	}
	return &Builder{
		baseZoom:   baseZoom,
		tiles:      tiles,
		geometries: geometries,
		logger:     c.logger,
		layers:     make(map[string]*LayerIndex),
		cache:      make(map[uint32]*tileindex.OutputObject),
		names:      make(map[uint32]string),
	}, nil
}

func (b *Builder) checkWritable() {
	if b.frozen {
		panic("tilecore: write to frozen shape store")
	}
}

// CreateNamedLayerIndex registers an empty spatial index under name,
// replacing any existing one.
func (b *Builder) CreateNamedLayerIndex(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkWritable()
	b.layers[name] = newLayerIndex()
}

// AddObject stores f.Geometry, creates its output object and registers it in
// the base zoom tiles it covers: a point in one tile, a line in every tile
// along its path, a polygon in every tile of its bounding box.
func (b *Builder) AddObject(f Feature) (*tileindex.OutputObject, error) {
	if got := f.Geometry.Type(); got != f.Type {
		return nil, fmt.Errorf("%w: feature declared %v, geometry is %v", geometry.ErrGeometryType, f.Type, got)
	}
	box := f.Geometry.Bound()

	b.mu.Lock()
	b.checkWritable()
	if _, ok := b.layers[f.LayerName]; f.Indexed && !ok {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrNoLayer, f.LayerName)
	}
	id := b.nextID
	b.nextID++
	b.mu.Unlock()

	if err := geomstore.Put(b.geometries, id, f.Geometry); err != nil {
		return nil, fmt.Errorf("storing geometry %d: %w", id, err)
	}

	ref := b.tiles.CreateObject(tileindex.OutputObject{
		GeomType:   f.Type,
		Layer:      f.Layer,
		MinZoom:    f.MinZoom,
		ObjectID:   uint64(id),
		Attributes: f.Attributes,
	})

	b.mu.Lock()
	if f.Indexed {
		b.layers[f.LayerName].insert(box, id)
		if f.Named {
			b.names[id] = f.Name
		}
	}
	b.cache[id] = ref
	b.mu.Unlock()

	if err := b.addToTileIndex(ref, f.Geometry); err != nil {
		return nil, err
	}
	return ref, nil
}

func (b *Builder) addToTileIndex(ref *tileindex.OutputObject, g geometry.Geometry) error {
	switch g.Type() {
	case geometry.TypePoint:
		p, err := g.AsPoint()
		if err != nil {
			return err
		}
		b.tiles.AddObject(tile.Coordinates{
			X: mercator.Lon2TileX(p[0], b.baseZoom),
			Y: mercator.Latp2TileY(p[1], b.baseZoom),
		}, ref)

	case geometry.TypeLineString:
		ls, err := g.AsLineString()
		if err != nil {
			return err
		}
		tiles := tile.NewCoordinatesSet()
		mercator.InsertIntermediateTiles(ls, b.baseZoom, tiles)
		b.addToTiles(ref, tiles)

	case geometry.TypeMultiLineString:
		mls, err := g.AsMultiLineString()
		if err != nil {
			return err
		}
		tiles := tile.NewCoordinatesSet()
		for _, ls := range mls {
			mercator.InsertIntermediateTiles(ls, b.baseZoom, tiles)
		}
		b.addToTiles(ref, tiles)

	case geometry.TypePolygon:
		if _, err := g.AsMultiPolygon(); err != nil {
			return err
		}
		b.addToTileIndexByBbox(ref, g.Bound())

	default:
		return fmt.Errorf("%w: %v", geometry.ErrGeometryType, g.Type())
	}
	return nil
}

func (b *Builder) addToTiles(ref *tileindex.OutputObject, tiles tile.CoordinatesSet) {
	for c := range tiles.All() {
		b.tiles.AddObject(c, ref)
	}
}

// addToTileIndexByBbox registers ref in every tile of the bounding box.
// Exact per-tile clipping happens at render time.
func (b *Builder) addToTileIndexByBbox(ref *tileindex.OutputObject, box orb.Bound) {
	minX := mercator.Lon2TileX(box.Min[0], b.baseZoom)
	maxX := mercator.Lon2TileX(box.Max[0], b.baseZoom)
	minY := mercator.Latp2TileY(box.Max[1], b.baseZoom)
	maxY := mercator.Latp2TileY(box.Min[1], b.baseZoom)
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			b.tiles.AddObject(tile.Coordinates{X: x, Y: y}, ref)
		}
	}
}

// Freeze ends ingestion and returns the query side of the store.
// Any later write to b panics.
func (b *Builder) Freeze() *Store {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.checkWritable()
	b.frozen = true
	for _, idx := range b.layers {
		idx.build()
	}

	b.logger.Debug("tilecore: shape store frozen", "geometries", b.nextID, "layers", len(b.layers))
	return &Store{
		tiles:      b.tiles.Freeze(),
		geometries: b.geometries,
		logger:     b.logger,
		layers:     b.layers,
		cache:      b.cache,
		names:      b.names,
	}
}
