package shapes

import (
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/eak1mov/go-tilecore/geometry"
	"github.com/eak1mov/go-tilecore/geomstore"
	"github.com/eak1mov/go-tilecore/tileindex"
)

// Store is a frozen shape store. All methods are safe for concurrent use.
type Store struct {
	tiles      *tileindex.Source
	geometries geomstore.Store
	logger     *slog.Logger

	layers map[string]*LayerIndex
	cache  map[uint32]*tileindex.OutputObject
	names  map[uint32]string
}

// Source returns the tile index the features were registered in.
func (s *Store) Source() *tileindex.Source {
	return s.tiles
}

func (s *Store) Retrieve(id uint32) (geometry.Geometry, error) {
	return s.geometries.Retrieve(id)
}

// Object returns the output object created for id, or nil.
func (s *Store) Object(id uint32) *tileindex.OutputObject {
	return s.cache[id]
}

// QueryMatchingGeometries returns the ids in layerName selected by
// indexQuery for box and whose cached output object is accepted by check.
// A nil check accepts every candidate. With once set, at most the
// first accepted id is returned. An unknown layer yields no ids.
func (s *Store) QueryMatchingGeometries(
	layerName string,
	once bool,
	box orb.Bound,
	indexQuery IndexQuery,
	check func(obj *tileindex.OutputObject) bool,
) []uint32 {
	idx, ok := s.layers[layerName]
	if !ok {
		s.logger.Warn("tilecore: query on unknown layer", "layer", layerName)
		return nil
	}

	var ids []uint32
	for _, id := range indexQuery(idx, box) {
		if check != nil && !check(s.cache[id]) {
			continue
		}
		ids = append(ids, id)
		if once {
			break
		}
	}
	return ids
}

// IntersectingGeometries returns the ids in layerName whose geometry intersects g.
func (s *Store) IntersectingGeometries(layerName string, once bool, g orb.Geometry) []uint32 {
	return s.QueryMatchingGeometries(layerName, once, g.Bound(), Intersecting, func(obj *tileindex.OutputObject) bool {
		stored, err := s.geometries.Retrieve(uint32(obj.ObjectID))
		if err != nil {
			s.logger.Warn("tilecore: retrieve failed", "id", obj.ObjectID, "err", err)
			return false
		}
		return geometry.Intersects(stored.Orb(), g)
	})
}

// NamesOfGeometries returns the names of the named geometries among ids.
func (s *Store) NamesOfGeometries(ids []uint32) []string {
	var names []string
	for _, id := range ids {
		if name, ok := s.names[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// HasLayer reports whether a spatial index exists for name.
func (s *Store) HasLayer(name string) bool {
	_, ok := s.layers[name]
	return ok
}
