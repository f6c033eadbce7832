// Package geomstore keeps full-resolution feature geometries by synthetic id.
package geomstore

import (
	"errors"
	"sync"

	"github.com/eak1mov/go-tilecore/geometry"
	"github.com/paulmach/orb"
)

var ErrNotFound = errors.New("tilecore: geometry not found")

// Store persists geometries under caller-assigned ids.
// Implementations must be safe for concurrent use.
type Store interface {
	StorePoint(id uint32, p orb.Point) error
	StoreLineString(id uint32, ls orb.LineString) error
	StoreMultiLineString(id uint32, mls orb.MultiLineString) error
	StoreMultiPolygon(id uint32, mp orb.MultiPolygon) error

	// Retrieve returns the geometry stored under id, or ErrNotFound.
	Retrieve(id uint32) (geometry.Geometry, error)
}

// Put stores g through the method of s matching its type.
func Put(s Store, id uint32, g geometry.Geometry) error {
	switch g.Type() {
	case geometry.TypePoint:
		p, err := g.AsPoint()
		if err != nil {
			return err
		}
		return s.StorePoint(id, p)
	case geometry.TypeLineString:
		ls, err := g.AsLineString()
		if err != nil {
			return err
		}
		return s.StoreLineString(id, ls)
	case geometry.TypeMultiLineString:
		mls, err := g.AsMultiLineString()
		if err != nil {
			return err
		}
		return s.StoreMultiLineString(id, mls)
	case geometry.TypePolygon:
		mp, err := g.AsMultiPolygon()
		if err != nil {
			return err
		}
		return s.StoreMultiPolygon(id, mp)
	default:
		_, err := g.AsPoint()
		return err
	}
}

// Memory is an in-process Store.
type Memory struct {
	mu         sync.RWMutex
	geometries map[uint32]geometry.Geometry
}

func NewMemory() *Memory {
	return &Memory{geometries: make(map[uint32]geometry.Geometry)}
}

func (m *Memory) put(id uint32, g geometry.Geometry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.geometries[id] = g
	return nil
}

func (m *Memory) StorePoint(id uint32, p orb.Point) error {
	return m.put(id, geometry.FromPoint(p))
}

func (m *Memory) StoreLineString(id uint32, ls orb.LineString) error {
	return m.put(id, geometry.FromLineString(ls))
}

func (m *Memory) StoreMultiLineString(id uint32, mls orb.MultiLineString) error {
	return m.put(id, geometry.FromMultiLineString(mls))
}

func (m *Memory) StoreMultiPolygon(id uint32, mp orb.MultiPolygon) error {
	return m.put(id, geometry.FromMultiPolygon(mp))
}

func (m *Memory) Retrieve(id uint32) (geometry.Geometry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.geometries[id]
	if !ok {
		return geometry.Geometry{}, ErrNotFound
	}
	return g, nil
}
