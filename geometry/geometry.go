// Package geometry implements topology-aware simplification, rectangular
// clipping and validity repair on top of github.com/paulmach/orb geometries.
package geometry

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var ErrGeometryType = errors.New("tilecore: unexpected geometry type")

// Type is the kind of geometry carried by a feature.
type Type uint8

const (
	TypeUnknown Type = iota
	TypePoint
	TypeLineString
	TypeMultiLineString
	TypePolygon
)

func (t Type) String() string {
	switch t {
	case TypePoint:
		return "point"
	case TypeLineString:
		return "linestring"
	case TypeMultiLineString:
		return "multilinestring"
	case TypePolygon:
		return "polygon"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Geometry holds exactly one of a point, a linestring, a multi-linestring or
// a multi-polygon. Use the As* accessors to extract the variant; each one
// checks the tag and reports ErrGeometryType on mismatch.
type Geometry struct {
	typ  Type
	geom orb.Geometry
}

// New wraps g. A single polygon is promoted to a one-member multi-polygon.
func New(g orb.Geometry) (Geometry, error) {
	switch g := g.(type) {
	case orb.Point:
		return Geometry{TypePoint, g}, nil
	case orb.LineString:
		return Geometry{TypeLineString, g}, nil
	case orb.MultiLineString:
		return Geometry{TypeMultiLineString, g}, nil
	case orb.Polygon:
		return Geometry{TypePolygon, orb.MultiPolygon{g}}, nil
	case orb.MultiPolygon:
		return Geometry{TypePolygon, g}, nil
	case nil:
		return Geometry{}, fmt.Errorf("%w: nil", ErrGeometryType)
	default:
		return Geometry{}, fmt.Errorf("%w: %s", ErrGeometryType, g.GeoJSONType())
	}
}

func FromPoint(p orb.Point) Geometry { return Geometry{TypePoint, p} }
func FromLineString(ls orb.LineString) Geometry { return Geometry{TypeLineString, ls} }
func FromMultiLineString(mls orb.MultiLineString) Geometry { return Geometry{TypeMultiLineString, mls} }
func FromMultiPolygon(mp orb.MultiPolygon) Geometry { return Geometry{TypePolygon, mp} }

func (g Geometry) Type() Type {
	return g.typ
}

// Orb returns the wrapped geometry, or nil for the zero Geometry.
func (g Geometry) Orb() orb.Geometry {
	return g.geom
}

// Bound returns the envelope of the geometry.
func (g Geometry) Bound() orb.Bound {
	if g.geom == nil {
		return orb.Bound{}
	}
	return g.geom.Bound()
}

func (g Geometry) mismatch(want Type) error {
	return fmt.Errorf("%w: have %v, want %v", ErrGeometryType, g.typ, want)
}

func (g Geometry) AsPoint() (orb.Point, error) {
	if p, ok := g.geom.(orb.Point); ok && g.typ == TypePoint {
		return p, nil
	}
	return orb.Point{}, g.mismatch(TypePoint)
}

func (g Geometry) AsLineString() (orb.LineString, error) {
	if ls, ok := g.geom.(orb.LineString); ok && g.typ == TypeLineString {
		return ls, nil
	}
	return nil, g.mismatch(TypeLineString)
}

func (g Geometry) AsMultiLineString() (orb.MultiLineString, error) {
	if mls, ok := g.geom.(orb.MultiLineString); ok && g.typ == TypeMultiLineString {
		return mls, nil
	}
	return nil, g.mismatch(TypeMultiLineString)
}

func (g Geometry) AsMultiPolygon() (orb.MultiPolygon, error) {
	if mp, ok := g.geom.(orb.MultiPolygon); ok && g.typ == TypePolygon {
		return mp, nil
	}
	return nil, g.mismatch(TypePolygon)
}
