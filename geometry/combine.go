package geometry

import (
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	sf "github.com/peterstace/simplefeatures/geom"
)

func toSF(g orb.Geometry) (sf.Geometry, error) {
	data, err := wkb.Marshal(g)
	if err != nil {
		return sf.Geometry{}, err
	}
	return sf.UnmarshalWKB(data)
}

func fromSF(g sf.Geometry) (orb.Geometry, error) {
	return wkb.Unmarshal(g.AsBinary())
}

// Intersects reports whether a and b share at least one point.
// Geometries that cannot be represented as valid simple features never intersect.
func Intersects(a, b orb.Geometry) bool {
	ga, err := toSF(a)
	if err != nil {
		return false
	}
	gb, err := toSF(b)
	if err != nil {
		return false
	}
	return sf.Intersects(ga, gb)
}

// union returns the union of a and b when it is a single connected polygon.
func union(a, b orb.Polygon) (orb.Polygon, bool) {
	ga, err := toSF(a)
	if err != nil {
		return nil, false
	}
	gb, err := toSF(b)
	if err != nil {
		return nil, false
	}
	u, err := sf.Union(ga, gb)
	if err != nil {
		return nil, false
	}
	g, err := fromSF(u)
	if err != nil {
		return nil, false
	}
	switch g := g.(type) {
	case orb.Polygon:
		return g, true
	case orb.MultiPolygon:
		if len(g) == 1 {
			return g[0], true
		}
	}
	return nil, false
}

// Combine appends p to polygons and then folds overlapping members into p:
// each member that intersects the newest element is replaced, together with
// it, by their union if that union is one connected polygon. Members whose
// union would be disconnected stay separate.
func Combine(polygons []orb.Polygon, p orb.Polygon) []orb.Polygon {
	result := append(polygons, p)
	for i := 0; i < len(result)-1; {
		last := len(result) - 1
		if !Intersects(result[i], result[last]) {
			i++
			continue
		}
		merged, ok := union(result[i], result[last])
		if !ok {
			i++
			continue
		}
		result[last] = merged
		result = slices.Delete(result, i, i+1)
	}
	return result
}
