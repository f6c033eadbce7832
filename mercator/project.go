package mercator

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// ToLatp maps a (lon, lat) point to (lon, latp), clamping latitude first.
func ToLatp(p orb.Point) orb.Point {
	return orb.Point{p[0], Lat2Latp(ClampLat(p[1]))}
}

// FromLatp maps a (lon, latp) point back to (lon, lat).
func FromLatp(p orb.Point) orb.Point {
	return orb.Point{p[0], Latp2Lat(p[1])}
}

// ProjectGeometry converts a WGS84 geometry to (lon, latp) coordinates.
// The input is modified in place, as with orb/project.
func ProjectGeometry(g orb.Geometry) orb.Geometry {
	return project.Geometry(g, ToLatp)
}
