// Package mercator implements spherical Mercator projection and tile math.
//
// Geographic coordinates are handled as (lon, latp) pairs, where latp is the
// projected latitude in degree-like units: latp spans [-180, 180] over the
// square Web Mercator world, so tiles are square in (lon, latp) space.
package mercator

import (
	"math"

	"github.com/eak1mov/go-tilecore/tile"
)

// Latitude limits of the square Web Mercator world.
// Projection of latitudes outside [MinLat, MaxLat] is undefined; callers must clamp.
const (
	MaxLat = 85.0511
	MinLat = -MaxLat
)

// RadiusMeter is the mean Earth radius.
const RadiusMeter = 6371000.0

// E7 is the fixed-point scale of LatpLon.
const E7 = 10000000.0

// LatpLon is a fixed-point (projected latitude, longitude) pair scaled by E7.
type LatpLon struct {
	Latp int32
	Lon  int32
}

func deg2rad(deg float64) float64 { return deg * math.Pi / 180 }
func rad2deg(rad float64) float64 { return rad * 180 / math.Pi }

// Lat2Latp projects latitude (spherical Mercator).
func Lat2Latp(lat float64) float64 {
	return rad2deg(math.Log(math.Tan(deg2rad(lat+90) / 2)))
}

func Latp2Lat(latp float64) float64 {
	return rad2deg(math.Atan(math.Exp(deg2rad(latp)))*2) - 90
}

// ClampLat limits lat to the projectable range.
func ClampLat(lat float64) float64 {
	return min(max(lat, MinLat), MaxLat)
}

func Lon2TileXf(lon float64, z uint32) float64 {
	return math.Ldexp((lon+180)/360, int(z))
}

func Latp2TileYf(latp float64, z uint32) float64 {
	return math.Ldexp((180-latp)/360, int(z))
}

func Lat2TileYf(lat float64, z uint32) float64 {
	return Latp2TileYf(Lat2Latp(lat), z)
}

// tileIndex truncates a fractional tile position, clamped to the grid of zoom z.
func tileIndex(f float64, z uint32) uint32 {
	if f <= 0 || math.IsNaN(f) {
		return 0
	}
	limit := uint32(1<<z) - 1
	if f >= float64(limit) {
		return limit
	}
	return uint32(f)
}

// Lon2TileX returns the column containing lon at zoom z.
func Lon2TileX(lon float64, z uint32) uint32 {
	return tileIndex(Lon2TileXf(lon, z), z)
}

// Latp2TileY returns the row containing latp at zoom z. Rows grow southwards.
func Latp2TileY(latp float64, z uint32) uint32 {
	return tileIndex(Latp2TileYf(latp, z), z)
}

func Lat2TileY(lat float64, z uint32) uint32 {
	return tileIndex(Lat2TileYf(lat, z), z)
}

// TileX2Lon returns the western edge of column x.
func TileX2Lon(x, z uint32) float64 {
	return math.Ldexp(float64(x), -int(z))*360 - 180
}

// TileY2Latp returns the northern edge of row y.
func TileY2Latp(y, z uint32) float64 {
	return 180 - math.Ldexp(float64(y), -int(z))*360
}

func TileY2Lat(y, z uint32) float64 {
	return Latp2Lat(TileY2Latp(y, z))
}

// LatpLonToIndex returns the tile containing ll at baseZoom.
func LatpLonToIndex(ll LatpLon, baseZoom uint32) tile.Coordinates {
	return tile.Coordinates{
		X: Lon2TileX(float64(ll.Lon)/E7, baseZoom),
		Y: Latp2TileY(float64(ll.Latp)/E7, baseZoom),
	}
}

// DegpToMeter converts a distance in projected degrees at latp to meters.
func DegpToMeter(degp, latp float64) float64 {
	return RadiusMeter * deg2rad(degp) * math.Cos(deg2rad(Latp2Lat(latp)))
}

func MeterToDegp(meter, latp float64) float64 {
	return rad2deg((1 / RadiusMeter) * (meter / math.Cos(deg2rad(Latp2Lat(latp)))))
}
