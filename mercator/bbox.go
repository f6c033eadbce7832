package mercator

import (
	"math"

	"github.com/eak1mov/go-tilecore/geometry"
	"github.com/eak1mov/go-tilecore/tile"
	"github.com/paulmach/orb"
)

// Tile extents in pixels.
const (
	Extent      = 4096
	ExtentHiRes = 8192
)

// Bbox describes one tile being rendered: its bounds, the pixel transform
// and a clipping box slightly larger than the tile.
type Bbox struct {
	MinLon, MaxLon   float64
	MinLat, MaxLat   float64
	MinLatp, MaxLatp float64

	XMargin, YMargin float64
	XScale, YScale   float64

	Index tile.Coordinates
	Zoom  uint32
	HiRes bool

	ClippingBox orb.Bound
}

func NewBbox(index tile.Coordinates, zoom uint32, hires bool) Bbox {
	b := Bbox{Index: index, Zoom: zoom, HiRes: hires}

	b.MinLon = TileX2Lon(index.X, zoom)
	b.MaxLon = TileX2Lon(index.X+1, zoom)
	b.MinLat = TileY2Lat(index.Y+1, zoom)
	b.MaxLat = TileY2Lat(index.Y, zoom)
	b.MinLatp = TileY2Latp(index.Y+1, zoom)
	b.MaxLatp = TileY2Latp(index.Y, zoom)

	extent := float64(Extent)
	if hires {
		extent = ExtentHiRes
	}
	b.XMargin = (b.MaxLon - b.MinLon) / 200
	b.YMargin = (b.MaxLatp - b.MinLatp) / 200
	b.XScale = (b.MaxLon - b.MinLon) / extent
	b.YScale = (b.MaxLatp - b.MinLatp) / extent

	b.ClippingBox = orb.Bound{
		Min: orb.Point{b.MinLon - b.XMargin, b.MinLatp - b.YMargin},
		Max: orb.Point{b.MaxLon + b.XMargin, b.MaxLatp + b.YMargin},
	}
	return b
}

// ScaleLatpLon converts a coordinate to tile pixels, origin at the north-west corner.
func (b Bbox) ScaleLatpLon(latp, lon float64) (x, y int) {
	x = int(math.Floor((lon - b.MinLon) / b.XScale))
	y = int(math.Floor((b.MaxLatp - latp) / b.YScale))
	return x, y
}

// FloorLatpLon snaps a coordinate down onto the pixel grid of the tile.
func (b Bbox) FloorLatpLon(latp, lon float64) (float64, float64) {
	x, y := b.ScaleLatpLon(latp, lon)
	return b.MaxLatp - float64(y)*b.YScale, float64(x)*b.XScale + b.MinLon
}

// TileBox returns the tile bounds inset by one hi-res pixel.
func (b Bbox) TileBox() orb.Bound {
	xmargin := (b.MaxLon - b.MinLon) / ExtentHiRes
	ymargin := (b.MaxLatp - b.MinLatp) / ExtentHiRes
	return orb.Bound{
		Min: orb.Point{b.MinLon + xmargin, b.MinLatp + ymargin},
		Max: orb.Point{b.MaxLon - xmargin, b.MaxLatp - ymargin},
	}
}

// ExtendBox returns a box reaching two tiles beyond the west and north edges
// and almost one tile beyond the east and south edges.
func (b Bbox) ExtendBox() orb.Bound {
	width := b.MaxLon - b.MinLon
	height := b.MaxLatp - b.MinLatp
	return orb.Bound{
		Min: orb.Point{b.MinLon - width*2, b.MinLatp - height*(8191.0/8192.0)},
		Max: orb.Point{b.MaxLon + width*(8191.0/8192.0), b.MaxLatp + height*2},
	}
}

// RoundCoordinates snaps every vertex of mp onto the pixel grid of bbox,
// drops spikes and rings that collapse, and merges members that now overlap.
// Snapping may introduce self-intersections; they are not repaired here.
func RoundCoordinates(bbox Bbox, mp orb.MultiPolygon) orb.MultiPolygon {
	var result []orb.Polygon
	for _, p := range mp {
		var rounded orb.Polygon
		for i, r := range p {
			ring := make(orb.Ring, len(r))
			for j, pt := range r {
				latp, lon := bbox.FloorLatpLon(pt[1], pt[0])
				ring[j] = orb.Point{lon, latp}
			}
			ring = geometry.RemoveSpikes(ring)
			if len(ring) < 4 {
				if i == 0 {
					break
				}
				continue
			}
			rounded = append(rounded, ring)
		}
		if len(rounded) == 0 {
			continue
		}
		result = geometry.Combine(result, rounded)
	}
	return orb.MultiPolygon(result)
}
