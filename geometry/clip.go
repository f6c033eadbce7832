package geometry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/paulmach/orb"
)

var ErrInvalidEdge = errors.New("tilecore: intersect called on non-intersection")

// Edge bits of a clip box, as used by BitCode:
//
//	        left  mid  right
//	   top  1001  1000  1010
//	   mid  0001  0000  0010
//	bottom  0101  0100  0110
const (
	EdgeLeft   uint8 = 1
	EdgeRight  uint8 = 2
	EdgeBottom uint8 = 4
	EdgeTop    uint8 = 8
)

// BitCode returns the Cohen-Sutherland out-code of p relative to box.
// Points on the box boundary are inside.
func BitCode(p orb.Point, box orb.Bound) uint8 {
	var code uint8
	if p[0] < box.Min[0] {
		code |= EdgeLeft
	} else if p[0] > box.Max[0] {
		code |= EdgeRight
	}
	if p[1] < box.Min[1] {
		code |= EdgeBottom
	} else if p[1] > box.Max[1] {
		code |= EdgeTop
	}
	return code
}

// IntersectEdge intersects segment a-b with the line carrying one edge of box.
// It panics with ErrInvalidEdge if edge names none of the four edges.
func IntersectEdge(a, b orb.Point, edge uint8, box orb.Bound) orb.Point {
	switch {
	case edge&EdgeTop != 0:
		return orb.Point{a[0] + (b[0]-a[0])*(box.Max[1]-a[1])/(b[1]-a[1]), box.Max[1]}
	case edge&EdgeBottom != 0:
		return orb.Point{a[0] + (b[0]-a[0])*(box.Min[1]-a[1])/(b[1]-a[1]), box.Min[1]}
	case edge&EdgeRight != 0:
		return orb.Point{box.Max[0], a[1] + (b[1]-a[1])*(box.Max[0]-a[0])/(b[0]-a[0])}
	case edge&EdgeLeft != 0:
		return orb.Point{box.Min[0], a[1] + (b[1]-a[1])*(box.Min[0]-a[0])/(b[0]-a[0])}
	}
	panic(fmt.Errorf("%w: edge code %d", ErrInvalidEdge, edge))
}

// ClipRing clips a ring to box with the Sutherland-Hodgman algorithm, one box
// edge at a time. A ring entirely outside box becomes empty. A closed input
// yields a closed result.
func ClipRing(ring orb.Ring, box orb.Bound) orb.Ring {
	if len(ring) == 0 {
		return nil
	}
	closed := len(ring) > 1 && ring.Closed()

	points := ring
	for edge := EdgeLeft; edge <= EdgeTop; edge <<= 1 {
		result := make(orb.Ring, 0, len(points)+4)
		prev := points[len(points)-1]
		prevInside := BitCode(prev, box)&edge == 0

		for _, p := range points {
			inside := BitCode(p, box)&edge == 0
			if inside != prevInside {
				result = append(result, IntersectEdge(prev, p, edge, box))
			}
			if inside {
				result = append(result, p)
			}
			prev, prevInside = p, inside
		}

		points = result
		if len(points) == 0 {
			return nil
		}
	}

	if closed && points[0] != points[len(points)-1] {
		points = append(points, points[0])
	}
	return points
}

// ClipPolygon clips every ring of p to box. If the outer ring vanishes the
// result is nil; vanished inner rings are dropped.
func ClipPolygon(p orb.Polygon, box orb.Bound) orb.Polygon {
	if len(p) == 0 {
		return nil
	}
	outer := ClipRing(p[0], box)
	if len(outer) == 0 {
		return nil
	}

	result := orb.Polygon{outer}
	for _, inner := range p[1:] {
		if clipped := ClipRing(inner, box); len(clipped) > 0 {
			result = append(result, clipped)
		}
	}
	return result
}

// ClipMultiPolygon clips each member of mp and drops those left empty.
func ClipMultiPolygon(mp orb.MultiPolygon, box orb.Bound) orb.MultiPolygon {
	result := make(orb.MultiPolygon, 0, len(mp))
	for _, p := range mp {
		result = append(result, ClipPolygon(p, box))
	}
	return slices.DeleteFunc(result, func(p orb.Polygon) bool { return len(p) == 0 })
}
