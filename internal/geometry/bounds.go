package geometry

import (
	"github.com/paulmach/orb"

	"github.com/mmr-tortoise/mapserver/internal/model"
)

// Ring converts the polygon nodes into a closed orb.Ring. The first node is
// repeated at the end unless the file already closed the loop. A polygon
// without nodes yields nil.
func Ring(poly model.Polygon) orb.Ring {
	if len(poly.Nodes) == 0 {
		return nil
	}

	ring := make(orb.Ring, 0, len(poly.Nodes)+1)
	for _, n := range poly.Nodes {
		ring = append(ring, toOrb(n.Point()))
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// Bound returns the axis-aligned bounding box of the polygon nodes.
// The boolean is false for a polygon without nodes.
func Bound(poly model.Polygon) (orb.Bound, bool) {
	if len(poly.Nodes) == 0 {
		return orb.Bound{}, false
	}
	return Ring(poly).Bound(), true
}

// MapBound returns the bounding box of every valid polygon and marking.
// The boolean is false when there is nothing to bound.
func MapBound(polys []model.Polygon, marks []model.Marking) (orb.Bound, bool) {
	var (
		bound orb.Bound
		found bool
	)

	extend := func(p orb.Point) {
		if !found {
			bound = p.Bound()
			found = true
			return
		}
		bound = bound.Extend(p)
	}

	for _, poly := range polys {
		if !poly.Valid() {
			continue
		}
		for _, n := range poly.Nodes {
			extend(toOrb(n.Point()))
		}
	}
	for _, m := range marks {
		if m.Valid() {
			extend(toOrb(m.Position()))
		}
	}
	return bound, found
}

func toOrb(p model.Point) orb.Point {
	return orb.Point{float64(p.X), float64(p.Y)}
}
