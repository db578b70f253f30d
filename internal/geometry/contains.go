package geometry

import "github.com/mmr-tortoise/mapserver/internal/model"

// Contains reports whether p lies inside poly by crossing-number parity.
//
// A point equal to any node is inside. A polygon without nodes contains
// nothing. Horizontal edges are skipped before the intercept is computed,
// which keeps the division below away from a zero denominator.
func Contains(poly model.Polygon, p model.Point) bool {
	n := len(poly.Nodes)
	if n == 0 {
		return false
	}

	inside := false
	prev := poly.Nodes[n-1]
	for _, cur := range poly.Nodes {
		if cur.X == p.X && cur.Y == p.Y {
			return true
		}

		if prev.Y != cur.Y && (cur.Y > p.Y) != (prev.Y > p.Y) {
			if p.X < intercept(prev, cur, p.Y) {
				inside = !inside
			}
		}
		prev = cur
	}
	return inside
}

// intercept returns the x coordinate where the edge (prev, cur) crosses the
// horizontal line at height y. The caller guarantees prev.Y != cur.Y.
func intercept(prev, cur model.Node, y int) int {
	return (prev.X-cur.X)*(y-cur.Y)/(prev.Y-cur.Y) + cur.X
}
