// Package geometry implements point-in-polygon containment on the integer
// map grid, plus conversions of map entities into orb geometries for
// bounds reporting and GeoJSON/WKT export.
//
// Containment uses the crossing-number (ray-casting) rule over the polygon
// nodes treated as a closed loop:
//
//	for each edge (prev, cur):
//	    cur == P                      -> inside
//	    prev.Y == cur.Y               -> skip
//	    edge straddles P.Y and P.X < intercept -> flip parity
//
// The intercept uses truncating integer division, so results on and near
// slanted edges follow integer arithmetic rather than exact geometry. The
// orb conversions are for reporting only; queries never go through them.
package geometry
