package mapstore

import (
	"slices"

	"github.com/mmr-tortoise/mapserver/internal/geometry"
	"github.com/mmr-tortoise/mapserver/internal/mapfile"
	"github.com/mmr-tortoise/mapserver/internal/model"
)

// Map is an immutable snapshot of the polygons and markings of one map file,
// in file order. Invalid entities keep their slots.
type Map struct {
	polygons []model.Polygon
	markings []model.Marking
}

// Stats summarizes the contents of a Map.
type Stats struct {
	Polygons        int `json:"polygons"`
	InvalidPolygons int `json:"invalidPolygons"`
	Markings        int `json:"markings"`
	InvalidMarkings int `json:"invalidMarkings"`
}

// New builds a Map from the given entities. The slices (including each
// polygon's node slice) are copied, so later changes by the caller do not
// reach the Map.
func New(polygons []model.Polygon, markings []model.Marking) *Map {
	polys := make([]model.Polygon, len(polygons))
	for i, p := range polygons {
		p.Nodes = slices.Clone(p.Nodes)
		polys[i] = p
	}
	return &Map{
		polygons: polys,
		markings: slices.Clone(markings),
	}
}

// FromResult builds a Map from a parse result.
func FromResult(res *mapfile.Result) *Map {
	if res == nil {
		return New(nil, nil)
	}
	return New(res.Polygons, res.Markings)
}

// Load parses the map file at path and builds a Map from it. The parse
// result is returned as well so callers can report its issues.
func Load(path string, opts ...mapfile.Option) (*Map, *mapfile.Result, error) {
	res, err := mapfile.LoadFile(path, opts...)
	if err != nil {
		return nil, nil, err
	}
	return FromResult(res), res, nil
}

// LookupMarking returns the position of the first valid marking with the
// given id. Invalid markings never match, so the sentinel id -1 is never
// found.
func (m *Map) LookupMarking(id int) (model.Point, bool) {
	for _, mk := range m.markings {
		if mk.Valid() && mk.ID == id {
			return mk.Position(), true
		}
	}
	return model.Point{}, false
}

// MarkingPosition is LookupMarking for clients that expect (-1, -1) when the
// marking does not exist.
func (m *Map) MarkingPosition(id int) (x, y int) {
	p, ok := m.LookupMarking(id)
	if !ok {
		return model.NotFound.X, model.NotFound.Y
	}
	return p.X, p.Y
}

// IsForbidden reports whether (x, y) is forbidden by any polygon.
func (m *Map) IsForbidden(x, y int) bool {
	_, forbidden := m.ForbiddingPolygon(x, y)
	return forbidden
}

// ForbiddingPolygon returns the index of the first polygon whose policy
// rejects (x, y).
//
// A polygon rejects a point when its containment disagrees with its policy:
// an allowed-inside polygon rejects points outside it, and an
// allowed-outside polygon rejects points inside it. Polygons are checked in
// file order and the first rejection wins, so the reported index depends on
// that order. Invalid polygons have no nodes, contain nothing and default to
// allowed-outside, so they never reject.
func (m *Map) ForbiddingPolygon(x, y int) (int, bool) {
	p := model.Point{X: x, Y: y}
	for i, poly := range m.polygons {
		if geometry.Contains(poly, p) != poly.AllowedInside {
			return i, true
		}
	}
	return -1, false
}

// Polygons returns a copy of the polygons in file order.
func (m *Map) Polygons() []model.Polygon {
	return New(m.polygons, nil).polygons
}

// Markings returns a copy of the markings in file order.
func (m *Map) Markings() []model.Marking {
	return slices.Clone(m.markings)
}

// Polygon returns the polygon at index i.
func (m *Map) Polygon(i int) (model.Polygon, bool) {
	if i < 0 || i >= len(m.polygons) {
		return model.Polygon{}, false
	}
	p := m.polygons[i]
	p.Nodes = slices.Clone(p.Nodes)
	return p, true
}

// Stats counts the entities of the map.
func (m *Map) Stats() Stats {
	s := Stats{
		Polygons: len(m.polygons),
		Markings: len(m.markings),
	}
	for _, p := range m.polygons {
		if !p.Valid() {
			s.InvalidPolygons++
		}
	}
	for _, mk := range m.markings {
		if !mk.Valid() {
			s.InvalidMarkings++
		}
	}
	return s
}
