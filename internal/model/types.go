// Package model defines the domain types for the mapserver.
//
// All entities in this package describe the contents of a robot map file:
// polygons (each carrying an inside/outside allowance policy) and named
// point markings. They are created once while the map file is parsed and
// are never mutated afterwards.
//
// Entities are plain values. A parse failure does not remove an entity from
// the map; it produces a well-defined invalid entity instead, recognisable
// through its Status field.
package model

import "fmt"

// EntityStatus reports whether a parsed entity is usable.
type EntityStatus string

const (
	// StatusValid marks an entity that was parsed completely and
	// satisfies all structural rules of the map grammar.
	StatusValid EntityStatus = "valid"

	// StatusInvalid marks a placeholder entity produced by a failed parse.
	// It still occupies its slot in the map's sequence.
	StatusInvalid EntityStatus = "invalid"
)

// String returns the string representation of EntityStatus.
func (s EntityStatus) String() string {
	return string(s)
}

// IsValid checks whether the EntityStatus value is one of the
// predefined states.
func (s EntityStatus) IsValid() bool {
	switch s {
	case StatusValid, StatusInvalid:
		return true
	default:
		return false
	}
}

// Point is a position on the integer map grid.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String formats the point as "x,y", the same form used by map files.
func (p Point) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Node is one vertex of a polygon.
type Node struct {
	// ID is the 0-based position of the node within its polygon.
	// It is derived from input order, never read from the file.
	ID int `json:"id"`

	X int `json:"x"`
	Y int `json:"y"`
}

// Point returns the node's position.
func (n Node) Point() Point {
	return Point{X: n.X, Y: n.Y}
}

// Polygon is an ordered ring of nodes plus its allowance policy.
//
// The ring is stored open: the first and last node are distinct and the
// edge from the last node back to the first is implied.
type Polygon struct {
	// Nodes holds the vertices in perimeter (insertion) order.
	Nodes []Node `json:"nodes"`

	// NodeCount equals len(Nodes) for a valid polygon.
	NodeCount int `json:"nodeCount"`

	// AllowedInside selects the policy. When true, points inside the
	// polygon are allowed and points outside are forbidden. When false,
	// the polygon is a forbidden zone.
	AllowedInside bool `json:"allowedInside"`

	Status EntityStatus `json:"status"`
}

// Valid reports whether the polygon was parsed successfully.
func (p Polygon) Valid() bool {
	return p.Status == StatusValid
}

// Policy returns a short human-readable name for the allowance policy.
func (p Polygon) Policy() string {
	if p.AllowedInside {
		return "allowed-inside"
	}
	return "allowed-outside"
}

// InvalidPolygon returns the reset polygon stored in place of a polygon
// block that failed to parse: no nodes, default policy, invalid status.
func InvalidPolygon() Polygon {
	return Polygon{Status: StatusInvalid}
}

// Marking is a named reference point on the map.
type Marking struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`

	Status EntityStatus `json:"status"`
}

// Valid reports whether the marking was parsed successfully.
func (m Marking) Valid() bool {
	return m.Status == StatusValid
}

// Position returns the marking's coordinates.
func (m Marking) Position() Point {
	return Point{X: m.X, Y: m.Y}
}

// InvalidMarking returns the sentinel stored in place of a marking block
// that failed to parse. Its id and coordinates are all -1.
func InvalidMarking() Marking {
	return Marking{ID: -1, X: -1, Y: -1, Status: StatusInvalid}
}

// NotFound is the position reported to service clients when a marking
// id is unknown.
var NotFound = Point{X: -1, Y: -1}
