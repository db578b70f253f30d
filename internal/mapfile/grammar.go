package mapfile

import (
	"fmt"
	"strings"
	"unicode"
)

// Default literals of the map grammar. They can be overridden through
// configuration, but every map shipped with the robot uses these.
const (
	DefaultCommentSign    = '#'
	DefaultPolygonStart   = "POLYGON_START"
	DefaultPolygonEnd     = "POLYGON_END"
	DefaultPolygonInside  = "ALLOWED_INSIDE"
	DefaultPolygonOutside = "ALLOWED_OUTSIDE"
	DefaultMarkingStart   = "MARKING_START"
	DefaultMarkingEnd     = "MARKING_END"
)

// LineKind is the classification of a single map file line.
type LineKind int

const (
	// Blank is an empty or whitespace-only line. Blank lines are ignored.
	Blank LineKind = iota

	// Comment is a line whose first byte is the comment sign.
	Comment

	PolygonStart
	PolygonEnd

	// PolygonInsideMarker and PolygonOutsideMarker match by substring,
	// so trailing annotations on the marker line are tolerated.
	PolygonInsideMarker
	PolygonOutsideMarker

	MarkingStart
	MarkingEnd

	// DataLine is anything else: a coordinate or id line inside a block,
	// or an unparseable line at the top level.
	DataLine
)

var lineKindNames = map[LineKind]string{
	Blank:                "blank",
	Comment:              "comment",
	PolygonStart:         "polygon-start",
	PolygonEnd:           "polygon-end",
	PolygonInsideMarker:  "polygon-inside",
	PolygonOutsideMarker: "polygon-outside",
	MarkingStart:         "marking-start",
	MarkingEnd:           "marking-end",
	DataLine:             "data",
}

// String returns the name of the line kind.
func (k LineKind) String() string {
	if name, ok := lineKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("LineKind(%d)", int(k))
}

// Grammar holds the literals that structure a map file.
//
// The zero value is not usable; start from DefaultGrammar and override
// individual fields.
type Grammar struct {
	// CommentSign must be the very first byte of a comment line.
	// A comment sign preceded by whitespace does not start a comment.
	CommentSign byte

	// Section markers are matched by exact, case-sensitive equality.
	PolygonStart string
	PolygonEnd   string
	MarkingStart string
	MarkingEnd   string

	// Policy markers are matched by substring containment.
	PolygonInside  string
	PolygonOutside string
}

// DefaultGrammar returns the grammar used by the robot's map files.
func DefaultGrammar() Grammar {
	return Grammar{
		CommentSign:    DefaultCommentSign,
		PolygonStart:   DefaultPolygonStart,
		PolygonEnd:     DefaultPolygonEnd,
		MarkingStart:   DefaultMarkingStart,
		MarkingEnd:     DefaultMarkingEnd,
		PolygonInside:  DefaultPolygonInside,
		PolygonOutside: DefaultPolygonOutside,
	}
}

// Validate checks that every literal is set and that the literals cannot
// be confused with each other or with coordinate data.
func (g Grammar) Validate() error {
	if g.CommentSign == 0 || g.CommentSign == ' ' || g.CommentSign == '\t' {
		return fmt.Errorf("grammar: comment sign must be a visible character")
	}

	literals := []struct {
		field string
		value string
	}{
		{"polygonStart", g.PolygonStart},
		{"polygonEnd", g.PolygonEnd},
		{"markingStart", g.MarkingStart},
		{"markingEnd", g.MarkingEnd},
		{"polygonInside", g.PolygonInside},
		{"polygonOutside", g.PolygonOutside},
	}

	seen := make(map[string]string, len(literals))
	for _, l := range literals {
		if strings.TrimSpace(l.value) == "" {
			return fmt.Errorf("grammar: %s must not be empty", l.field)
		}
		if strings.Contains(l.value, ",") {
			return fmt.Errorf("grammar: %s %q must not contain a comma", l.field, l.value)
		}
		if other, dup := seen[l.value]; dup {
			return fmt.Errorf("grammar: %s and %s share the literal %q", other, l.field, l.value)
		}
		seen[l.value] = l.field
	}

	// A substring marker that contains the other one would make the
	// outside marker unreachable (inside is checked first).
	if strings.Contains(g.PolygonOutside, g.PolygonInside) {
		return fmt.Errorf("grammar: polygonOutside %q contains polygonInside %q", g.PolygonOutside, g.PolygonInside)
	}

	// Comments are checked first, so a literal starting with the comment
	// sign would never be seen.
	for _, l := range literals {
		if l.value[0] == g.CommentSign {
			return fmt.Errorf("grammar: %s %q starts with the comment sign %q", l.field, l.value, g.CommentSign)
		}
	}

	// Policy markers match anywhere in a line, so they must not fit inside
	// a coordinate or id line.
	for _, l := range literals[4:] {
		if isNumeric(l.value) {
			return fmt.Errorf("grammar: %s %q could match coordinate data", l.field, l.value)
		}
	}
	return nil
}

// isNumeric reports whether s holds only digits, signs and whitespace.
func isNumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '+', r == '-', unicode.IsSpace(r):
		default:
			return false
		}
	}
	return true
}

// Classify returns the kind of a single line. The line must not include
// its line terminator.
//
// Precedence: comment, blank, exact section markers, then the inside and
// outside substring markers. Everything else is a DataLine.
func (g Grammar) Classify(line string) LineKind {
	if len(line) > 0 && line[0] == g.CommentSign {
		return Comment
	}
	if strings.TrimSpace(line) == "" {
		return Blank
	}

	switch line {
	case g.PolygonStart:
		return PolygonStart
	case g.PolygonEnd:
		return PolygonEnd
	case g.MarkingStart:
		return MarkingStart
	case g.MarkingEnd:
		return MarkingEnd
	}

	if strings.Contains(line, g.PolygonInside) {
		return PolygonInsideMarker
	}
	if strings.Contains(line, g.PolygonOutside) {
		return PolygonOutsideMarker
	}
	return DataLine
}

// IsComment reports whether line is a comment line.
func (g Grammar) IsComment(line string) bool {
	return g.Classify(line) == Comment
}
