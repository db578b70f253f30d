package mapfile

import (
	"errors"
	"fmt"
)

// ErrMapNotFound is returned by LoadFile when the map file is missing or
// cannot be opened. Callers must treat it as a startup failure; an empty
// map is never substituted.
var ErrMapNotFound = errors.New("map file not found")

// IssueKind names a recoverable problem found while parsing a map file.
type IssueKind string

const (
	// IssueUnparseableLine is a top-level line that is neither a comment,
	// a blank line, nor a section start. The line is skipped.
	IssueUnparseableLine IssueKind = "unparseable-line"

	// IssueMalformedCoordinate is a polygon node line that is not "x,y"
	// with integer parts. The whole polygon is discarded.
	IssueMalformedCoordinate IssueKind = "malformed-coordinate"

	// IssueUnterminatedPolygon is a polygon block cut off by the end of
	// the input. The whole polygon is discarded.
	IssueUnterminatedPolygon IssueKind = "unterminated-polygon"

	// IssueBadMarkingTerminator is a marking block whose third line is not
	// the marking end marker.
	IssueBadMarkingTerminator IssueKind = "bad-marking-terminator"

	// IssueMalformedMarking is a marking block whose id or coordinate line
	// does not parse.
	IssueMalformedMarking IssueKind = "malformed-marking"

	// IssueUnterminatedMarking is a marking block cut off by the end of
	// the input.
	IssueUnterminatedMarking IssueKind = "unterminated-marking"
)

// Issue describes one recoverable parse problem.
type Issue struct {
	// Line is the 1-based line number the problem was detected on.
	Line int `json:"line"`

	Kind IssueKind `json:"kind"`

	// Text is the offending line, verbatim.
	Text string `json:"text"`

	// Err is the underlying conversion error, if any.
	Err error `json:"-"`
}

// Error formats the issue as "line N: kind: text".
func (i *Issue) Error() string {
	if i.Err != nil {
		return fmt.Sprintf("line %d: %s: %q: %v", i.Line, i.Kind, i.Text, i.Err)
	}
	return fmt.Sprintf("line %d: %s: %q", i.Line, i.Kind, i.Text)
}

// Unwrap returns the underlying conversion error.
func (i *Issue) Unwrap() error {
	return i.Err
}
