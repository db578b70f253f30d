package mapfile

import (
	"bufio"
	"io"
	"strings"
)

// maxLineBytes bounds a single map file line. Map files are small; a
// line this long is a corrupt file, not a polygon.
const maxLineBytes = 1024 * 1024

// LineSource hands out the lines of a map file one at a time and keeps
// track of the current line number. The block parsers share one
// LineSource with the top-level loop, so a line consumed by a block is
// never seen again.
type LineSource struct {
	scanner *bufio.Scanner
	line    int
}

// NewLineSource wraps r in a LineSource.
func NewLineSource(r io.Reader) *LineSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &LineSource{scanner: scanner}
}

// Next returns the next line without its terminator. A trailing carriage
// return is dropped so that files edited on Windows classify the same way.
// The boolean is false once the input is exhausted or a read error
// occurred; check Err afterwards.
func (s *LineSource) Next() (string, bool) {
	if !s.scanner.Scan() {
		return "", false
	}
	s.line++
	return strings.TrimSuffix(s.scanner.Text(), "\r"), true
}

// Line returns the 1-based number of the most recently returned line,
// or 0 before the first call to Next.
func (s *LineSource) Line() int {
	return s.line
}

// Err returns the first non-EOF read error, if any.
func (s *LineSource) Err() error {
	return s.scanner.Err()
}
