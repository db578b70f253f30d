package mapfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/mmr-tortoise/mapserver/internal/model"
)

// Result is everything read from one map file, in file order.
type Result struct {
	// Polygons includes reset polygons from failed blocks.
	Polygons []model.Polygon

	// Markings includes sentinel markings from failed blocks.
	Markings []model.Marking

	// Issues lists every recoverable problem, in file order.
	Issues []Issue
}

// HasIssues reports whether any recoverable problem was found.
func (r *Result) HasIssues() bool {
	return len(r.Issues) > 0
}

// InvalidPolygons counts polygons that failed to parse.
func (r *Result) InvalidPolygons() int {
	n := 0
	for _, p := range r.Polygons {
		if !p.Valid() {
			n++
		}
	}
	return n
}

// InvalidMarkings counts markings that failed to parse.
func (r *Result) InvalidMarkings() int {
	n := 0
	for _, m := range r.Markings {
		if !m.Valid() {
			n++
		}
	}
	return n
}

// Parse reads a whole map from r with a new Parser. See Parser.Parse.
func Parse(r io.Reader, opts ...Option) (*Result, error) {
	return NewParser(opts...).Parse(r)
}

// Parse scans r once, top to bottom.
//
// Comment and blank lines are skipped. A polygon start line hands the
// following lines to ParsePolygon and a marking start line hands them to
// ParseMarking; the returned entity is appended even when it is invalid.
// Any other line is reported as unparseable and skipped.
//
// Only read errors are returned as errors. Malformed content never aborts
// the scan; it is reported through Result.Issues and the logger.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	src := NewLineSource(r)
	res := &Result{}

	for {
		line, ok := src.Next()
		if !ok {
			break
		}

		switch p.grammar.Classify(line) {
		case Comment, Blank:
			continue
		case PolygonStart:
			poly, issue := p.ParsePolygon(src)
			res.Polygons = append(res.Polygons, poly)
			p.report(res, issue)
		case MarkingStart:
			marking, issue := p.ParseMarking(src)
			res.Markings = append(res.Markings, marking)
			p.report(res, issue)
		default:
			p.report(res, &Issue{
				Line: src.Line(),
				Kind: IssueUnparseableLine,
				Text: line,
			})
		}
	}

	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("read map at line %d: %w", src.Line()+1, err)
	}

	p.log.Debug("map_parsed",
		"polygons", len(res.Polygons),
		"markings", len(res.Markings),
		"issues", len(res.Issues),
	)
	return res, nil
}

func (p *Parser) report(res *Result, issue *Issue) {
	if issue == nil {
		return
	}
	res.Issues = append(res.Issues, *issue)

	attrs := []any{"line", issue.Line, "kind", string(issue.Kind), "text", issue.Text}
	if issue.Err != nil {
		attrs = append(attrs, "err", issue.Err)
	}
	// A polygon cut off by the end of the file is an incomplete map, not
	// malformed content.
	level := slog.LevelWarn
	if issue.Kind == IssueUnterminatedPolygon {
		level = slog.LevelInfo
	}
	p.log.Log(context.Background(), level, "map_issue", attrs...)
}

// LoadFile opens path and parses it. A missing or unreadable file returns
// an error wrapping ErrMapNotFound.
func LoadFile(path string, opts ...Option) (*Result, error) {
	return NewParser(opts...).LoadFile(path)
}

// LoadFile opens path and parses it with p.
func (p *Parser) LoadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMapNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrMapNotFound, err)
	}
	defer func() { _ = f.Close() }()

	p.log.Debug("map_open", "path", path)
	res, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return res, nil
}
