package mapfile

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/mmr-tortoise/mapserver/internal/model"
)

// Parser turns map file lines into polygons and markings.
//
// A Parser is stateless between calls and safe to reuse; all per-entity
// state lives on the stack of ParsePolygon and ParseMarking, and an entity
// is only returned once it is finalized (valid or invalid).
type Parser struct {
	grammar Grammar
	log     *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithGrammar replaces the default grammar literals.
func WithGrammar(g Grammar) Option {
	return func(p *Parser) { p.grammar = g }
}

// WithLogger sets the logger that receives one warning per parse issue.
// Without it, issues are only collected in the Result.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l
		}
	}
}

// NewParser creates a Parser using DefaultGrammar unless overridden.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		grammar: DefaultGrammar(),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Grammar returns the grammar the parser classifies lines with.
func (p *Parser) Grammar() Grammar {
	return p.grammar
}

// ParsePolygon reads the body of a polygon block. The polygon start line
// must already have been consumed from src.
//
// Node lines are "x,y" with optional whitespace anywhere. Each node gets
// the id of its position in the block. The inside and outside markers set
// the allowance policy; without either, AllowedInside stays false.
// Blank and comment lines are skipped.
//
// The polygon is all-or-nothing: a malformed node line, or reaching the end
// of the input before the end marker, yields model.InvalidPolygon and an
// Issue. After a malformed node line, the rest of the block is left in src
// for the caller.
func (p *Parser) ParsePolygon(src *LineSource) (model.Polygon, *Issue) {
	startLine := src.Line()

	var nodes []model.Node
	allowedInside := false

	for {
		line, ok := src.Next()
		if !ok {
			break
		}

		switch p.grammar.Classify(line) {
		case PolygonEnd:
			return model.Polygon{
				Nodes:         nodes,
				NodeCount:     len(nodes),
				AllowedInside: allowedInside,
				Status:        model.StatusValid,
			}, nil
		case PolygonInsideMarker:
			allowedInside = true
		case PolygonOutsideMarker:
			allowedInside = false
		case Blank, Comment:
			continue
		default:
			x, y, err := parseCoordinate(line)
			if err != nil {
				return model.InvalidPolygon(), &Issue{
					Line: src.Line(),
					Kind: IssueMalformedCoordinate,
					Text: line,
					Err:  err,
				}
			}
			nodes = append(nodes, model.Node{ID: len(nodes), X: x, Y: y})
		}
	}

	return model.InvalidPolygon(), &Issue{
		Line: startLine,
		Kind: IssueUnterminatedPolygon,
		Text: p.grammar.PolygonStart,
	}
}

// ParseMarking reads the body of a marking block. The marking start line
// must already have been consumed from src.
//
// The body is exactly three lines: the id, the "x,y" position and the
// marking end marker. Those three lines are always consumed. Any failure
// yields model.InvalidMarking and an Issue; a wrong terminator invalidates
// the marking even when the id and position parsed.
func (p *Parser) ParseMarking(src *LineSource) (model.Marking, *Issue) {
	startLine := src.Line()

	var body [3]string
	for i := range body {
		line, ok := src.Next()
		if !ok {
			return model.InvalidMarking(), &Issue{
				Line: startLine,
				Kind: IssueUnterminatedMarking,
				Text: p.grammar.MarkingStart,
			}
		}
		body[i] = line
	}
	idLine, posLine, endLine := body[0], body[1], body[2]

	if p.grammar.Classify(endLine) != MarkingEnd {
		return model.InvalidMarking(), &Issue{
			Line: src.Line(),
			Kind: IssueBadMarkingTerminator,
			Text: endLine,
		}
	}

	id, err := strconv.Atoi(stripWhitespace(idLine))
	if err != nil {
		return model.InvalidMarking(), &Issue{
			Line: src.Line() - 2,
			Kind: IssueMalformedMarking,
			Text: idLine,
			Err:  err,
		}
	}

	x, y, err := parseCoordinate(posLine)
	if err != nil {
		return model.InvalidMarking(), &Issue{
			Line: src.Line() - 1,
			Kind: IssueMalformedMarking,
			Text: posLine,
			Err:  err,
		}
	}

	return model.Marking{ID: id, X: x, Y: y, Status: model.StatusValid}, nil
}

// parseCoordinate parses an "x,y" line. All whitespace is removed first and
// the line is split on the first comma. Both parts must be base-10 integers.
func parseCoordinate(line string) (int, int, error) {
	xs, ys, found := strings.Cut(stripWhitespace(line), ",")
	if !found {
		return 0, 0, fmt.Errorf("missing comma in coordinate")
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("y: %w", err)
	}
	return x, y, nil
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
