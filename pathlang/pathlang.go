// Package pathlang implements the path expression grammar described in
// the mapping document's template language: field, index, wildcard, and
// filter segments evaluated against a jsontree.Node with array
// broadcasting ("implicit projection") and one-level flattening.
package pathlang

import (
	"strings"

	"github.com/c360/mapengine/errors"
)

// SegmentKind identifies the kind of a compiled path segment.
type SegmentKind int

const (
	// SegField selects a named child of an object.
	SegField SegmentKind = iota
	// SegIndex selects a positional element of an array.
	SegIndex
	// SegWildcard selects every element of an array.
	SegWildcard
	// SegFilter retains array elements matching one or two equality predicates.
	SegFilter
)

// Predicate is a single `field == literal` equality test within a filter
// segment.
type Predicate struct {
	Field   string
	Literal string
}

// Segment is one step of a compiled path.
type Segment struct {
	Kind       SegmentKind
	Field      string // SegField
	Index      int    // SegIndex
	Predicates []Predicate
}

// Path is a compiled path expression: an ordered, non-empty sequence of
// segments. The zero value is not valid; use Compile.
type Path struct {
	text     string
	segments []Segment
}

// Text returns the original path text this Path was compiled from.
func (p *Path) Text() string { return p.text }

// Len reports the number of segments in the compiled path.
func (p *Path) Len() int { return len(p.segments) }

// HasNumericIndex reports whether any segment in the path is an index
// segment. Template validation rejects such paths per the mapping
// document grammar (index segments are a parser-level feature used only
// internally; they are never legal in a declared template path).
func (p *Path) HasNumericIndex() bool {
	for _, s := range p.segments {
		if s.Kind == SegIndex {
			return true
		}
	}
	return false
}

// Compile parses path text into a Path. The optional "$." root marker is
// stripped before tokenizing. Returns an invalid-classified error if the
// text does not parse to at least one well-formed segment.
func Compile(text string) (*Path, error) {
	original := text
	text = strings.TrimPrefix(text, "$.")

	segs, err := tokenize(text)
	if err != nil {
		return nil, errors.WrapInvalid(err, "pathlang", "Compile", "path parse failed: "+original)
	}
	if len(segs) == 0 {
		return nil, errors.WrapInvalid(errEmptyPath, "pathlang", "Compile", "path has no segments: "+original)
	}
	return &Path{text: original, segments: segs}, nil
}

var errEmptyPath = &pathError{"path expression has no segments"}

type pathError struct{ msg string }

func (e *pathError) Error() string { return e.msg }
