// Package jsontree defines the tree-shaped value that flows through the
// mapping engine: a JSON value decoded with number text preserved, plus a
// sentinel for "no such path" that is distinct from an explicit null.
package jsontree

import (
	"bytes"
	"encoding/json"

	"github.com/c360/mapengine/errors"
)

// Node is a JSON tree value. Concrete underlying types:
//   - nil                  explicit null
//   - bool                 boolean
//   - json.Number          integer, floating, or decimal (textual form preserved)
//   - string               text
//   - []Node               ordered sequence
//   - map[string]Node      mapping from text key to tree
//   - missingType          the Missing sentinel
type Node = any

type missingType struct{}

func (missingType) String() string { return "<missing>" }

// Missing is the distinguished value returned by path navigation when a
// field, index, or filter yields no result. It is never present in a
// decoded input tree; it only ever appears as an evaluation result.
var Missing Node = missingType{}

// IsMissing reports whether n is the Missing sentinel.
func IsMissing(n Node) bool {
	_, ok := n.(missingType)
	return ok
}

// IsNull reports whether n is an explicit JSON null.
func IsNull(n Node) bool {
	return n == nil
}

// IsNullOrMissing reports whether n carries no usable value.
func IsNullOrMissing(n Node) bool {
	return n == nil || IsMissing(n)
}

// Array asserts n as an ordered sequence, reporting ok=false for any other
// shape (including Missing and null).
func Array(n Node) ([]Node, bool) {
	a, ok := n.([]Node)
	return a, ok
}

// Object asserts n as a mapping, reporting ok=false for any other shape.
func Object(n Node) (map[string]Node, bool) {
	m, ok := n.(map[string]Node)
	return m, ok
}

// Parse decodes raw JSON bytes into a Node tree. Numbers are kept as
// json.Number so integer, floating, and decimal text forms all survive
// round-tripping without precision loss; objects decode as
// map[string]Node since input-side field lookup never depends on key
// order (only the output template's key order, handled by the template
// package, is order-sensitive).
func Parse(data []byte) (Node, error) {
	if len(data) == 0 {
		return nil, errors.WrapInvalid(errEmpty, "jsontree", "Parse", "empty payload")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.WrapInvalid(err, "jsontree", "Parse", "invalid json payload")
	}
	return normalize(v), nil
}

var errEmpty = &emptyPayloadError{}

type emptyPayloadError struct{}

func (*emptyPayloadError) Error() string { return "empty payload" }

// normalize recursively retypes the generic any produced by
// encoding/json (map[string]any, []any) into the Node aliases used
// throughout the engine (map[string]Node, []Node) so type switches
// elsewhere only need to handle one pair of collection types.
func normalize(v any) Node {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]Node, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]Node, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return t
	}
}

// AsText coerces a scalar Node to its text form, the same coercion the
// Transform Pipeline's toString step applies. Returns ok=false for null,
// Missing, arrays, and objects.
func AsText(n Node) (string, bool) {
	switch v := n.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}
