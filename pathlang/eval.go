package pathlang

import (
	"strings"

	"github.com/c360/mapengine/jsontree"
)

// Evaluate walks root according to the compiled path's segments and
// returns the resulting tree, or jsontree.Missing if any step cannot be
// satisfied. Evaluate never returns an error: navigation failures are
// represented entirely by the Missing sentinel, per the contract that
// path evaluation never throws on an absent field.
func Evaluate(root jsontree.Node, p *Path) jsontree.Node {
	return evalSegments(root, p.segments)
}

func evalSegments(n jsontree.Node, segs []Segment) jsontree.Node {
	if jsontree.IsMissing(n) {
		return jsontree.Missing
	}
	if len(segs) == 0 {
		return n
	}

	// Implicit projection: an array encountering a field segment
	// broadcasts the remaining path (including this segment) over each
	// element, rather than treating the array itself as the subject of
	// a field lookup.
	if segs[0].Kind == SegField {
		if arr, ok := jsontree.Array(n); ok {
			return collect(arr, segs)
		}
	}

	switch segs[0].Kind {
	case SegField:
		obj, ok := jsontree.Object(n)
		if !ok {
			return jsontree.Missing
		}
		child, present := obj[segs[0].Field]
		if !present {
			return jsontree.Missing
		}
		return evalSegments(child, segs[1:])

	case SegIndex:
		arr, ok := jsontree.Array(n)
		if !ok || segs[0].Index < 0 || segs[0].Index >= len(arr) {
			return jsontree.Missing
		}
		return evalSegments(arr[segs[0].Index], segs[1:])

	case SegWildcard:
		arr, ok := jsontree.Array(n)
		if !ok {
			return jsontree.Missing
		}
		return collect(arr, segs[1:])

	case SegFilter:
		arr, ok := jsontree.Array(n)
		if !ok {
			return jsontree.Missing
		}
		retained := make([]jsontree.Node, 0, len(arr))
		for _, elem := range arr {
			if matchesAll(elem, segs[0].Predicates) {
				retained = append(retained, elem)
			}
		}
		return evalSegments(retained, segs[1:])

	default:
		return jsontree.Missing
	}
}

// collect evaluates the remaining segments against each element of arr,
// skipping missing and explicit null results and flattening one level
// when a per-element result is itself an array.
func collect(arr []jsontree.Node, segs []Segment) jsontree.Node {
	out := make([]jsontree.Node, 0, len(arr))
	for _, elem := range arr {
		result := evalSegments(elem, segs)
		if jsontree.IsNullOrMissing(result) {
			continue
		}
		if sub, ok := jsontree.Array(result); ok {
			out = append(out, sub...)
			continue
		}
		out = append(out, result)
	}
	return out
}

// matchesAll reports whether elem satisfies every predicate in preds.
// Comparison is string-coerced equality: elem's field value and the
// predicate literal are both reduced to text, with the literal's
// "true"/"false" (any case) coerced to boolean text first. This
// intentionally makes an unquoted literal like 42 match a numeric field
// value 42 via string comparison, not numeric comparison.
func matchesAll(elem jsontree.Node, preds []Predicate) bool {
	obj, ok := jsontree.Object(elem)
	if !ok {
		return false
	}
	for _, p := range preds {
		fieldVal, present := obj[p.Field]
		if !present {
			return false
		}
		text, ok := jsontree.AsText(fieldVal)
		if !ok {
			return false
		}
		if !equalCoerced(text, p.Literal) {
			return false
		}
	}
	return true
}

// equalCoerced compares two string forms for equality, treating "true"
// and "false" case-insensitively as boolean literals before falling
// back to plain string equality.
func equalCoerced(a, b string) bool {
	aBool, aIsBool := coerceBoolText(a)
	bBool, bIsBool := coerceBoolText(b)
	if aIsBool && bIsBool {
		return aBool == bBool
	}
	return a == b
}

func coerceBoolText(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
