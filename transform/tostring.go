package transform

import (
	"encoding/json"

	"github.com/c360/mapengine/jsontree"
)

// toString implements the toString transform: null → null, array →
// element-wise recurse, text → identity, number/boolean → canonical
// text form, any other scalar → stringified form. Idempotent:
// toString(toString(x)) always equals toString(x) since every non-array,
// non-null result is already a string.
func toString(n jsontree.Node) jsontree.Node {
	if jsontree.IsNull(n) {
		return nil
	}
	if jsontree.IsMissing(n) {
		return n
	}
	if arr, ok := jsontree.Array(n); ok {
		out := make([]jsontree.Node, len(arr))
		for i, elem := range arr {
			out[i] = toString(elem)
		}
		return out
	}
	if text, ok := jsontree.AsText(n); ok {
		return text
	}
	// Objects and any other shape stringify as their JSON serialization.
	data, err := json.Marshal(n)
	if err != nil {
		return nil
	}
	return string(data)
}
