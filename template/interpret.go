package template

import (
	"github.com/c360/mapengine/jsontree"
	"github.com/c360/mapengine/pathlang"
	"github.com/c360/mapengine/transform"
)

// EventKind distinguishes the two kinds of non-fatal events raised while
// interpreting a template.
type EventKind string

const (
	// EventRequiredMissing is raised when a required field-spec had no
	// matching path.
	EventRequiredMissing EventKind = "required_missing"
	// EventTransform wraps a transform.Event surfaced during interpretation.
	EventTransform EventKind = "transform"
)

// Event is a structured, per-field occurrence raised during
// interpretation. It never aborts the record.
type Event struct {
	Kind    EventKind
	Field   string
	Message string
}

// Project walks t against root and returns the projected output tree
// plus any events raised along the way. Project is deterministic for a
// fixed (root, t) pair: template key order is followed exactly as
// compiled, and path evaluation has no hidden state beyond the
// process-wide caches (which are keyed purely by stable path text).
func Project(root jsontree.Node, t Template) (jsontree.Node, []Event) {
	switch v := t.(type) {
	case *ObjectTemplate:
		return projectObject(root, v)
	case *ArrayTemplate:
		return projectArray(root, v)
	case *FieldSpec:
		return projectFieldSpec(root, v, "")
	default:
		return nil, []Event{{Kind: EventTransform, Message: "unsupported template node"}}
	}
}

func projectObject(root jsontree.Node, t *ObjectTemplate) (jsontree.Node, []Event) {
	out := jsontree.NewOrderedObject()
	var events []Event
	for _, entry := range t.Entries {
		val, ev := projectField(root, entry.Value, entry.Key)
		out.Set(entry.Key, val)
		events = append(events, ev...)
	}
	return out, events
}

// projectField dispatches a named template entry, threading the field
// name through for event attribution.
func projectField(root jsontree.Node, t Template, fieldName string) (jsontree.Node, []Event) {
	switch v := t.(type) {
	case *ObjectTemplate:
		return projectObject(root, v)
	case *ArrayTemplate:
		return projectArray(root, v)
	case *FieldSpec:
		return projectFieldSpec(root, v, fieldName)
	default:
		return nil, []Event{{Kind: EventTransform, Field: fieldName, Message: "unsupported template node"}}
	}
}

func projectArray(root jsontree.Node, t *ArrayTemplate) (jsontree.Node, []Event) {
	result := pathlang.Evaluate(root, t.Path)

	if jsontree.IsNullOrMissing(result) {
		return []jsontree.Node{}, nil
	}

	if arr, ok := jsontree.Array(result); ok {
		out := make([]jsontree.Node, 0, len(arr))
		var events []Event
		for _, elem := range arr {
			item, ev := Project(elem, t.Item)
			out = append(out, item)
			events = append(events, ev...)
		}
		return out, events
	}

	// Single object result: emit a singleton array projected over it.
	item, ev := Project(result, t.Item)
	return []jsontree.Node{item}, ev
}

func projectFieldSpec(root jsontree.Node, f *FieldSpec, fieldName string) (jsontree.Node, []Event) {
	extract := firstNonMissingNonNull(root, f.Paths)

	if jsontree.IsMissing(extract) {
		if f.Required {
			return nil, []Event{{Kind: EventRequiredMissing, Field: fieldName, Message: "required field has no matching path"}}
		}
		return nil, nil
	}

	var normalized jsontree.Node
	var requiredViolation bool

	switch f.Multi {
	case MultiArray:
		if arr, ok := jsontree.Array(extract); ok {
			normalized = arr
		} else {
			normalized = []jsontree.Node{extract}
		}
	default: // MultiFirst
		if arr, ok := jsontree.Array(extract); ok {
			if len(arr) == 0 {
				normalized = nil
				requiredViolation = f.Required
			} else {
				normalized = arr[0]
			}
		} else {
			normalized = extract
		}
	}

	var events []Event
	if requiredViolation {
		events = append(events, Event{Kind: EventRequiredMissing, Field: fieldName, Message: "required field extracted an empty array"})
	}

	if f.Pipeline != nil && normalized != nil {
		var transformEvents []transform.Event
		normalized, transformEvents = f.Pipeline.Apply(normalized)
		for _, te := range transformEvents {
			events = append(events, Event{Kind: EventTransform, Field: fieldName, Message: te.Stage + ": " + te.Message})
		}
	}

	return normalized, events
}

// firstNonMissingNonNull returns the first candidate path's evaluation
// that is neither missing nor explicit null, or jsontree.Missing if none
// qualify.
func firstNonMissingNonNull(root jsontree.Node, paths []*pathlang.Path) jsontree.Node {
	for _, p := range paths {
		result := pathlang.Evaluate(root, p)
		if !jsontree.IsNullOrMissing(result) {
			return result
		}
	}
	return jsontree.Missing
}
