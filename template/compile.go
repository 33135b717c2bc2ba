// Package template compiles and interprets output templates: the
// recursive value (object / $array / field-spec) that describes how a
// topic mapping projects an input tree into an output tree. Per the
// "template polymorphism" design note, the template shape is determined
// once at validation/compile time and compiled into a dedicated tagged
// variant (ObjectTemplate / ArrayTemplate / FieldSpec) rather than
// re-inspected on every record.
package template

import (
	"fmt"
	"strings"

	"github.com/c360/mapengine/pathlang"
	"github.com/c360/mapengine/transform"
)

// Template is the compiled, tagged-variant form of an output template
// node. The three concrete types are ObjectTemplate, ArrayTemplate, and
// FieldSpec.
type Template interface {
	isTemplate()
}

// ObjectTemplate is a plain nested object: a fresh output object is
// created and each entry recursed into, in declared key order.
type ObjectTemplate struct {
	Entries []ObjectEntry
}

// ObjectEntry is one key/value pair of an ObjectTemplate, order
// significant.
type ObjectEntry struct {
	Key   string
	Value Template
}

func (*ObjectTemplate) isTemplate() {}

// ArrayTemplate is the `{ "$array": { "path": ..., "item": ... } }`
// form: evaluate Path, then project Item over each element (or over a
// single object result, or emit an empty array on missing/null).
type ArrayTemplate struct {
	Path *pathlang.Path
	Item Template
}

func (*ArrayTemplate) isTemplate() {}

// Multi is the field-specification normalization mode.
type Multi string

const (
	MultiFirst Multi = "first"
	MultiArray Multi = "array"
)

// FieldSpec is a template leaf: a candidate list of paths, normalization
// mode, required-ness, and a transform pipeline.
type FieldSpec struct {
	Paths    []*pathlang.Path
	Required bool
	Multi    Multi
	Pipeline *transform.Pipeline
}

func (*FieldSpec) isTemplate() {}

// Compile parses template JSON and compiles it into a Template,
// validating every invariant along the way: every path
// expression must parse to at least one segment with no numeric index,
// a field specification must have at least one path, multi must be
// "first" or "array", and every transform's type/required fields must
// be well-formed. Compile never partially succeeds: any violation
// returns an error and no Template.
func Compile(data []byte, pathCache *pathlang.Cache, enc *transform.Encryptor) (Template, error) {
	raw, err := decodeRawTemplate(data)
	if err != nil {
		return nil, fmt.Errorf("template: invalid json: %w", err)
	}
	return compileValue(raw, pathCache, enc)
}

func compileValue(raw rawValue, pathCache *pathlang.Cache, enc *transform.Encryptor) (Template, error) {
	obj, ok := raw.(*rawObject)
	if !ok {
		return nil, fmt.Errorf("template: expected an object node, got %T", raw)
	}

	switch {
	case len(obj.keys) == 1 && obj.keys[0] == "$array":
		return compileArrayTemplate(obj, pathCache, enc)
	case obj.has("paths"):
		return compileFieldSpec(obj, pathCache, enc)
	default:
		return compileObjectTemplate(obj, pathCache, enc)
	}
}

func compileArrayTemplate(obj *rawObject, pathCache *pathlang.Cache, enc *transform.Encryptor) (Template, error) {
	inner, _ := obj.get("$array")
	innerObj, ok := inner.(*rawObject)
	if !ok {
		return nil, fmt.Errorf("template: $array value must be an object with path/item")
	}
	pathRaw, ok := innerObj.get("path")
	if !ok {
		return nil, fmt.Errorf("template: $array requires a path")
	}
	pathText, ok := pathRaw.(string)
	if !ok {
		return nil, fmt.Errorf("template: $array path must be text")
	}
	p, err := compilePath(pathText, pathCache)
	if err != nil {
		return nil, err
	}

	itemRaw, ok := innerObj.get("item")
	if !ok {
		return nil, fmt.Errorf("template: $array requires an item template")
	}
	item, err := compileValue(itemRaw, pathCache, enc)
	if err != nil {
		return nil, err
	}

	return &ArrayTemplate{Path: p, Item: item}, nil
}

func compileObjectTemplate(obj *rawObject, pathCache *pathlang.Cache, enc *transform.Encryptor) (Template, error) {
	entries := make([]ObjectEntry, 0, len(obj.keys))
	for _, key := range obj.keys {
		val, _ := obj.get(key)
		compiled, err := compileValue(val, pathCache, enc)
		if err != nil {
			return nil, fmt.Errorf("template: field %q: %w", key, err)
		}
		entries = append(entries, ObjectEntry{Key: key, Value: compiled})
	}
	return &ObjectTemplate{Entries: entries}, nil
}

func compileFieldSpec(obj *rawObject, pathCache *pathlang.Cache, enc *transform.Encryptor) (Template, error) {
	pathsRaw, _ := obj.get("paths")
	pathsArr, ok := pathsRaw.([]rawValue)
	if !ok || len(pathsArr) == 0 {
		return nil, fmt.Errorf("template: paths must be a non-empty array")
	}

	paths := make([]*pathlang.Path, 0, len(pathsArr))
	for _, pr := range pathsArr {
		text, ok := pr.(string)
		if !ok {
			return nil, fmt.Errorf("template: each path must be text")
		}
		p, err := compilePath(text, pathCache)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}

	required := false
	if r, ok := obj.get("required"); ok {
		b, ok := r.(bool)
		if !ok {
			return nil, fmt.Errorf("template: required must be a boolean")
		}
		required = b
	}

	multi := MultiFirst
	if m, ok := obj.get("multi"); ok {
		s, ok := m.(string)
		if !ok {
			return nil, fmt.Errorf("template: multi must be text")
		}
		s = strings.ToLower(s)
		switch Multi(s) {
		case MultiFirst, MultiArray:
			multi = Multi(s)
		default:
			return nil, fmt.Errorf("template: multi must be %q or %q, got %q", MultiFirst, MultiArray, s)
		}
	}

	var steps []transform.Descriptor
	if t, ok := obj.get("transforms"); ok {
		arr, ok := t.([]rawValue)
		if !ok {
			return nil, fmt.Errorf("template: transforms must be an array")
		}
		for _, tr := range arr {
			trObj, ok := tr.(*rawObject)
			if !ok {
				return nil, fmt.Errorf("template: each transform must be an object")
			}
			d, err := compileTransform(trObj)
			if err != nil {
				return nil, err
			}
			steps = append(steps, d)
		}
	}

	return &FieldSpec{
		Paths:    paths,
		Required: required,
		Multi:    multi,
		Pipeline: transform.NewPipeline(steps, enc),
	}, nil
}

func compilePath(text string, pathCache *pathlang.Cache) (*pathlang.Path, error) {
	var p *pathlang.Path
	var err error
	if pathCache != nil {
		p, err = pathCache.CompileCached(text)
	} else {
		p, err = pathlang.CompileCachedGlobal(text)
	}
	if err != nil {
		return nil, err
	}
	if p.HasNumericIndex() {
		return nil, fmt.Errorf("template: path %q contains a forbidden numeric index", text)
	}
	return p, nil
}

func compileTransform(obj *rawObject) (transform.Descriptor, error) {
	typeRaw, ok := obj.get("type")
	if !ok {
		return transform.Descriptor{}, fmt.Errorf("template: transform requires a type")
	}
	typeText, ok := typeRaw.(string)
	if !ok {
		return transform.Descriptor{}, fmt.Errorf("template: transform type must be text")
	}

	switch transform.Kind(typeText) {
	case transform.KindToString:
		return transform.Descriptor{Kind: transform.KindToString}, nil

	case transform.KindDateFormat:
		inputFormats, err := stringArrayField(obj, "inputFormats")
		if err != nil || len(inputFormats) == 0 {
			return transform.Descriptor{}, fmt.Errorf("template: dateFormat requires non-empty inputFormats")
		}
		outputFormat, ok := stringField(obj, "outputFormat")
		if !ok || outputFormat == "" {
			return transform.Descriptor{}, fmt.Errorf("template: dateFormat requires a non-empty outputFormat")
		}
		timezone, _ := stringField(obj, "timezone")
		if timezone == "" {
			timezone = "UTC"
		}
		return transform.Descriptor{
			Kind:         transform.KindDateFormat,
			InputFormats: inputFormats,
			OutputFormat: outputFormat,
			Timezone:     timezone,
		}, nil

	case transform.KindEncrypt:
		keyRef, _ := stringField(obj, "key")
		return transform.Descriptor{Kind: transform.KindEncrypt, KeyRef: keyRef}, nil

	case transform.KindMask:
		pattern, ok := stringField(obj, "pattern")
		if !ok || pattern == "" {
			pattern = "partial"
		}
		custom, _ := stringField(obj, "customMask")
		return transform.Descriptor{Kind: transform.KindMask, Pattern: pattern, Custom: custom}, nil

	default:
		return transform.Descriptor{}, fmt.Errorf("template: unknown transform type %q", typeText)
	}
}

func stringField(obj *rawObject, key string) (string, bool) {
	v, ok := obj.get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func stringArrayField(obj *rawObject, key string) ([]string, error) {
	v, ok := obj.get(key)
	if !ok {
		return nil, nil
	}
	arr, ok := v.([]rawValue)
	if !ok {
		return nil, fmt.Errorf("template: %s must be an array", key)
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("template: %s entries must be text", key)
		}
		out = append(out, s)
	}
	return out, nil
}
