package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// rawValue is a JSON value decoded while preserving object key order,
// the property encoding/json's map[string]any cannot provide. Only the
// template compiler needs this: the interpreter must iterate a
// template's object keys in their declared order, while
// input-tree navigation in jsontree is order-insensitive.
type rawValue any

// rawObject is an ordered mapping from key to rawValue.
type rawObject struct {
	keys []string
	vals map[string]rawValue
}

func newRawObject() *rawObject {
	return &rawObject{vals: make(map[string]rawValue)}
}

func (o *rawObject) set(key string, v rawValue) {
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *rawObject) get(key string) (rawValue, bool) {
	v, ok := o.vals[key]
	return v, ok
}

func (o *rawObject) has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

// decodeRawTemplate parses raw JSON bytes into a rawValue tree, reading
// token-by-token so object key order survives into rawObject.keys.
func decodeRawTemplate(data []byte) (rawValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected trailing content after template document")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (rawValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (rawValue, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := newRawObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			var arr []rawValue
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			if arr == nil {
				arr = []rawValue{}
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	default:
		return tok, nil // nil, bool, json.Number, string
	}
}
