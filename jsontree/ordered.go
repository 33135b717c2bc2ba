package jsontree

import (
	"bytes"
	"encoding/json"
)

// OrderedObject is an output-tree object that preserves insertion order
// through JSON serialization. The Template Interpreter builds the
// projected output with this type specifically because the engine's
// ordering guarantee ("template key iteration follows the template's
// declared key order") only has meaning if the serialized form actually
// preserves it — a plain map[string]Node would not survive
// encoding/json's key sort.
type OrderedObject struct {
	keys []string
	vals map[string]Node
}

// NewOrderedObject returns an empty OrderedObject.
func NewOrderedObject() *OrderedObject {
	return &OrderedObject{vals: make(map[string]Node)}
}

// Set appends key with value v, or updates v in place if key was
// already set (preserving its original position).
func (o *OrderedObject) Set(key string, v Node) {
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// Get returns the value at key and whether it was present.
func (o *OrderedObject) Get(key string) (Node, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Keys returns the object's keys in declared order.
func (o *OrderedObject) Keys() []string {
	return o.keys
}

// MarshalJSON writes the object with its keys in declared order.
func (o *OrderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(o.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
