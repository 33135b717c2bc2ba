// Package mapping holds the mapping rules document: validated parse,
// atomic current-rules swap with last-known-good semantics, and
// connector/topic lookup, per the Mapping Store & Validator design.
package mapping

import (
	"github.com/c360/mapengine/template"
)

// TopicMapping is the `{ root, output }` pair identifying the wrapper
// key and the compiled output template for one topic or connector
// entry.
type TopicMapping struct {
	Root   string
	Output template.Template
}

// Rules is the top-level, immutable mapping document: a validated,
// compiled snapshot keyed by topic name and/or connector name. Once
// constructed by Parse, a Rules value is never mutated; the Store
// replaces it wholesale on adoption.
type Rules struct {
	Version    int
	Topics     map[string]*TopicMapping
	Connectors map[string]*TopicMapping
}

// Lookup applies the precedence rule: a non-empty connector name is
// checked against Connectors first, then topic against Topics, then
// miss.
func (r *Rules) Lookup(connector, topic string) (*TopicMapping, bool) {
	if r == nil {
		return nil, false
	}
	if connector != "" {
		if tm, ok := r.Connectors[connector]; ok {
			return tm, true
		}
	}
	if tm, ok := r.Topics[topic]; ok {
		return tm, true
	}
	return nil, false
}
