// Package transform implements the per-field value transform pipeline:
// toString, dateFormat, encrypt, and mask. Each kind is modeled as a
// validated descriptor consumed by its own handler rather than open-ended
// dynamic dispatch, per the sum-type-over-descriptor-kinds design.
package transform

import (
	"github.com/c360/mapengine/jsontree"
)

// Kind identifies a transform descriptor's handler.
type Kind string

const (
	KindToString   Kind = "toString"
	KindDateFormat Kind = "dateFormat"
	KindEncrypt    Kind = "encrypt"
	KindMask       Kind = "mask"
)

// Descriptor is a single, validated transform step. Only the fields
// relevant to Kind are populated.
type Descriptor struct {
	Kind Kind

	// dateFormat
	InputFormats []string
	OutputFormat string
	Timezone     string // default "UTC"

	// encrypt
	KeyRef string

	// mask
	Pattern string // one of the built-in pattern names, or "custom"
	Custom  string // "regex|replacement", only when Pattern == "custom"
}

// Event records a non-fatal, per-field occurrence raised while applying a
// transform (an unresolved key reference, an unparseable date, ...). The
// orchestrator surfaces these as structured events; they never abort the
// record.
type Event struct {
	Stage   string // transform kind
	Message string
}

// Pipeline is an ordered sequence of transform descriptors, applied
// left-to-right with the output of each step feeding the next.
type Pipeline struct {
	steps []Descriptor
	enc   *Encryptor
}

// NewPipeline constructs a Pipeline. enc may be nil if the pipeline never
// contains an encrypt step (e.g. during validation-only use).
func NewPipeline(steps []Descriptor, enc *Encryptor) *Pipeline {
	return &Pipeline{steps: steps, enc: enc}
}

// Apply runs every step of the pipeline over n, returning the final
// value and any soft-failure events raised along the way.
func (p *Pipeline) Apply(n jsontree.Node) (jsontree.Node, []Event) {
	var events []Event
	for _, d := range p.steps {
		var ev []Event
		n, ev = applyOne(d, n, p.enc)
		events = append(events, ev...)
	}
	return n, events
}

func applyOne(d Descriptor, n jsontree.Node, enc *Encryptor) (jsontree.Node, []Event) {
	switch d.Kind {
	case KindToString:
		return toString(n), nil
	case KindDateFormat:
		return dateFormat(d, n)
	case KindEncrypt:
		return encrypt(d, n, enc)
	case KindMask:
		return mask(d, n)
	default:
		return n, []Event{{Stage: string(d.Kind), Message: "unknown transform kind"}}
	}
}

// elementWise applies fn to every element of arr, per the "Array →
// element-wise recurse" rule shared by every transform kind.
func elementWise(arr []jsontree.Node, fn func(jsontree.Node) (jsontree.Node, []Event)) (jsontree.Node, []Event) {
	out := make([]jsontree.Node, len(arr))
	var events []Event
	for i, elem := range arr {
		v, ev := fn(elem)
		out[i] = v
		events = append(events, ev...)
	}
	return out, events
}
