// Package orchestrator provides the thin per-record glue: look up a
// mapping by connector/topic key, drive the template interpreter, and
// frame the result for a sink adapter. It holds no transformation logic
// of its own — that lives in pathlang, template, and transform — and
// performs no I/O; the host supplies bytes and consumes a Result.
package orchestrator

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/c360/mapengine/jsontree"
	"github.com/c360/mapengine/mapping"
	"github.com/c360/mapengine/template"
)

// Stage identifies which phase of record processing an Event or
// failure occurred in.
type Stage string

const (
	StageParse     Stage = "parse"
	StageLookup    Stage = "lookup"
	StageInterpret Stage = "interpret"
	StageTransform Stage = "transform"
)

// Framing selects whether the projected object is emitted directly
// (flat) or nested under the mapping's root key with optional
// side-channels (wrapped).
type Framing string

const (
	FramingWrapped Framing = "wrapped"
	FramingFlat    Framing = "flat"
)

// Options configures an Orchestrator's record handling, corresponding
// to the recognized configuration table's framing-related entries.
type Options struct {
	Framing Framing

	// AttachMetadata emits a metadata side-channel (source topic and
	// partition) under the configured key. Ignored under flat framing.
	AttachMetadata bool
	MetadataKey    string

	// RawPayload emits a verbatim copy of the input under the
	// configured key. Ignored under flat framing.
	RawPayload bool
	RawKey     string

	// FailOnMissingMapping elevates a mapping-lookup miss from a debug
	// log to an error log. The record still passes through unchanged
	// either way.
	FailOnMissingMapping bool
}

func (o Options) withDefaults() Options {
	if o.Framing == "" {
		o.Framing = FramingWrapped
	}
	if o.MetadataKey == "" {
		o.MetadataKey = "_metadata"
	}
	if o.RawKey == "" {
		o.RawKey = "_raw"
	}
	return o
}

// RecordMeta identifies the inbound record's origin for mapping lookup
// and, under wrapped framing, the metadata side-channel.
type RecordMeta struct {
	Connector string
	Topic     string
	Partition int
}

// Event is a structured, non-fatal occurrence raised while processing a
// single record, tagged with the stage it occurred in and a
// correlation id shared with the record's Result.
type Event struct {
	Stage         Stage
	Kind          string
	Field         string
	Message       string
	CorrelationID string
}

// Result is the outcome of processing one record. On a non-passthrough
// result exactly one of Output (success) and Err (parse/interpretation
// failure) is meaningful. A passthrough result sets Passthrough and
// leaves both Output and Err nil; the caller forwards the original raw
// bytes itself.
type Result struct {
	CorrelationID string
	Output        jsontree.Node
	Passthrough   bool
	Events        []Event
	Err           error
}

// Orchestrator drives one record through mapping lookup, template
// interpretation, and output framing.
type Orchestrator struct {
	store   *mapping.Store
	logger  *slog.Logger
	metrics *orchestratorMetrics
	opts    Options
}

// New constructs an Orchestrator. logger defaults to slog.Default() if
// nil; metrics may be nil to disable metrics.
func New(store *mapping.Store, opts Options, logger *slog.Logger, metrics *orchestratorMetrics) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:   store,
		logger:  logger,
		metrics: metrics,
		opts:    opts.withDefaults(),
	}
}

// Process parses raw, looks up its mapping, interprets the template,
// and frames the output. A mapping-lookup miss is not an error: the
// returned Result carries Passthrough=true and the caller should
// forward raw unchanged to the sink.
func (o *Orchestrator) Process(raw []byte, meta RecordMeta) Result {
	correlationID := uuid.NewString()

	root, err := jsontree.Parse(raw)
	if err != nil {
		o.metrics.recordOutcome("parse_error")
		return Result{
			CorrelationID: correlationID,
			Err:           fmt.Errorf("orchestrator: parse failed: %w", err),
			Events: []Event{{
				Stage:         StageParse,
				Kind:          "parse_failure",
				Message:       err.Error(),
				CorrelationID: correlationID,
			}},
		}
	}

	tm, ok := o.store.Lookup(meta.Connector, meta.Topic)
	if !ok {
		o.metrics.recordOutcome("mapping_miss")
		logFn := o.logger.Debug
		if o.opts.FailOnMissingMapping {
			logFn = o.logger.Error
		}
		logFn("orchestrator: no mapping for record",
			"connector", meta.Connector, "topic", meta.Topic, "correlation_id", correlationID)
		return Result{
			CorrelationID: correlationID,
			Passthrough:   true,
			Events: []Event{{
				Stage:         StageLookup,
				Kind:          "mapping_miss",
				Message:       fmt.Sprintf("no mapping for connector=%q topic=%q", meta.Connector, meta.Topic),
				CorrelationID: correlationID,
			}},
		}
	}

	projected, tplEvents := template.Project(root, tm.Output)
	events := make([]Event, 0, len(tplEvents))
	for _, e := range tplEvents {
		stage := StageInterpret
		if e.Kind == template.EventTransform {
			stage = StageTransform
		}
		events = append(events, Event{
			Stage:         stage,
			Kind:          string(e.Kind),
			Field:         e.Field,
			Message:       e.Message,
			CorrelationID: correlationID,
		})
	}

	output := o.frame(tm.Root, projected, raw, meta)
	o.metrics.recordOutcome("projected")
	return Result{
		CorrelationID: correlationID,
		Output:        output,
		Events:        events,
	}
}

func (o *Orchestrator) frame(root string, projected jsontree.Node, raw []byte, meta RecordMeta) jsontree.Node {
	if o.opts.Framing == FramingFlat {
		return projected
	}

	out := jsontree.NewOrderedObject()
	out.Set(root, projected)

	if o.opts.AttachMetadata {
		md := jsontree.NewOrderedObject()
		md.Set("topic", meta.Topic)
		md.Set("partition", meta.Partition)
		out.Set(o.opts.MetadataKey, md)
	}

	if o.opts.RawPayload {
		rawNode, err := jsontree.Parse(raw)
		if err != nil {
			rawNode = string(raw)
		}
		out.Set(o.opts.RawKey, rawNode)
	}

	return out
}
