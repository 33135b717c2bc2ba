package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/c360/mapengine/pathlang"
	"github.com/c360/mapengine/template"
	"github.com/c360/mapengine/transform"
)

// topicMappingDoc mirrors one topic-mapping entry of the wire format,
// keeping the output template as raw JSON so template.Compile
// can decode it with key order preserved rather than going through a
// plain map[string]any that would lose it.
type topicMappingDoc struct {
	Root   string          `json:"root"`
	Output json.RawMessage `json:"output"`
}

// rulesDoc mirrors the top-level mapping document.
type rulesDoc struct {
	Version    *int                       `json:"version"`
	Topics     map[string]topicMappingDoc `json:"topics"`
	Connectors map[string]topicMappingDoc `json:"connectors"`
}

// Parse validates and compiles mapping document bytes into a Rules
// value. JSON is the canonical wire format; a document that does not
// look like JSON is parsed as YAML instead (operators more often author
// mappings by hand in YAML) and converted to the same internal form.
// Parse never returns a partially-built Rules: any violation anywhere
// in the document aborts the whole parse.
func Parse(data []byte, pathCache *pathlang.Cache, enc *transform.Encryptor) (*Rules, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return ParseJSON(data, pathCache, enc)
	}
	return ParseYAML(data, pathCache, enc)
}

// ParseJSON parses and validates a mapping document already known to be
// JSON, bypassing the YAML fallback probe.
func ParseJSON(data []byte, pathCache *pathlang.Cache, enc *transform.Encryptor) (*Rules, error) {
	var doc rulesDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("mapping: invalid json document: %w", err)
	}
	return compileDoc(doc, pathCache, enc)
}

// ParseYAML parses and validates a mapping document authored as YAML.
// The conversion to JSON walks the yaml.Node tree directly instead of
// round-tripping through a Go map, since a map would sort object keys
// and break the template's declared key order.
func ParseYAML(data []byte, pathCache *pathlang.Cache, enc *transform.Encryptor) (*Rules, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("mapping: invalid yaml document: %w", err)
	}
	node := &doc
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, fmt.Errorf("mapping: empty yaml document")
		}
		node = node.Content[0]
	}

	var buf bytes.Buffer
	if err := yamlNodeToJSON(&buf, node); err != nil {
		return nil, fmt.Errorf("mapping: failed to normalize yaml document: %w", err)
	}
	return ParseJSON(buf.Bytes(), pathCache, enc)
}

// yamlNodeToJSON serializes a yaml.Node as JSON, preserving mapping key
// order.
func yamlNodeToJSON(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyBytes, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(keyBytes)
			buf.WriteByte(':')
			if err := yamlNodeToJSON(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, child := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := yamlNodeToJSON(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case yaml.AliasNode:
		return yamlNodeToJSON(buf, n.Alias)

	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return err
		}
		scalarBytes, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(scalarBytes)
		return nil

	default:
		return fmt.Errorf("unsupported yaml node kind %d", n.Kind)
	}
}

func compileDoc(doc rulesDoc, pathCache *pathlang.Cache, enc *transform.Encryptor) (*Rules, error) {
	if len(doc.Topics) == 0 && len(doc.Connectors) == 0 {
		return nil, fmt.Errorf("mapping: document must declare at least one of topics or connectors")
	}

	rules := &Rules{
		Topics:     make(map[string]*TopicMapping, len(doc.Topics)),
		Connectors: make(map[string]*TopicMapping, len(doc.Connectors)),
	}
	if doc.Version != nil {
		rules.Version = *doc.Version
	}

	for name, tmDoc := range doc.Topics {
		tm, err := compileTopicMapping(tmDoc, pathCache, enc)
		if err != nil {
			return nil, fmt.Errorf("mapping: topics.%s: %w", name, err)
		}
		rules.Topics[name] = tm
	}
	for name, tmDoc := range doc.Connectors {
		tm, err := compileTopicMapping(tmDoc, pathCache, enc)
		if err != nil {
			return nil, fmt.Errorf("mapping: connectors.%s: %w", name, err)
		}
		rules.Connectors[name] = tm
	}

	return rules, nil
}

func compileTopicMapping(doc topicMappingDoc, pathCache *pathlang.Cache, enc *transform.Encryptor) (*TopicMapping, error) {
	if doc.Root == "" {
		return nil, fmt.Errorf("root must be non-empty text")
	}
	if len(doc.Output) == 0 {
		return nil, fmt.Errorf("output template is required")
	}
	tpl, err := template.Compile(doc.Output, pathCache, enc)
	if err != nil {
		return nil, err
	}
	return &TopicMapping{Root: doc.Root, Output: tpl}, nil
}
