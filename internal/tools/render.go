package tools

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// doc is a YAML mapping that marshals its keys in insertion order. API
// payloads are rendered for language models, and a stable, source-shaped key
// order reads better than the alphabetical order yaml.Marshal gives maps.
type doc struct {
	keys   []string
	values map[string]interface{}
}

func newDoc() *doc {
	return &doc{values: map[string]interface{}{}}
}

// set adds or replaces a key. A replaced key keeps its original position.
func (d *doc) set(key string, value interface{}) *doc {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
	return d
}

func (d *doc) len() int { return len(d.keys) }

// MarshalYAML emits the mapping in insertion order. Values go through the
// regular encoder, so nested docs and plain maps both work.
func (d *doc) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range d.keys {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(d.values[key]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}

// MarshalJSON keeps insertion order for payloads that go out as structured
// results rather than YAML text.
func (d *doc) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(d.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// renderYAML serializes a tool payload for the model to read.
func renderYAML(v interface{}) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// asMap returns v as a JSON object, or nil when it is anything else.
func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// asList returns v as a JSON array, or nil when it is anything else.
func asList(v interface{}) []interface{} {
	l, _ := v.([]interface{})
	return l
}

// stringField reads a string-valued field from a decoded JSON object.
func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// splitFields splits a comma-separated select list, dropping empty entries.
func splitFields(list string) []string {
	var fields []string
	for _, f := range strings.Split(list, ",") {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
