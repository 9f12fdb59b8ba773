/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rubric

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Dimensions and SubDimensions serialize as mappings keyed by Key. Decoding
// keeps the document's key order.
type (
	Dimensions    []Dimension
	SubDimensions []SubDimension
)

type dimensionBody struct {
	Enabled       *bool         `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Weight        *float64      `json:"weight,omitempty" yaml:"weight,omitempty"`
	SubDimensions SubDimensions `json:"sub_dimensions" yaml:"sub_dimensions"`
}

type subDimensionBody struct {
	Enabled   *bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	FullScore float64 `json:"full_score" yaml:"full_score"`
}

func (b dimensionBody) dimension(key string) Dimension {
	d := Dimension{Key: key, Enabled: true, Weight: 1, SubDimensions: b.SubDimensions}
	if b.Enabled != nil {
		d.Enabled = *b.Enabled
	}
	if b.Weight != nil {
		d.Weight = *b.Weight
	}
	return d
}

func (d Dimension) body() dimensionBody {
	return dimensionBody{Enabled: &d.Enabled, Weight: &d.Weight, SubDimensions: d.SubDimensions}
}

func (b subDimensionBody) subDimension(key string) SubDimension {
	s := SubDimension{Key: key, Enabled: true, FullScore: b.FullScore}
	if b.Enabled != nil {
		s.Enabled = *b.Enabled
	}
	return s
}

func (s SubDimension) body() subDimensionBody {
	return subDimensionBody{Enabled: &s.Enabled, FullScore: s.FullScore}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (ds *Dimensions) UnmarshalYAML(node *yaml.Node) error {
	*ds = nil
	return eachYAMLEntry(node, func(key string, value *yaml.Node) error {
		var b dimensionBody
		if err := value.Decode(&b); err != nil {
			return fmt.Errorf("dimension %q: %w", key, err)
		}
		*ds = append(*ds, b.dimension(key))
		return nil
	})
}

// MarshalYAML implements yaml.Marshaler.
func (ds Dimensions) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, d := range ds {
		if err := appendYAMLEntry(node, d.Key, d.body()); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (ss *SubDimensions) UnmarshalYAML(node *yaml.Node) error {
	*ss = nil
	return eachYAMLEntry(node, func(key string, value *yaml.Node) error {
		var b subDimensionBody
		if err := value.Decode(&b); err != nil {
			return fmt.Errorf("sub-dimension %q: %w", key, err)
		}
		*ss = append(*ss, b.subDimension(key))
		return nil
	})
}

// MarshalYAML implements yaml.Marshaler.
func (ss SubDimensions) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range ss {
		if err := appendYAMLEntry(node, s.Key, s.body()); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (ds *Dimensions) UnmarshalJSON(data []byte) error {
	*ds = nil
	return eachJSONEntry(data, func(key string, raw json.RawMessage) error {
		var b dimensionBody
		if err := json.Unmarshal(raw, &b); err != nil {
			return fmt.Errorf("dimension %q: %w", key, err)
		}
		*ds = append(*ds, b.dimension(key))
		return nil
	})
}

// MarshalJSON implements json.Marshaler.
func (ds Dimensions) MarshalJSON() ([]byte, error) {
	return encodeJSONEntries(len(ds), func(i int) (string, any) {
		return ds[i].Key, ds[i].body()
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (ss *SubDimensions) UnmarshalJSON(data []byte) error {
	*ss = nil
	return eachJSONEntry(data, func(key string, raw json.RawMessage) error {
		var b subDimensionBody
		if err := json.Unmarshal(raw, &b); err != nil {
			return fmt.Errorf("sub-dimension %q: %w", key, err)
		}
		*ss = append(*ss, b.subDimension(key))
		return nil
	})
}

// MarshalJSON implements json.Marshaler.
func (ss SubDimensions) MarshalJSON() ([]byte, error) {
	return encodeJSONEntries(len(ss), func(i int) (string, any) {
		return ss[i].Key, ss[i].body()
	})
}

func eachYAMLEntry(node *yaml.Node, fn func(string, *yaml.Node) error) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func appendYAMLEntry(node *yaml.Node, key string, body any) error {
	var value yaml.Node
	if err := value.Encode(body); err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, &value)
	return nil
}

func eachJSONEntry(data []byte, fn func(string, json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%q: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

func encodeJSONEntries(n int, entry func(int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := range n {
		key, body := entry(i)
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
