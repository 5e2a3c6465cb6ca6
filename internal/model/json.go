package model

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

// MarshalJSON encodes the node as {"type", "attrs", "text", "content"}.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, "type", n.typ.Name); err != nil {
		return nil, err
	}
	if n.IsText() {
		return sjson.SetBytes(out, "text", n.text)
	}
	for _, k := range n.attrs.Keys() {
		if out, err = sjson.SetBytes(out, "attrs."+k, n.attrs[k]); err != nil {
			return nil, fmt.Errorf("encode attr %q: %w", k, err)
		}
	}
	if n.content.ChildCount() == 0 {
		return out, nil
	}
	if out, err = sjson.SetRawBytes(out, "content", []byte(`[]`)); err != nil {
		return nil, err
	}
	for _, child := range n.content.content {
		raw, err := child.MarshalJSON()
		if err != nil {
			return nil, err
		}
		if out, err = sjson.SetRawBytes(out, "content.-1", raw); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// NodeFromJSON decodes a node produced by Node.MarshalJSON.
func (s *Schema) NodeFromJSON(data []byte) (*Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidJSON)
	}
	return s.NodeFromResult(gjson.ParseBytes(data))
}

// NodeFromResult decodes a node from an already parsed JSON value.
func (s *Schema) NodeFromResult(r gjson.Result) (*Node, error) {
	if !r.IsObject() {
		return nil, fmt.Errorf("%w: expected object, got %s", ErrInvalidJSON, r.Type)
	}
	name := r.Get("type").String()
	t := s.types[name]
	if t == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, name)
	}
	if t.IsText() {
		text := r.Get("text")
		if text.Type != gjson.String || text.String() == "" {
			return nil, fmt.Errorf("%w: text node needs non-empty text", ErrInvalidJSON)
		}
		return s.Text(text.String()), nil
	}

	attrs := Attrs{}
	r.Get("attrs").ForEach(func(k, v gjson.Result) bool {
		attrs[k.String()] = normalizeValue(v.Value())
		return true
	})

	var children []*Node
	for _, c := range r.Get("content").Array() {
		child, err := s.NodeFromResult(c)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return t.CreateChecked(attrs, NewFragment(children...))
}

// NodeFromYAML decodes a node written in YAML using the JSON field names.
func (s *Schema) NodeFromYAML(data []byte) (*Node, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return s.NodeFromJSON(raw)
}
