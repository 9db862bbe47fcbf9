// Package config exposes keyword definition files as a generic hierarchical value.
//
// Definitions are written in JSON (the historical format) or YAML; both are read through
// gopkg.in/yaml.v3, since every JSON document is also a YAML document.
package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind classifies a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindString
	KindNumber
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a read-only view of one node of a parsed definition. The zero Value is invalid.
type Value struct {
	node *yaml.Node
}

// Parse reads a single JSON or YAML document.
func Parse(b []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Value{}, fmt.Errorf("parse config: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Value{}, errors.New("parse config: empty document")
	}
	return Value{node: resolve(doc.Content[0])}, nil
}

// ParseList reads a document holding either one object or an array of objects.
func ParseList(b []byte) ([]Value, error) {
	v, err := Parse(b)
	if err != nil {
		return nil, err
	}
	if !v.IsArray() {
		return []Value{v}, nil
	}
	out := make([]Value, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		out = append(out, v.Index(i))
	}
	return out, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func (v Value) Kind() Kind {
	if v.node == nil {
		return KindInvalid
	}
	switch v.node.Kind {
	case yaml.MappingNode:
		return KindObject
	case yaml.SequenceNode:
		return KindArray
	case yaml.ScalarNode:
		switch v.node.ShortTag() {
		case "!!null":
			return KindNull
		case "!!bool":
			return KindBool
		case "!!int", "!!float":
			return KindNumber
		default:
			return KindString
		}
	}
	return KindInvalid
}

func (v Value) IsValid() bool  { return v.node != nil }
func (v Value) IsString() bool { return v.Kind() == KindString }
func (v Value) IsNumber() bool { return v.Kind() == KindNumber }
func (v Value) IsArray() bool  { return v.Kind() == KindArray }
func (v Value) IsObject() bool { return v.Kind() == KindObject }

// IsInt reports whether v is a number without a fractional part.
func (v Value) IsInt() bool {
	return v.IsNumber() && v.node.ShortTag() == "!!int"
}

// Line returns the 1-based source line of v, or 0.
func (v Value) Line() int {
	if v.node == nil {
		return 0
	}
	return v.node.Line
}

// Has reports whether v is an object holding key.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Get returns the member key of an object.
func (v Value) Get(key string) (Value, bool) {
	if !v.IsObject() {
		return Value{}, false
	}
	c := v.node.Content
	for i := 0; i+1 < len(c); i += 2 {
		if c[i].Value == key {
			return Value{node: resolve(c[i+1])}, true
		}
	}
	return Value{}, false
}

// Keys returns the member names of an object in document order.
func (v Value) Keys() []string {
	if !v.IsObject() {
		return nil
	}
	c := v.node.Content
	keys := make([]string, 0, len(c)/2)
	for i := 0; i+1 < len(c); i += 2 {
		keys = append(keys, c[i].Value)
	}
	return keys
}

// Len returns the number of elements of an array, or 0.
func (v Value) Len() int {
	if !v.IsArray() {
		return 0
	}
	return len(v.node.Content)
}

// Index returns element i of an array; out of range yields an invalid Value.
func (v Value) Index(i int) Value {
	if !v.IsArray() || i < 0 || i >= len(v.node.Content) {
		return Value{}
	}
	return Value{node: resolve(v.node.Content[i])}
}

func (v Value) AsString() (string, error) {
	if !v.IsString() {
		return "", fmt.Errorf("line %d: expected string, got %s", v.Line(), v.Kind())
	}
	return v.node.Value, nil
}

func (v Value) AsInt() (int, error) {
	if !v.IsInt() {
		return 0, fmt.Errorf("line %d: expected integer, got %s", v.Line(), v.describe())
	}
	var out int
	if err := v.node.Decode(&out); err != nil {
		return 0, fmt.Errorf("line %d: %w", v.Line(), err)
	}
	return out, nil
}

func (v Value) AsFloat() (float64, error) {
	if !v.IsNumber() {
		return 0, fmt.Errorf("line %d: expected number, got %s", v.Line(), v.describe())
	}
	var out float64
	if err := v.node.Decode(&out); err != nil {
		return 0, fmt.Errorf("line %d: %w", v.Line(), err)
	}
	return out, nil
}

// GetString returns the string member key.
func (v Value) GetString(key string) (string, error) {
	m, ok := v.Get(key)
	if !ok {
		return "", fmt.Errorf("missing %q", key)
	}
	s, err := m.AsString()
	if err != nil {
		return "", fmt.Errorf("%q: %w", key, err)
	}
	return s, nil
}

// GetInt returns the integer member key.
func (v Value) GetInt(key string) (int, error) {
	m, ok := v.Get(key)
	if !ok {
		return 0, fmt.Errorf("missing %q", key)
	}
	n, err := m.AsInt()
	if err != nil {
		return 0, fmt.Errorf("%q: %w", key, err)
	}
	return n, nil
}

// GetFloat returns the numeric member key.
func (v Value) GetFloat(key string) (float64, error) {
	m, ok := v.Get(key)
	if !ok {
		return 0, fmt.Errorf("missing %q", key)
	}
	f, err := m.AsFloat()
	if err != nil {
		return 0, fmt.Errorf("%q: %w", key, err)
	}
	return f, nil
}

func (v Value) describe() string {
	if v.Kind() == KindString || v.Kind() == KindNumber {
		return fmt.Sprintf("%s %q", v.Kind(), strings.TrimSpace(v.node.Value))
	}
	return v.Kind().String()
}
