// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package media

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Setting is one key/value encoder parameter.
type Setting struct {
	Key   string
	Value any
}

// Settings is an ordered encoder parameter set. Keys are unique; order is
// the order of first insertion.
type Settings struct {
	entries []Setting
}

// NewSettings builds a set from pairs, applying Set for each in order.
func NewSettings(pairs ...Setting) Settings {
	var s Settings
	for _, p := range pairs {
		s.Set(p.Key, p.Value)
	}
	return s
}

// Set replaces the value of an existing key in place or appends a new key.
func (s *Settings) Set(key string, value any) {
	for i := range s.entries {
		if s.entries[i].Key == key {
			s.entries[i].Value = value
			return
		}
	}
	s.entries = append(s.entries, Setting{Key: key, Value: value})
}

// Get returns the value stored for key.
func (s Settings) Get(key string) (any, bool) {
	for _, e := range s.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Int returns the value for key as an int64. Strings are parsed.
func (s Settings) Int(key string) (int64, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

// Str returns the value for key formatted as a string.
func (s Settings) Str(key string) (string, bool) {
	v, ok := s.Get(key)
	if !ok {
		return "", false
	}
	return formatValue(v), true
}

// Len returns the number of keys.
func (s Settings) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the ordered entries.
func (s Settings) Entries() []Setting {
	out := make([]Setting, len(s.entries))
	copy(out, s.entries)
	return out
}

// Keys returns the keys in order.
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Clone returns an independent copy.
func (s Settings) Clone() Settings {
	return Settings{entries: s.Entries()}
}

// Merge returns a new set with overrides applied last-write-wins per key.
// Overridden keys keep their position; new keys are appended. Values are
// replaced wholesale, nested values are never merged.
func (s Settings) Merge(overrides Settings) Settings {
	out := s.Clone()
	for _, e := range overrides.entries {
		out.Set(e.Key, e.Value)
	}
	return out
}

func (s Settings) GoString() string {
	parts := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		parts = append(parts, e.Key+"="+formatValue(e.Value))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// UnmarshalYAML decodes a mapping while keeping key order.
func (s *Settings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("settings: expected mapping, got %s", nodeKind(node.Kind))
	}
	var out Settings
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("settings: key: %w", err)
		}
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("settings: value for %q: %w", key, err)
		}
		out.Set(key, value)
	}
	*s = out
	return nil
}

// MarshalYAML encodes the set as an ordered mapping.
func (s Settings) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range s.entries {
		var key, value yaml.Node
		if err := key.Encode(e.Key); err != nil {
			return nil, err
		}
		if err := value.Encode(e.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &key, &value)
	}
	return node, nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "mapping"
	}
}
