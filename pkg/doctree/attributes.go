package doctree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var attributeKeyPattern = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)

// ValidAttributeKey reports whether key is a lower camelCase identifier
func ValidAttributeKey(key string) bool {
	return attributeKeyPattern.MatchString(key)
}

// Attributes is an ordered string mapping. The zero value is ready to use.
type Attributes struct {
	keys   []string
	values map[string]string
}

// NewAttributes builds attributes from alternating key/value pairs
func NewAttributes(pairs ...string) Attributes {
	var a Attributes
	for i := 0; i+1 < len(pairs); i += 2 {
		a.Set(pairs[i], pairs[i+1])
	}
	return a
}

func (a Attributes) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Value returns the value of key or the empty string
func (a Attributes) Value(key string) string {
	return a.values[key]
}

// Set adds or replaces key, keeping the position of an existing key
func (a *Attributes) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

func (a *Attributes) Delete(key string) {
	if _, ok := a.values[key]; !ok {
		return
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i:i], a.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order
func (a Attributes) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

func (a Attributes) Len() int {
	return len(a.keys)
}

// Range calls fn for each pair in order until fn returns false
func (a Attributes) Range(fn func(key, value string) bool) {
	for _, k := range a.keys {
		if !fn(k, a.values[k]) {
			return
		}
	}
}

func (a Attributes) Clone() Attributes {
	var out Attributes
	if len(a.keys) == 0 {
		return out
	}
	out.keys = make([]string, len(a.keys))
	copy(out.keys, a.keys)
	out.values = make(map[string]string, len(a.values))
	for k, v := range a.values {
		out.values[k] = v
	}
	return out
}

// Equal compares the key/value pairs regardless of order
func (a Attributes) Equal(b Attributes) bool {
	if len(a.keys) != len(b.keys) {
		return false
	}
	for k, v := range a.values {
		if bv, ok := b.values[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// Map returns an unordered copy
func (a Attributes) Map() map[string]string {
	out := make(map[string]string, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

func (a Attributes) String() string {
	parts := make([]string, 0, len(a.keys))
	for _, k := range a.keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, a.values[k]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// MarshalJSON encodes the attributes as a JSON object preserving key order
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range a.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(a.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of strings keeping the key order
func (a *Attributes) UnmarshalJSON(data []byte) error {
	*a = Attributes{}
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("attributes: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("attributes: expected string key, got %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("attributes: value of %q: %w", key, err)
		}
		a.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
