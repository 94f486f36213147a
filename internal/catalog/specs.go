package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
)

// Spec is one specification entry. Value holds the decoded scalar
// (string, json.Number, bool, nil) or compact JSON text for nested values.
type Spec struct {
	Key   string
	Value any
}

// Specs is an ordered specification mapping.
// Decoding preserves document order; anything that is not an object
// decodes to an empty mapping.
type Specs []Spec

// Get returns the value stored under key and whether it was present.
func (s Specs) Get(key string) (any, bool) {
	for _, e := range s {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// put sets key to v. A repeated key keeps its first position and takes
// the later value, matching how a decoded object treats duplicates.
func (s Specs) put(key string, v any) Specs {
	for i := range s {
		if s[i].Key == key {
			s[i].Value = v
			return s
		}
	}
	return append(s, Spec{Key: key, Value: v})
}

// MarshalJSON writes the entries as a JSON object in order.
func (s Specs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := marshalSpecValue(e.Value)
		if err != nil {
			return nil, fmt.Errorf("specs[%q]: %w", e.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalSpecValue(v any) ([]byte, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}

// UnmarshalJSON decodes a JSON object keeping key order.
func (s *Specs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*s = Specs{}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	// Opening brace
	if _, err := dec.Token(); err != nil {
		return err
	}

	out := Specs{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("specs: unexpected key token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("specs[%q]: %w", key, err)
		}
		val, err := decodeSpecValue(raw)
		if err != nil {
			return fmt.Errorf("specs[%q]: %w", key, err)
		}
		out = out.put(key, val)
	}

	*s = out
	return nil
}

// decodeSpecValue turns a raw JSON value into a scalar.
// Nested objects and arrays are kept as compact JSON text.
func decodeSpecValue(raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	switch raw[0] {
	case 'n':
		return nil, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case '"':
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, err
		}
		return str, nil
	case '{', '[':
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return nil, err
		}
		return json.RawMessage(compact.Bytes()), nil
	default:
		canon, err := canonicalNumber(string(raw))
		if err != nil {
			return nil, err
		}
		return json.Number(canon), nil
	}
}

// MarshalYAML writes the entries as an ordered YAML mapping.
func (s Specs) MarshalYAML() (any, error) {
	ms := make(yaml.MapSlice, 0, len(s))
	for _, e := range s {
		v := e.Value
		if raw, ok := v.(json.RawMessage); ok {
			v = string(raw)
		}
		ms = append(ms, yaml.MapItem{Key: e.Key, Value: v})
	}
	return ms, nil
}

// UnmarshalYAML decodes a YAML mapping keeping key order.
func (s *Specs) UnmarshalYAML(unmarshal func(any) error) error {
	var probe any
	if err := unmarshal(&probe); err != nil {
		return err
	}
	switch probe.(type) {
	case map[string]any, map[any]any:
	default:
		*s = Specs{}
		return nil
	}

	var ms yaml.MapSlice
	if err := unmarshal(&ms); err != nil {
		return err
	}

	out := make(Specs, 0, len(ms))
	for _, item := range ms {
		v := item.Value
		switch v.(type) {
		case map[string]any, []any, yaml.MapSlice:
			b, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("specs[%v]: %w", item.Key, err)
			}
			v = json.RawMessage(b)
		}
		out = out.put(fmt.Sprint(item.Key), v)
	}

	*s = out
	return nil
}
