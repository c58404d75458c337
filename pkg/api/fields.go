package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Field is one key/value pair of a JSON object. Value holds the raw JSON
// encoding of the value exactly as received.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Text returns the value rendered as plain text: strings without quotes,
// everything else as compact JSON.
func (f Field) Text() string {
	if len(f.Value) > 0 && f.Value[0] == '"' {
		var s string
		if err := json.Unmarshal(f.Value, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, f.Value); err != nil {
		return string(f.Value)
	}
	return buf.String()
}

// ErrNotObject is returned when a Fields value is not a JSON object.
var ErrNotObject = errors.New("must be a JSON object")

// Fields is a JSON object that remembers the order its keys arrived in.
// A repeated key keeps its first position and takes the last value.
type Fields []Field

// UnmarshalJSON decodes a JSON object, preserving key order.
func (fs *Fields) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*fs = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrNotObject
	}

	out := Fields{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if i, seen := index[key]; seen {
			out[i].Value = raw
			continue
		}
		index[key] = len(out)
		out = append(out, Field{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*fs = out
	return nil
}

// MarshalJSON encodes the fields as a JSON object in their original order.
func (fs Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(f.Value) == 0 {
			buf.WriteString("null")
			continue
		}
		buf.Write(f.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Keys returns the keys in order.
func (fs Fields) Keys() []string {
	keys := make([]string, len(fs))
	for i, f := range fs {
		keys[i] = f.Key
	}
	return keys
}
