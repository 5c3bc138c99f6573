package bridge

import (
	"bytes"
	"encoding/json"
)

// Message decodes a command result that may be bare or wrapped in a
// {"message": ...} envelope.
type Message[T any] struct {
	Value T
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Message[T]) UnmarshalJSON(data []byte) error {
	if inner, ok := envelope(data); ok {
		return json.Unmarshal(inner, &m.Value)
	}
	return json.Unmarshal(data, &m.Value)
}

// MarshalJSON writes the bare value.
func (m Message[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Value)
}

// envelope returns the "message" member when data is an object whose only
// key is "message". A result object that merely has a message field among
// others is left alone.
func envelope(data []byte) (json.RawMessage, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || len(obj) != 1 {
		return nil, false
	}
	inner, ok := obj["message"]
	return inner, ok
}
