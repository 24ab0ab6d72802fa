package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// marshalPayload converts a signal payload to JSON TEXT for storage.
// Go's json.Marshal sorts map keys, so identical payloads always produce
// identical column values regardless of insertion order.
func marshalPayload(payload map[string]any) (string, error) {
	if payload == nil {
		return "{}", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // payloads may carry URLs and emoji
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// unmarshalPayload restores a stored payload column.
// An empty object comes back as an empty non-nil map so callers can index
// into it without a nil check.
func unmarshalPayload(text string) (map[string]any, error) {
	payload := make(map[string]any)
	if text == "" {
		return payload, nil
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return payload, nil
}
