package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is one dispatched state change. Async operations produce a
// pending action followed by exactly one fulfilled or rejected action, all
// sharing a RequestID.
type Action struct {
	ID        string          `json:"id"`
	Slice     string          `json:"slice"`
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Version   int             `json:"version"`
}

// Decode unmarshals the payload into v
func (a Action) Decode(v any) error {
	if len(a.Payload) == 0 {
		return fmt.Errorf("action %s has no payload", a.Type)
	}
	if err := json.Unmarshal(a.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", a.Type, err)
	}
	return nil
}

// EncodePayload marshals a payload; nil stays empty
func EncodePayload(payload any) (json.RawMessage, error) {
	if payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return data, nil
}
