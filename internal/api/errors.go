package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// GenericMessage is used when neither the backend nor the caller supplies a message
const GenericMessage = "request failed"

// Kind classifies a failed request
type Kind int

const (
	// KindTransport covers dial failures, timeouts and cancelled contexts
	KindTransport Kind = iota + 1
	// KindBackend covers non-2xx statuses and bodies without the success sentinel
	KindBackend
	// KindDecode covers success bodies that do not have the expected shape
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindBackend:
		return "backend"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// Error is the single failure type returned by Client
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", GenericMessage, e.Status)
	}
	return GenericMessage
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the user-facing message for err. Backend-provided messages
// win over fallback; fallback wins over GenericMessage.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback != "" {
		return fallback
	}
	if err != nil && apiErr == nil {
		return err.Error()
	}
	return GenericMessage
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// extractMessage applies the canonical lookup order: a string "error",
// then "error.message", then "message".
func extractMessage(fields map[string]json.RawMessage) string {
	if raw, ok := fields["error"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	if raw, ok := fields["message"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}
