package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ServerError is a non-2xx reply from the backend.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// ConnectivityError means no usable response was received.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// newServerError extracts a message from body: the JSON "message" field, then
// "error", then a short plain-text body, else a generic fallback.
func newServerError(status int, body []byte) *ServerError {
	return &ServerError{StatusCode: status, Message: errorMessage(status, body)}
}

func errorMessage(status int, body []byte) string {
	trimmed := bytes.TrimSpace(body)

	var fields struct {
		Message any `json:"message"`
		Error   any `json:"error"`
	}
	if len(trimmed) > 0 && trimmed[0] == '{' && json.Unmarshal(trimmed, &fields) == nil {
		for _, v := range []any{fields.Message, fields.Error} {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return fallbackMessage(status)
	}

	var quoted string
	if json.Unmarshal(trimmed, &quoted) == nil && strings.TrimSpace(quoted) != "" {
		return strings.TrimSpace(quoted)
	}

	text := string(trimmed)
	if text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
		return text
	}
	return fallbackMessage(status)
}

func fallbackMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("request failed with status %d (%s)", status, text)
	}
	return fmt.Sprintf("request failed with status %d", status)
}
