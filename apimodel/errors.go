package apimodel

import (
	"encoding/json"
	"strings"
)

// ErrorResponse covers the error payload shapes the API uses:
// {"message": "..."} and {"error": "..."}.
type ErrorResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorMessage extracts a human readable message from an error body. It
// returns "" when the body carries none.
func ErrorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var er ErrorResponse
	if err := json.Unmarshal([]byte(trimmed), &er); err != nil {
		// Plain text bodies are short enough to show as they are
		if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "<") && len(trimmed) <= 200 {
			return trimmed
		}
		return ""
	}
	if er.Message != "" {
		return er.Message
	}
	return er.Error
}
