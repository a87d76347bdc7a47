package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMissingColumn marks the schema-mismatch subtype of a persistence
// failure: the table lacks an optional column the client tried to write.
var ErrMissingColumn = errors.New("missing column")

// ErrNoSession indicates an operation needed an authenticated session and
// none is stored.
var ErrNoSession = errors.New("no active session")

// RequestError is a non-2xx response from the backend.
type RequestError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// MissingColumnError wraps ErrMissingColumn with the offending column name.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// undefinedColumnCode is PostgreSQL's error code for an unknown column.
const undefinedColumnCode = "42703"

var columnNamePattern = regexp.MustCompile(`column "([^"]+)"`)

// classifyRequestError is the single place that inspects backend error
// payloads. The schema-mismatch detection by message text lives only here
// so the string matching is never duplicated at call sites.
func classifyRequestError(status int, body []byte) error {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Details string `json:"details"`
	}
	_ = json.Unmarshal(body, &payload)

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		message = strings.TrimSpace(payload.Msg)
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}

	missing := payload.Code == undefinedColumnCode ||
		(strings.Contains(message, "column") && strings.Contains(message, "does not exist"))
	if missing {
		column := ""
		if match := columnNamePattern.FindStringSubmatch(message); match != nil {
			column = match[1]
		}
		return &MissingColumnError{Column: column}
	}

	return &RequestError{StatusCode: status, Code: payload.Code, Message: message}
}
