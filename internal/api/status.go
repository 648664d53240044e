package api

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	RequestID  string
	Body       []byte
}

// Error implements the error interface
func (e *StatusError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("nvms API error (status %d, request_id %s): %s", e.StatusCode, e.RequestID, e.Message)
	}
	return fmt.Sprintf("nvms API error (status %d): %s", e.StatusCode, e.Message)
}

// FieldErrors returns per-field validation messages from a DRF-style error body.
func (e *StatusError) FieldErrors() map[string][]string {
	fields := make(map[string][]string)
	result := gjson.ParseBytes(e.Body)
	if !result.IsObject() {
		return fields
	}
	result.ForEach(func(key, value gjson.Result) bool {
		if value.IsArray() {
			for _, msg := range value.Array() {
				fields[key.String()] = append(fields[key.String()], msg.String())
			}
		} else if value.Type == gjson.String {
			fields[key.String()] = []string{value.String()}
		}
		return true
	})
	return fields
}

// AsStatus finds the first StatusError in err's chain.
func AsStatus(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if stderrors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	statusErr, ok := AsStatus(err)
	return ok && statusErr.StatusCode == code
}

func newStatusError(method, path string, status int, body []byte, requestID string) *StatusError {
	return &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    errorMessage(status, body),
		RequestID:  requestID,
		Body:       body,
	}
}

// errorMessage picks the most useful text out of an error body.
func errorMessage(status int, body []byte) string {
	result := gjson.ParseBytes(body)
	if result.IsObject() {
		for _, key := range []string{"detail", "error", "message"} {
			if msg := result.Get(key).String(); msg != "" {
				return msg
			}
		}
		if msg := result.Get("non_field_errors.0").String(); msg != "" {
			return msg
		}

		var parts []string
		result.ForEach(func(key, value gjson.Result) bool {
			msg := value.String()
			if value.IsArray() && len(value.Array()) > 0 {
				msg = value.Array()[0].String()
			}
			parts = append(parts, key.String()+": "+msg)
			return true
		})
		if len(parts) > 0 {
			sort.Strings(parts)
			return strings.Join(parts, "; ")
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		return text
	}
	return http.StatusText(status)
}
