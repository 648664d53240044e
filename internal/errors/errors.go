package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeAuthLoginRejected ErrorCode = "AUTH-001"
	ErrCodeAuthExpired       ErrorCode = "AUTH-002"
	ErrCodeAuthNotLoggedIn   ErrorCode = "AUTH-003"
	ErrCodeAuthTokenInvalid  ErrorCode = "AUTH-004"

	// API errors (API-001 to API-099)
	ErrCodeAPITransport  ErrorCode = "API-001"
	ErrCodeAPIStatus     ErrorCode = "API-002"
	ErrCodeAPIDecode     ErrorCode = "API-003"
	ErrCodeAPIValidation ErrorCode = "API-004"
	ErrCodeAPIEncode     ErrorCode = "API-005"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeSessionProfile ErrorCode = "SESSION-001"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigRead    ErrorCode = "CONFIG-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-001"
	ErrCodeFileWriteFailed ErrorCode = "IO-002"
	ErrCodeFileUnmarshal   ErrorCode = "IO-003"
)

// NVMSError represents an enhanced error with code, suggestions, and documentation
type NVMSError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *NVMSError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *NVMSError) Unwrap() error {
	return e.Cause
}

// New creates a new NVMSError
func New(code ErrorCode, message string) *NVMSError {
	return &NVMSError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new NVMSError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *NVMSError {
	return &NVMSError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *NVMSError) WithSuggestion(suggestion string) *NVMSError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *NVMSError) WithSuggestions(suggestions ...string) *NVMSError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *NVMSError) WithDocs(url string) *NVMSError {
	e.DocsURL = url
	return e
}

// As finds the first NVMSError in err's chain.
func As(err error) (*NVMSError, bool) {
	var nvmsErr *NVMSError
	if stderrors.As(err, &nvmsErr) {
		return nvmsErr, true
	}
	return nil, false
}

// IsCode reports whether any NVMSError in err's chain carries code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		nvmsErr, ok := As(err)
		if !ok {
			return false
		}
		if nvmsErr.Code == code {
			return true
		}
		err = nvmsErr.Cause
	}
	return false
}

// Common error constructors for frequently used errors

// NewLoginRejectedError creates an invalid credentials error
func NewLoginRejectedError(username string, cause error) *NVMSError {
	return Wrap(ErrCodeAuthLoginRejected, fmt.Sprintf("login rejected for user: %s", username), cause).
		WithSuggestion("Check your username and password").
		WithSuggestion("Ask an administrator to verify that your account is active")
}

// NewAuthExpiredError creates an error for a session that could not be renewed
func NewAuthExpiredError(cause error) *NVMSError {
	return Wrap(ErrCodeAuthExpired, "session expired and could not be refreshed", cause).
		WithSuggestion("Run 'nvms auth login' to sign in again")
}

// NewNotLoggedInError creates an error for commands that need stored credentials
func NewNotLoggedInError() *NVMSError {
	return New(ErrCodeAuthNotLoggedIn, "not logged in").
		WithSuggestion("Run 'nvms auth login' first")
}

// NewValidationError creates a form-level validation error from a rejected mutation
func NewValidationError(resource string, cause error) *NVMSError {
	return Wrap(ErrCodeAPIValidation, fmt.Sprintf("the server rejected the %s", resource), cause).
		WithSuggestion("Review the field errors above and submit again")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *NVMSError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Run 'nvms config view' to inspect the effective configuration").
		WithSuggestion("Set NVMS_API_URL to override the backend address")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *NVMSError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
