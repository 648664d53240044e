// Package exitcode maps command errors to process exit statuses.
package exitcode

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/felixgeelhaar/nvms/internal/api"
	"github.com/felixgeelhaar/nvms/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage or configuration
	UsageError = 2

	// ValidationError indicates the backend rejected submitted data
	ValidationError = 3

	// NotFound indicates the requested record does not exist
	NotFound = 4

	// AuthError indicates an authentication or authorization failure
	AuthError = 5

	// NetworkError indicates the backend could not be reached
	NetworkError = 6

	// Interrupted indicates the command was cancelled (Ctrl+C)
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode classifies err by the typed errors in its chain.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if stderrors.Is(err, context.Canceled) {
		return Interrupted
	}

	if nvmsErr, ok := errors.As(err); ok {
		switch {
		case strings.HasPrefix(string(nvmsErr.Code), "AUTH-"),
			nvmsErr.Code == errors.ErrCodeSessionProfile && errors.IsCode(err, errors.ErrCodeAuthExpired):
			return AuthError
		case strings.HasPrefix(string(nvmsErr.Code), "CONFIG-"):
			return UsageError
		case nvmsErr.Code == errors.ErrCodeAPIValidation:
			return ValidationError
		case nvmsErr.Code == errors.ErrCodeAPITransport:
			return NetworkError
		}
	}

	if status, ok := api.AsStatus(err); ok {
		switch status.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return AuthError
		case http.StatusNotFound:
			return NotFound
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return ValidationError
		}
		return GeneralError
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) || stderrors.Is(err, context.DeadlineExceeded) {
		return NetworkError
	}

	// cobra reports flag and argument problems as plain errors
	msg := err.Error()
	for _, prefix := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "invalid argument", "required flag", "accepts "} {
		if strings.HasPrefix(msg, prefix) {
			return UsageError
		}
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments or configuration)"
	case ValidationError:
		return "Validation error"
	case NotFound:
		return "Not found"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
