package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies failures so callers can branch without matching messages
type ErrorKind string

// Error kinds
const (
	// KindConfig indicates a configuration the user can fix without network access
	KindConfig ErrorKind = "config"

	// KindValidation indicates an invalid argument supplied by the caller
	KindValidation ErrorKind = "validation"

	// KindConnection indicates the upstream could not be reached
	KindConnection ErrorKind = "connection"

	// KindTimeout indicates the upstream did not answer in time
	KindTimeout ErrorKind = "timeout"

	// KindAuth indicates a credential or permission problem
	KindAuth ErrorKind = "auth"

	// KindGuestToken indicates the guest token could not be issued
	KindGuestToken ErrorKind = "guest_token"

	// KindUpstream indicates an unexpected upstream status
	KindUpstream ErrorKind = "upstream"

	// KindUnknown is reported for errors outside the closed set
	KindUnknown ErrorKind = "unknown"
)

// Error is the single error type returned by the embedding core
type Error struct {
	Kind    ErrorKind
	Message string

	// Problems lists every violated rule for configuration errors
	Problems []string

	// Status and Body carry the upstream response for diagnostics
	Status int
	Body   string

	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Problems) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Problems, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether the upstream rejected the bearer token
func (e *Error) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// NewConfigError returns a configuration error listing every problem found
func NewConfigError(problems []string) error {
	return &Error{
		Kind:     KindConfig,
		Message:  "superset configuration is incomplete or invalid",
		Problems: problems,
	}
}

// ConfigUnavailableError wraps a failure to read configuration from its store
func ConfigUnavailableError(err error) error {
	return &Error{Kind: KindConfig, Message: "configuration unavailable", Err: err}
}

// ValidationError returns a wrapped validation error with context
func ValidationError(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// ConnectionError wraps a transport failure that is not a timeout
func ConnectionError(operation string, err error) error {
	return &Error{Kind: KindConnection, Message: fmt.Sprintf("%s: cannot reach superset", operation), Err: err}
}

// TimeoutError wraps a transport failure caused by a deadline
func TimeoutError(operation string, err error) error {
	return &Error{Kind: KindTimeout, Message: fmt.Sprintf("%s: superset did not respond in time", operation), Err: err}
}

// AuthError returns an authentication error for the given upstream status
func AuthError(status int, message string) error {
	return &Error{Kind: KindAuth, Message: message, Status: status}
}

// GuestTokenError returns a guest token error carrying the upstream response
func GuestTokenError(status int, body, message string) error {
	return &Error{Kind: KindGuestToken, Message: message, Status: status, Body: body}
}

// UpstreamError returns an error for an unexpected upstream status
func UpstreamError(operation string, status int, body string) error {
	return &Error{
		Kind:    KindUpstream,
		Message: fmt.Sprintf("%s returned HTTP %d", operation, status),
		Status:  status,
		Body:    body,
	}
}

// MalformedResponseError reports a 200 response whose body could not be used
func MalformedResponseError(operation, body string) error {
	return &Error{
		Kind:    KindUpstream,
		Message: fmt.Sprintf("%s returned a malformed response", operation),
		Status:  http.StatusOK,
		Body:    body,
	}
}

// KindOf returns the kind of err, or KindUnknown
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind checks if err is or wraps an *Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// IsUnauthorized checks if err carries an upstream 401
func IsUnauthorized(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Unauthorized()
	}
	return false
}

// HTTPStatus maps an error kind onto the status used by the inbound API
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindConfig, KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindGuestToken:
		return http.StatusUnprocessableEntity
	case KindConnection, KindUpstream:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns a message safe to show to end users
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal error"
	}
	if len(e.Problems) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Problems, "; "))
	}
	return e.Message
}
