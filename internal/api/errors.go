package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/satellite-console/internal/validate"
)

var (
	// ErrUnauthenticated is returned when an operation requires a local session
	// and none is available.
	ErrUnauthenticated = errors.New("api: no authenticated session")
)

// ServerValidationError carries field level issues reported by the backend on
// a 400 response. It is distinct from client-side validation, which never
// reaches the network.
type ServerValidationError struct {
	FieldErrors map[string]string
	Message     string
}

// Error implements the error interface.
func (e *ServerValidationError) Error() string {
	if e == nil {
		return ""
	}
	if msg := e.UserMessage(); msg != "" {
		return msg
	}
	return "validation failed"
}

// UserMessage folds all server-provided field messages into a single string,
// one message per line in stable field order. When no field details were
// returned the top-level message is used.
func (e *ServerValidationError) UserMessage() string {
	if e == nil {
		return ""
	}
	if len(e.FieldErrors) == 0 {
		return e.Message
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for field := range e.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, e.FieldErrors[field])
	}
	return strings.Join(messages, "\n")
}

// AuthError reports a 401 or 403 response to a credential-bearing request.
type AuthError struct {
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e == nil || e.Message == "" {
		return "invalid username or password"
	}
	return e.Message
}

// ConflictError reports a 409 response, typically a duplicate registration.
type ConflictError struct {
	Message string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e == nil || e.Message == "" {
		return "user already exists"
	}
	return e.Message
}

// ServerError reports any other non-2xx response.
type ServerError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error (%d)", e.Status)
}

// NetworkError reports a transport level failure before any HTTP status was
// received.
type NetworkError struct {
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e == nil || e.Err == nil {
		return "network error"
	}
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap exposes the underlying transport error.
func (e *NetworkError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorKind maps the client error taxonomy to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrUnauthenticated) {
		return "unauthenticated"
	}

	var serverValidation *ServerValidationError
	if errors.As(err, &serverValidation) {
		return "server_validation"
	}
	var auth *AuthError
	if errors.As(err, &auth) {
		return "auth"
	}
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return "conflict"
	}
	var server *ServerError
	if errors.As(err, &server) {
		return "server"
	}
	var network *NetworkError
	if errors.As(err, &network) {
		return "network"
	}
	var clientValidation *validate.Error
	if errors.As(err, &clientValidation) {
		return "validation"
	}

	return "unexpected"
}

// UserMessage extracts the single human-readable line surfaced to users for an
// error produced by this package. Client validation errors fold their field
// messages the same way the server variant does.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var serverValidation *ServerValidationError
	if errors.As(err, &serverValidation) {
		return serverValidation.UserMessage()
	}
	var clientValidation *validate.Error
	if errors.As(err, &clientValidation) {
		return clientValidation.Message()
	}
	var network *NetworkError
	if errors.As(err, &network) {
		return "Network error — check connection and try again"
	}

	return err.Error()
}
