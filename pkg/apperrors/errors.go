package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Type identifies one variant of the closed error taxonomy. Handlers branch on
// the tag, never on message text.
type Type string

const (
	TypeValidation     Type = "ValidationError"
	TypeDuplicate      Type = "DuplicateError"
	TypeAuthentication Type = "AuthenticationError"
	TypeJWT            Type = "JWTError"
	TypeJWTExpired     Type = "JWTExpiredError"
	TypeEmail          Type = "EmailError"
	TypeDatabase       Type = "DatabaseError"
	TypeServer         Type = "ServerError"
)

// statusByType is the fixed variant -> HTTP status table.
var statusByType = map[Type]int{
	TypeValidation:     http.StatusBadRequest,
	TypeDuplicate:      http.StatusBadRequest,
	TypeAuthentication: http.StatusUnauthorized,
	TypeJWT:            http.StatusUnauthorized,
	TypeJWTExpired:     http.StatusUnauthorized,
	TypeEmail:          http.StatusInternalServerError,
	TypeDatabase:       http.StatusInternalServerError,
	TypeServer:         http.StatusInternalServerError,
}

// Error is a tagged application error carrying a client-safe message and an
// optional structured payload (e.g. field -> message for validation failures).
type Error struct {
	Type    Type
	Message string
	Details any
	Err     error // wrapped cause, never serialized to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status for the error's type.
func (e *Error) Status() int {
	if s, ok := statusByType[e.Type]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func newError(t Type, msg string) *Error {
	return &Error{Type: t, Message: msg}
}

// Validation builds a ValidationError with optional field details.
func Validation(msg string, details any) *Error {
	return &Error{Type: TypeValidation, Message: msg, Details: details}
}

func Duplicate(msg string) *Error      { return newError(TypeDuplicate, msg) }
func Authentication(msg string) *Error { return newError(TypeAuthentication, msg) }
func JWT(msg string) *Error            { return newError(TypeJWT, msg) }
func JWTExpired(msg string) *Error     { return newError(TypeJWTExpired, msg) }
func Email(msg string) *Error          { return newError(TypeEmail, msg) }

// Database wraps an unexpected persistence failure. The cause stays server-side.
func Database(err error) *Error {
	return &Error{Type: TypeDatabase, Message: "Database operation failed", Err: err}
}

// Server wraps any other unexpected fault.
func Server(err error) *Error {
	return &Error{Type: TypeServer, Message: "Server Error", Err: err}
}

// From extracts the tagged error from err, or wraps it as a ServerError so the
// boundary always has a variant to map.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Server(err)
}

// Is reports whether err carries the given variant tag.
func Is(err error, t Type) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Type == t
}
