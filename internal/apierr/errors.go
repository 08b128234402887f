// Package apierr provides the error taxonomy shared by the calculators,
// orchestrator, and HTTP transport: a single typed result value instead of
// mixed panics and ad-hoc error strings.
package apierr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Kind discriminates the wire-visible error taxonomy.
type Kind int

const (
	KindValidation Kind = iota
	KindAuthenticationMissing
	KindAuthorization
	KindNotFound
	KindConflict
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthenticationMissing:
		return "authentication_missing"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Status returns the HTTP status code the taxonomy entry maps to.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return 400
	case KindAuthenticationMissing:
		return 401
	case KindAuthorization:
		return 403
	case KindNotFound:
		return 404
	case KindConflict:
		return 409
	default:
		return 500
	}
}

// APIError is a structured error with the context the wire layer needs to
// render a JSend failure envelope.
type APIError struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Cause   error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.Cause }

// NewValidation builds a field-scoped validation error. message should be
// the short human-facing (Spanish) text surfaced to the caller.
func NewValidation(message string, fields map[string]string) *APIError {
	return &APIError{Kind: KindValidation, Message: message, Fields: fields}
}

// NewAuthenticationMissing builds a 401.
func NewAuthenticationMissing(message string) *APIError {
	return &APIError{Kind: KindAuthenticationMissing, Message: message}
}

// NewAuthorization builds a 403.
func NewAuthorization(message string) *APIError {
	return &APIError{Kind: KindAuthorization, Message: message}
}

// NewNotFound builds the uniform "doesn't exist or isn't yours" 404. Callers
// must use this same constructor for both cases so the response shape never
// leaks which one occurred.
func NewNotFound(message string) *APIError {
	return &APIError{Kind: KindNotFound, Message: message}
}

// NewConflict builds a 409.
func NewConflict(message string, cause error) *APIError {
	return &APIError{Kind: KindConflict, Message: message, Cause: cause}
}

// NewInternal builds a 500, wrapping the underlying cause for diagnostics.
func NewInternal(message string, cause error) *APIError {
	return &APIError{Kind: KindInternal, Message: message, Cause: cause}
}

// MapPostgresError classifies a raw database error by its Postgres error
// code. Anything unrecognized falls through to Internal.
func MapPostgresError(err error) *APIError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return NewInternal("Error interno de base de datos", err)
	}
	switch pqErr.Code {
	case "23505":
		return NewConflict("El recurso ya existe", err)
	case "23503":
		return NewValidation("Referencia inválida", nil)
	case "23502":
		return NewValidation("Falta un campo obligatorio", nil)
	case "22P02":
		return NewValidation("Formato de dato inválido", nil)
	case "42P01":
		return NewInternal("Error de esquema de base de datos", err)
	default:
		return NewInternal("Error interno de base de datos", err)
	}
}

// FieldErrors renders a field->reason map as a single comma-joined message,
// used when an APIError's Fields need folding into a flat message string.
func FieldErrors(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v))
	}
	return strings.Join(parts, "; ")
}
