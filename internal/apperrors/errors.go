package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	KindCredentialNotFound       Kind = "credential_not_found"
	KindNoValidProperty          Kind = "no_valid_property"
	KindCredentialStoreFailed    Kind = "credential_store_failed"
	KindTokenExchangeFailed      Kind = "token_exchange_failed"
	KindNoAccessToken            Kind = "no_access_token"
	KindNetworkError             Kind = "network_error"
	KindInvalidArgument          Kind = "invalid_argument"
	KindInvalidRequest           Kind = "invalid_request"
	KindInvalidFilter            Kind = "invalid_filter"
	KindClientConstructionFailed Kind = "client_construction_failed"
	KindBackendRequestFailed     Kind = "backend_request_failed"
	KindResponseProcessingError  Kind = "response_processing_error"
	KindInternal                 Kind = "internal"
)

// Error is a classified failure with optional upstream context.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "credentials.Resolve"
	Message string
	Status  int    // upstream HTTP status, 0 when not applicable
	Code    string // upstream error code, e.g. "invalid_grant"
	Field   string // offending input field
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	if b.Len() == 0 {
		b.WriteString(string(e.Kind))
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, E(KindNoAccessToken)) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// E returns a bare sentinel for kind, intended for errors.Is comparisons.
func E(kind Kind) *Error {
	return &Error{Kind: kind}
}

// New creates an Error with a formatted message.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind. A nil err returns nil.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithField records the offending input field.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// KindOf extracts the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, E(kind))
}
