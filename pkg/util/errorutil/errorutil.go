package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind names the failure category rendered as error_type.
type Kind string

const (
	KindValidation           Kind = "ValidationError"
	KindMissingAuthorization Kind = "MissingAuthorization"
	KindUnrecognizedScheme   Kind = "UnrecognizedScheme"
	KindUnrecognizedIdentity Kind = "UnrecognizedIdentity"
	KindAccessDenied         Kind = "AccessDenied"
	KindDuplicateKey         Kind = "DuplicateKey"
	KindNotFound             Kind = "NotFound"
	KindServer               Kind = "ServerError"
)

// Stable machine-readable codes.
const (
	CodeMissingAuthorization = "missing_authorization"
	CodeUnrecognizedScheme   = "unrecognized_scheme"
	CodeUnrecognizedIdentity = "unrecognized_identity"
	CodeAccessDenied         = "access_denied"
	CodeUnsupportedGrantType = "unsupported_grant_type"
	CodeWeakPassword         = "weak_password"
	CodeResourceInUse        = "resource_in_use"
	CodeNoSuchToken          = "no_such_token"
	CodeInternal             = "internal_error"
)

// DomainError standardizes application errors.
type DomainError struct {
	Kind       Kind
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError of the same kind and code.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind && e.Code == other.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(kind Kind, code, message string, status int) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message, HTTPStatus: status}
}

// NewValidationError reports a missing or malformed parameter; code names the parameter.
func NewValidationError(code, message string) error {
	return NewDomainError(KindValidation, code, message, http.StatusBadRequest)
}

func NewUnsupportedGrantType(grantType string) error {
	return NewValidationError(CodeUnsupportedGrantType, fmt.Sprintf("unsupported grant type %q", grantType))
}

func NewWeakPassword() error {
	return NewValidationError(CodeWeakPassword, "password must be 6-15 characters and contain a letter and a digit")
}

// Authentication failures all answer 400 so the status never reveals which check failed.

func NewMissingAuthorization() error {
	return NewDomainError(KindMissingAuthorization, CodeMissingAuthorization, "missing or malformed authorization", http.StatusBadRequest)
}

func NewUnrecognizedScheme() error {
	return NewDomainError(KindUnrecognizedScheme, CodeUnrecognizedScheme, "unrecognized authorization scheme", http.StatusBadRequest)
}

func NewUnrecognizedIdentity() error {
	return NewDomainError(KindUnrecognizedIdentity, CodeUnrecognizedIdentity, "unrecognized identity", http.StatusBadRequest)
}

func NewAccessDenied() error {
	return NewDomainError(KindAccessDenied, CodeAccessDenied, "access denied", http.StatusBadRequest)
}

func NewDuplicateKey(resource string) error {
	return NewDomainError(KindDuplicateKey, CodeResourceInUse, fmt.Sprintf("%s already in use", resource), http.StatusConflict)
}

func NewNoSuchToken() error {
	return NewDomainError(KindNotFound, CodeNoSuchToken, "no such token", http.StatusNotFound)
}

// NewInternalError hides err from the response; it is kept for logs only.
func NewInternalError(err error) error {
	return &DomainError{
		Kind:       KindServer,
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return NewInternalError(err).(*DomainError)
}

// KindOf returns the failure kind of err, or KindServer for foreign errors.
func KindOf(err error) Kind {
	if de := ToDomainError(err); de != nil {
		return de.Kind
	}
	return ""
}
