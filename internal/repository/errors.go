package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no record matches the lookup key.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an insert violates a uniqueness constraint.
	ErrConflict = errors.New("record already exists")
)

// Conflict field names reported by ConflictError.
const (
	FieldPrincipal = "principal"
	FieldUsername  = "login_name"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldToken     = "token"
)

// ConflictError names the field whose uniqueness was violated.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConflict, e.Field)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ConflictField returns the violated field when err is a ConflictError.
func ConflictField(err error) (string, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict.Field, true
	}
	return "", false
}
