package domain

import (
	"strconv"
	"time"
)

// Principal is the opaque 64-bit identifier of a user or customer.
type Principal int64

// String renders the decimal wire form of the principal.
func (p Principal) String() string {
	return strconv.FormatInt(int64(p), 10)
}

// ParsePrincipal decodes the decimal wire form of a principal.
func ParsePrincipal(s string) (Principal, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return Principal(id), nil
}

// PrincipalType differentiates users vs customers.
type PrincipalType string

const (
	PrincipalTypeUser     PrincipalType = "USER"
	PrincipalTypeCustomer PrincipalType = "CUSTOMER"
)

// Valid reports whether t is a known principal type.
func (t PrincipalType) Valid() bool {
	return t == PrincipalTypeUser || t == PrincipalTypeCustomer
}

// Account is the registered record behind a principal.
type Account struct {
	Principal     Principal
	PrincipalType PrincipalType
	Username      string
	Email         *string
	Phone         *string
	CreatedAt     time.Time
}
