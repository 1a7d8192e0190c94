package domain

// Scheme names the Authorization header scheme a request used.
type Scheme string

const (
	SchemeBasic  Scheme = "Basic"
	SchemeBearer Scheme = "Bearer"
)

// Subject is the authenticated identity handed to downstream authorization.
// It is never persisted.
type Subject struct {
	Principal     Principal
	PrincipalType PrincipalType
	Scheme        Scheme
}

// IsUser reports whether the subject is an end user.
func (s *Subject) IsUser() bool {
	return s != nil && s.PrincipalType == PrincipalTypeUser
}

// IsCustomer reports whether the subject is a customer.
func (s *Subject) IsCustomer() bool {
	return s != nil && s.PrincipalType == PrincipalTypeCustomer
}
