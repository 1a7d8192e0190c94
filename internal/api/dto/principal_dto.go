package dto

import (
	"time"

	"github.com/spec-kit/token-auth-service/internal/domain"
)

// RegisterRequest payload for user and customer registration.
type RegisterRequest struct {
	LoginName string `json:"login_name" form:"login_name"`
	Email     string `json:"email" form:"email"`
	Phone     string `json:"phone" form:"phone"`
	Password  string `json:"password" form:"password"`
}

// AccountResponse is the public view of a registered principal.
type AccountResponse struct {
	Principal     int64     `json:"principal"`
	PrincipalType string    `json:"principal_type"`
	LoginName     string    `json:"login_name"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SubjectResponse is the public view of an authenticated subject.
type SubjectResponse struct {
	Principal     int64  `json:"principal"`
	PrincipalType string `json:"principal_type"`
	Scheme        string `json:"scheme"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	ErrorType string `json:"error_type"`
	ErrorCode string `json:"error_code"`
	ErrorDesc string `json:"error_desc"`
}

// NewAccountResponse renders an account.
func NewAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		Principal:     int64(a.Principal),
		PrincipalType: string(a.PrincipalType),
		LoginName:     a.Username,
		Email:         a.Email,
		Phone:         a.Phone,
		CreatedAt:     a.CreatedAt,
	}
}

// NewSubjectResponse renders a subject.
func NewSubjectResponse(s *domain.Subject) SubjectResponse {
	return SubjectResponse{
		Principal:     int64(s.Principal),
		PrincipalType: string(s.PrincipalType),
		Scheme:        string(s.Scheme),
	}
}
