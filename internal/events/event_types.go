package events

import (
	"time"

	"github.com/spec-kit/token-auth-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPrincipalRegistered  EventType = "principal_registered"
	EventTokenIssued          EventType = "token_issued"
	EventTokenRevoked         EventType = "token_revoked"
	EventAuthenticationFailed EventType = "authentication_failed"
)

// Event represents an audit event emitted by services.
type Event struct {
	ID            string               `json:"id"`
	Type          EventType            `json:"type"`
	Principal     domain.Principal     `json:"principal,omitempty"`
	PrincipalType domain.PrincipalType `json:"principal_type,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
	Payload       interface{}          `json:"payload"`
}

// TokenIssuedPayload payload.
type TokenIssuedPayload struct {
	TokenType domain.TokenType `json:"token_type"`
	ExpireAt  time.Time        `json:"expire_at"`
	Attempts  int              `json:"attempts"`
}

// TokenRevokedPayload payload.
type TokenRevokedPayload struct {
	TokenType domain.TokenType `json:"token_type"`
}

// AuthenticationFailedPayload payload. Reason stays internal and is never
// rendered to clients.
type AuthenticationFailedPayload struct {
	Login  string `json:"login"`
	Reason string `json:"reason"`
}
