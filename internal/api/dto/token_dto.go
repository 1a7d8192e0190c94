package dto

import (
	"time"

	"github.com/spec-kit/token-auth-service/internal/domain"
)

// TokenRequest payload for POST /oauth/token; accepts JSON or form encoding.
type TokenRequest struct {
	GrantType string `json:"grant_type" form:"grant_type"`
	LoginName string `json:"login_name" form:"login_name"`
	Password  string `json:"password" form:"password"`
}

// RevokeRequest payload for POST /oauth/revoke.
type RevokeRequest struct {
	TokenType string `json:"token_type" form:"token_type"`
	Token     string `json:"token" form:"token"`
	Principal int64  `json:"principal" form:"principal"`
}

// AuthenticationToken is the token response without principal disambiguation.
type AuthenticationToken struct {
	TokenType   string    `json:"token_type"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthorizationToken additionally names the principal the token is bound to.
type AuthorizationToken struct {
	AuthenticationToken
	Principal int64 `json:"principal"`
}

// NewAuthenticationToken renders the public fields of a token.
func NewAuthenticationToken(t *domain.Token) AuthenticationToken {
	return AuthenticationToken{
		TokenType:   string(t.Type),
		AccessToken: t.Value,
		ExpiresAt:   t.ExpireAt,
	}
}

// NewAuthorizationToken renders the public fields of a token with its principal.
func NewAuthorizationToken(t *domain.Token) AuthorizationToken {
	return AuthorizationToken{
		AuthenticationToken: NewAuthenticationToken(t),
		Principal:           int64(t.Principal),
	}
}
