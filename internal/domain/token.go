package domain

import "time"

// TokenType distinguishes access vs refresh tokens. Open for extension.
type TokenType string

const (
	TokenTypeAccess  TokenType = "ACCESS"
	TokenTypeRefresh TokenType = "REFRESH"
)

// Token is an opaque bearer credential bound to a principal.
type Token struct {
	Type          TokenType
	Value         string
	Principal     Principal
	PrincipalType PrincipalType
	IssuedAt      time.Time
	ExpireAt      time.Time
}

// ExpiredAt reports whether the token is no longer valid at now.
func (t *Token) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpireAt)
}
