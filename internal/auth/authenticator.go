package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/token-auth-service/internal/domain"
	"github.com/spec-kit/token-auth-service/internal/repository"
	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

const (
	basicPrefix  = string(domain.SchemeBasic) + " "
	bearerPrefix = string(domain.SchemeBearer) + " "

	// CredentialSeparator joins principal and token inside the bearer payload.
	CredentialSeparator = ":"
)

// Authenticator resolves an Authorization header into a Subject.
type Authenticator struct {
	tokens repository.TokenRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewAuthenticator builds an authenticator; a nil clock selects time.Now.
func NewAuthenticator(tokens repository.TokenRepository, now func() time.Time, logger *zap.Logger) *Authenticator {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{tokens: tokens, now: now, logger: logger}
}

// Authenticate runs the header through scheme detection, bearer decoding and
// token lookup. Malformed bearer payloads report MissingAuthorization so the
// response does not reveal which part was wrong.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*domain.Subject, error) {
	if header == "" {
		return nil, apperrors.NewMissingAuthorization()
	}

	switch {
	case strings.HasPrefix(header, bearerPrefix):
		return a.bearer(ctx, strings.TrimPrefix(header, bearerPrefix))
	case strings.HasPrefix(header, basicPrefix):
		// Basic is recognised but has no credential resolution path.
		a.logger.Debug("basic authorization not supported")
		return nil, apperrors.NewUnrecognizedScheme()
	default:
		return nil, apperrors.NewUnrecognizedScheme()
	}
}

func (a *Authenticator) bearer(ctx context.Context, payload string) (*domain.Subject, error) {
	principal, value, ok := DecodeBearer(payload)
	if !ok {
		return nil, apperrors.NewMissingAuthorization()
	}

	token, err := a.tokens.Find(ctx, domain.TokenTypeAccess, value, principal)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			a.logger.Debug("bearer token not found", zap.Int64("principal", int64(principal)))
			return nil, apperrors.NewUnrecognizedIdentity()
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("find token: %w", err))
	}
	if token.ExpiredAt(a.now()) {
		a.logger.Debug("bearer token expired",
			zap.Int64("principal", int64(principal)),
			zap.Time("expire_at", token.ExpireAt))
		return nil, apperrors.NewUnrecognizedIdentity()
	}

	subject := &domain.Subject{Principal: token.Principal, Scheme: domain.SchemeBearer}
	switch token.PrincipalType {
	case domain.PrincipalTypeUser, domain.PrincipalTypeCustomer:
		subject.PrincipalType = token.PrincipalType
	default:
		return nil, apperrors.NewInternalError(fmt.Errorf("token has unknown principal type %q", token.PrincipalType))
	}
	return subject, nil
}

// DecodeBearer splits base64(<principal>:<token>) into its two non-empty parts.
// The principal must be in canonical decimal form.
func DecodeBearer(payload string) (domain.Principal, string, bool) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return 0, "", false
	}
	parts := strings.Split(string(raw), CredentialSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, "", false
	}
	principal, err := domain.ParsePrincipal(parts[0])
	if err != nil || principal.String() != parts[0] {
		return 0, "", false
	}
	return principal, parts[1], true
}

// EncodeBearer builds the Authorization header value for a principal's token.
func EncodeBearer(principal domain.Principal, token string) string {
	payload := principal.String() + CredentialSeparator + token
	return bearerPrefix + base64.StdEncoding.EncodeToString([]byte(payload))
}
