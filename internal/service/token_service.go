package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/token-auth-service/internal/auth"
	"github.com/spec-kit/token-auth-service/internal/config"
	"github.com/spec-kit/token-auth-service/internal/domain"
	"github.com/spec-kit/token-auth-service/internal/events"
	"github.com/spec-kit/token-auth-service/internal/repository"
	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

// GrantTypePassword is the only grant this service accepts.
const GrantTypePassword = "password"

// GrantRequest is a password-grant token request.
type GrantRequest struct {
	GrantType string `json:"grant_type" validate:"notblank"`
	LoginName string `json:"login_name" validate:"notblank"`
	Password  string `json:"password" validate:"notblank"`
}

// RevokeRequest identifies the token to delete.
type RevokeRequest struct {
	TokenType domain.TokenType `json:"token_type" validate:"notblank"`
	Token     string           `json:"token" validate:"notblank"`
	Principal domain.Principal `json:"principal" validate:"required"`
}

// TokenService issues and revokes opaque access tokens.
type TokenService struct {
	publisher
	credentials repository.CredentialRepository
	tokens      repository.TokenRepository
	hasher      *auth.Hasher
	validate    *validator.Validate
	newValue    func() string
	ttl         time.Duration
	attempts    int
}

// TokenDependencies encapsulates collaborators for the token service.
type TokenDependencies struct {
	Credentials repository.CredentialRepository
	Tokens      repository.TokenRepository
	Hasher      *auth.Hasher
	Events      events.Dispatcher
	Logger      *zap.Logger
	// Clock and TokenValue default to time.Now and uuid.NewString.
	Clock      func() time.Time
	TokenValue func() string
}

// NewTokenService builds the service.
func NewTokenService(cfg config.AuthConfig, deps TokenDependencies) *TokenService {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.TokenValue == nil {
		deps.TokenValue = uuid.NewString
	}
	if deps.Hasher == nil {
		deps.Hasher = auth.NewHasher(nil)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	attempts := cfg.TokenInsertAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &TokenService{
		publisher:   publisher{dispatcher: deps.Events, logger: deps.Logger, now: deps.Clock},
		credentials: deps.Credentials,
		tokens:      deps.Tokens,
		hasher:      deps.Hasher,
		validate:    newValidator(),
		newValue:    deps.TokenValue,
		ttl:         cfg.AccessTokenTTL,
		attempts:    attempts,
	}
}

// Issue authenticates a password grant and mints a new access token.
// Nothing is written before the secret is verified.
func (s *TokenService) Issue(ctx context.Context, req GrantRequest) (*domain.Token, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if req.GrantType != GrantTypePassword {
		return nil, apperrors.NewUnsupportedGrantType(req.GrantType)
	}

	principal, err := s.credentials.ResolvePrincipal(ctx, req.LoginName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.rejectGrant(ctx, req.LoginName, "unknown login")
			return nil, apperrors.NewUnrecognizedIdentity()
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("resolve principal: %w", err))
	}

	cred, err := s.credentials.GetCredential(ctx, principal)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.rejectGrant(ctx, req.LoginName, "credential missing")
			return nil, apperrors.NewUnrecognizedIdentity()
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("load credential: %w", err))
	}

	if !s.hasher.Verify(req.Password, cred.HashedSecret, cred.Salt) {
		s.rejectGrant(ctx, req.LoginName, "wrong password")
		return nil, apperrors.NewUnrecognizedIdentity()
	}

	return s.MintAccessToken(ctx, cred.Principal, cred.PrincipalType)
}

// MintAccessToken persists a fresh access token for an already authenticated
// principal, regenerating the value when it collides with a stored one.
func (s *TokenService) MintAccessToken(ctx context.Context, principal domain.Principal, principalType domain.PrincipalType) (*domain.Token, error) {
	now := s.now().UTC()
	for attempt := 1; attempt <= s.attempts; attempt++ {
		token := &domain.Token{
			Type:          domain.TokenTypeAccess,
			Value:         s.newValue(),
			Principal:     principal,
			PrincipalType: principalType,
			IssuedAt:      now,
			ExpireAt:      now.Add(s.ttl),
		}
		err := s.tokens.Insert(ctx, token)
		if errors.Is(err, repository.ErrConflict) {
			s.logger.Debug("token value collision, regenerating", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Errorf("persist token: %w", err))
		}

		s.publish(ctx, events.EventTokenIssued, principal, principalType, events.TokenIssuedPayload{
			TokenType: token.Type,
			ExpireAt:  token.ExpireAt,
			Attempts:  attempt,
		})
		return token, nil
	}
	return nil, apperrors.NewInternalError(fmt.Errorf("token value collided %d times", s.attempts))
}

// Revoke deletes the token matching the request. Expired tokens that are
// still stored can be revoked.
func (s *TokenService) Revoke(ctx context.Context, req RevokeRequest) error {
	if err := validateStruct(s.validate, req); err != nil {
		return err
	}

	if err := s.tokens.Delete(ctx, req.TokenType, req.Token, req.Principal); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNoSuchToken()
		}
		return apperrors.NewInternalError(fmt.Errorf("delete token: %w", err))
	}

	s.publish(ctx, events.EventTokenRevoked, req.Principal, "", events.TokenRevokedPayload{TokenType: req.TokenType})
	return nil
}

func (s *TokenService) rejectGrant(ctx context.Context, login, reason string) {
	s.logger.Info("password grant rejected", zap.String("login", login), zap.String("reason", reason))
	s.publish(ctx, events.EventAuthenticationFailed, 0, "", events.AuthenticationFailedPayload{Login: login, Reason: reason})
}
