package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spec-kit/token-auth-service/internal/auth"
	"github.com/spec-kit/token-auth-service/internal/config"
	"github.com/spec-kit/token-auth-service/internal/domain"
	"github.com/spec-kit/token-auth-service/internal/events"
	"github.com/spec-kit/token-auth-service/internal/idgen"
	"github.com/spec-kit/token-auth-service/internal/repository"
	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

// RegisterRequest creates a user or customer with a password credential.
type RegisterRequest struct {
	LoginName string `json:"login_name" validate:"notblank,username,max=64"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,e164"`
	Password  string `json:"password" validate:"notblank"`
}

// Registration bundles the stored account with its first access token. Token
// is nil when minting failed after the account was stored; the principal then
// obtains one through the password grant.
type Registration struct {
	Account *domain.Account
	Token   *domain.Token
}

// RegistrationService creates principals and their credentials.
type RegistrationService struct {
	publisher
	accounts repository.AccountRepository
	ids      *idgen.Generator
	hasher   *auth.Hasher
	tokens   *TokenService
	validate *validator.Validate
	attempts int
}

// RegistrationDependencies encapsulates collaborators for registration.
type RegistrationDependencies struct {
	Accounts repository.AccountRepository
	IDs      *idgen.Generator
	Hasher   *auth.Hasher
	Tokens   *TokenService
	Events   events.Dispatcher
	Logger   *zap.Logger
	Clock    func() time.Time
}

// NewRegistrationService builds the service.
func NewRegistrationService(cfg config.AuthConfig, deps RegistrationDependencies) *RegistrationService {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.IDs == nil {
		deps.IDs = idgen.New(idgen.WithClock(deps.Clock))
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
	return &RegistrationService{
		publisher: publisher{dispatcher: deps.Events, logger: deps.Logger, now: deps.Clock},
		accounts:  deps.Accounts,
		ids:       deps.IDs,
		hasher:    deps.Hasher,
		tokens:    deps.Tokens,
		validate:  newValidator(),
		attempts:  attempts,
	}
}

// Register stores a new principal of the given type and issues it a token.
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest, principalType domain.PrincipalType) (*Registration, error) {
	if !principalType.Valid() {
		return nil, apperrors.NewInternalError(fmt.Errorf("unknown principal type %q", principalType))
	}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if !auth.StrengthCheck(req.Password) {
		return nil, apperrors.NewWeakPassword()
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("generate salt: %w", err))
	}
	digest, err := s.hasher.Hash(req.Password, salt)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		PrincipalType: principalType,
		Username:      strings.TrimSpace(req.LoginName),
		Email:         optional(repository.NormalizeLogin(req.Email)),
		Phone:         optional(strings.TrimSpace(req.Phone)),
	}
	cred := &domain.Credential{PrincipalType: principalType, HashedSecret: digest, Salt: salt}

	if err := s.insert(ctx, account, cred); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventPrincipalRegistered, account.Principal, principalType, nil)

	token, err := s.tokens.MintAccessToken(ctx, account.Principal, principalType)
	if err != nil {
		s.logger.Warn("initial token not issued",
			zap.Int64("principal", int64(account.Principal)),
			zap.Error(err))
		return &Registration{Account: account}, nil
	}
	return &Registration{Account: account, Token: token}, nil
}

// insert assigns a fresh principal ID per attempt; only an ID collision is
// retried, a taken login identifier is reported to the caller.
func (s *RegistrationService) insert(ctx context.Context, account *domain.Account, cred *domain.Credential) error {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		id, err := s.ids.Generate()
		if err != nil {
			return apperrors.NewInternalError(fmt.Errorf("generate principal: %w", err))
		}
		account.Principal = domain.Principal(id)
		cred.Principal = account.Principal

		err = s.accounts.Create(ctx, account, cred)
		if err == nil {
			return nil
		}
		field, conflict := repository.ConflictField(err)
		if !conflict {
			return apperrors.NewInternalError(fmt.Errorf("create account: %w", err))
		}
		if field != repository.FieldPrincipal {
			return apperrors.NewDuplicateKey(field)
		}
		s.logger.Debug("principal id collision, regenerating", zap.Int("attempt", attempt))
	}
	return apperrors.NewInternalError(errors.New("principal id collided on every attempt"))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
