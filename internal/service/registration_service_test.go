package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/token-auth-service/internal/domain"
	"github.com/spec-kit/token-auth-service/internal/events"
	"github.com/spec-kit/token-auth-service/internal/idgen"
	"github.com/spec-kit/token-auth-service/internal/repository"
	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

func TestRegisterThenLogin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	reg, err := f.registration.Register(ctx, RegisterRequest{
		LoginName: "jane",
		Email:     "Jane@Example.com",
		Phone:     "+15551234567",
		Password:  "abc123",
	}, domain.PrincipalTypeUser)
	require.NoError(t, err)

	assert.NotZero(t, reg.Account.Principal)
	assert.Equal(t, "jane@example.com", *reg.Account.Email)
	assert.Equal(t, reg.Account.Principal, reg.Token.Principal)
	assert.Equal(t, domain.PrincipalTypeUser, reg.Token.PrincipalType)
	assert.Equal(t, fixedNow.UnixMilli(), idgen.Timestamp(int64(reg.Account.Principal)).UnixMilli())

	for _, login := range []string{"jane", "jane@example.com", "+15551234567"} {
		tok, err := f.tokenService.Issue(ctx, grant(login, "abc123"))
		require.NoError(t, err, login)
		assert.Equal(t, reg.Account.Principal, tok.Principal)
	}
	assert.Equal(t, events.EventPrincipalRegistered, f.published[0].Type)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	f := newFixture(t, nil)
	for _, pw := range []string{"password", "12345678", "a1", "abcdefghij123456"} {
		_, err := f.registration.Register(context.Background(), RegisterRequest{LoginName: "jane", Password: pw}, domain.PrincipalTypeUser)
		assert.Equal(t, apperrors.CodeWeakPassword, apperrors.ToDomainError(err).Code, pw)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t, nil)
	cases := []struct {
		req  RegisterRequest
		code string
	}{
		{RegisterRequest{Password: "abc123"}, "login_name"},
		{RegisterRequest{LoginName: "1jane", Password: "abc123"}, "login_name"},
		{RegisterRequest{LoginName: "jane@x.io", Password: "abc123"}, "login_name"},
		{RegisterRequest{LoginName: "jane", Email: "not-an-email", Password: "abc123"}, "email"},
		{RegisterRequest{LoginName: "jane", Phone: "555", Password: "abc123"}, "phone"},
		{RegisterRequest{LoginName: "jane"}, "password"},
	}
	for _, tc := range cases {
		_, err := f.registration.Register(context.Background(), tc.req, domain.PrincipalTypeCustomer)
		de := apperrors.ToDomainError(err)
		assert.Equal(t, apperrors.KindValidation, de.Kind)
		assert.Equal(t, tc.code, de.Code)
	}
}

func TestRegisterDuplicateLogin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.registration.Register(ctx, RegisterRequest{LoginName: "jane", Password: "abc123"}, domain.PrincipalTypeUser)
	require.NoError(t, err)

	_, err = f.registration.Register(ctx, RegisterRequest{LoginName: "jane", Password: "xyz789"}, domain.PrincipalTypeCustomer)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.KindDuplicateKey, de.Kind)
	assert.Equal(t, apperrors.CodeResourceInUse, de.Code)
}

func TestRegisterRetriesPrincipalCollision(t *testing.T) {
	f := newFixture(t, nil)
	clock := func() time.Time { return fixedNow }
	// Two draws share a suffix; the third differs.
	random := bytes.NewReader([]byte{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 2})
	f.registration = NewRegistrationService(f.cfg, RegistrationDependencies{
		Accounts: f.accounts,
		IDs:      idgen.New(idgen.WithClock(clock), idgen.WithRandom(random)),
		Tokens:   f.tokenService,
		Clock:    clock,
	})
	ctx := context.Background()

	first, err := f.registration.Register(ctx, RegisterRequest{LoginName: "first", Password: "abc123"}, domain.PrincipalTypeUser)
	require.NoError(t, err)
	second, err := f.registration.Register(ctx, RegisterRequest{LoginName: "second", Password: "abc123"}, domain.PrincipalTypeUser)
	require.NoError(t, err)

	assert.NotEqual(t, first.Account.Principal, second.Account.Principal)
	assert.Equal(t, int64(2), int64(second.Account.Principal)&(1<<22-1))
}

type recordingAccounts struct {
	*repository.MemoryAccountStore
	calls int
}

func (r *recordingAccounts) Create(ctx context.Context, a *domain.Account, c *domain.Credential) error {
	r.calls++
	return &repository.ConflictError{Field: repository.FieldPrincipal}
}

func TestRegisterGivesUpOnPersistentCollision(t *testing.T) {
	f := newFixture(t, nil)
	accounts := &recordingAccounts{MemoryAccountStore: repository.NewMemoryAccountStore()}
	svc := NewRegistrationService(f.cfg, RegistrationDependencies{Accounts: accounts, Tokens: f.tokenService})

	_, err := svc.Register(context.Background(), RegisterRequest{LoginName: "jane", Password: "abc123"}, domain.PrincipalTypeUser)
	assert.Equal(t, apperrors.KindServer, apperrors.KindOf(err))
	assert.Equal(t, f.cfg.TokenInsertAttempts, accounts.calls)
}

// flakyTokens fails the next failures inserts, then delegates.
type flakyTokens struct {
	repository.TokenRepository
	failures int
}

func (f *flakyTokens) Insert(ctx context.Context, token *domain.Token) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("redis: connection refused")
	}
	return f.TokenRepository.Insert(ctx, token)
}

func TestRegisterKeepsAccountWhenInitialTokenFails(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	tokens := &flakyTokens{TokenRepository: f.tokens, failures: 1}
	tokenService := NewTokenService(f.cfg, TokenDependencies{
		Credentials: f.accounts,
		Tokens:      tokens,
		Clock:       func() time.Time { return fixedNow },
	})
	svc := NewRegistrationService(f.cfg, RegistrationDependencies{Accounts: f.accounts, Tokens: tokenService})

	reg, err := svc.Register(ctx, RegisterRequest{LoginName: "jane", Password: "abc123"}, domain.PrincipalTypeUser)
	require.NoError(t, err)
	assert.NotZero(t, reg.Account.Principal)
	assert.Nil(t, reg.Token)

	tok, err := tokenService.Issue(ctx, grant("jane", "abc123"))
	require.NoError(t, err)
	assert.Equal(t, reg.Account.Principal, tok.Principal)
}
