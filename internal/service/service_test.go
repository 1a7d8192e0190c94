package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/token-auth-service/internal/auth"
	"github.com/spec-kit/token-auth-service/internal/config"
	"github.com/spec-kit/token-auth-service/internal/domain"
	"github.com/spec-kit/token-auth-service/internal/events"
	"github.com/spec-kit/token-auth-service/internal/repository"
)

// fixedNow tracks the wall clock because miniredis evicts keys whose
// PEXPIREAT lies in the past.
var fixedNow = time.Now().UTC().Truncate(time.Millisecond)

type fixture struct {
	cfg          config.AuthConfig
	accounts     *repository.MemoryAccountStore
	tokens       repository.TokenRepository
	hasher       *auth.Hasher
	dispatcher   events.Dispatcher
	published    []events.Event
	tokenService *TokenService
	registration *RegistrationService
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessTokenTTL:      time.Hour,
		TokenRetention:      time.Hour,
		TokenInsertAttempts: 3,
	}
}

// newFixture wires services over miniredis and the in-memory account store.
// values, when given, replaces the token value generator.
func newFixture(t *testing.T, values func() string) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		cfg:        testAuthConfig(),
		accounts:   repository.NewMemoryAccountStore(),
		tokens:     repository.NewTokenRepository(client, "svc", time.Hour),
		hasher:     auth.NewHasher(nil),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	for _, et := range []events.EventType{events.EventTokenIssued, events.EventTokenRevoked, events.EventPrincipalRegistered, events.EventAuthenticationFailed} {
		f.dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.published = append(f.published, e)
			return nil
		})
	}
	clock := func() time.Time { return fixedNow }
	f.tokenService = NewTokenService(f.cfg, TokenDependencies{
		Credentials: f.accounts,
		Tokens:      f.tokens,
		Hasher:      f.hasher,
		Events:      f.dispatcher,
		Clock:       clock,
		TokenValue:  values,
	})
	f.registration = NewRegistrationService(f.cfg, RegistrationDependencies{
		Accounts: f.accounts,
		Hasher:   f.hasher,
		Tokens:   f.tokenService,
		Events:   f.dispatcher,
		Clock:    clock,
	})
	return f
}

// seed stores a credential directly, bypassing registration.
func (f *fixture) seed(t *testing.T, principal domain.Principal, pt domain.PrincipalType, username, password string) {
	t.Helper()
	salt, err := f.hasher.GenerateSalt()
	require.NoError(t, err)
	digest, err := f.hasher.Hash(password, salt)
	require.NoError(t, err)
	require.NoError(t, f.accounts.Create(context.Background(),
		&domain.Account{Principal: principal, PrincipalType: pt, Username: username},
		&domain.Credential{Principal: principal, PrincipalType: pt, HashedSecret: digest, Salt: salt},
	))
}

func (f *fixture) eventTypes() []events.EventType {
	out := make([]events.EventType, 0, len(f.published))
	for _, e := range f.published {
		out = append(out, e.Type)
	}
	return out
}

func sequence(values ...string) func() string {
	i := 0
	return func() string {
		v := values[i%len(values)]
		i++
		return v
	}
}
