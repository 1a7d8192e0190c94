package repository

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/token-auth-service/internal/domain"
)

// MemoryAccountStore keeps accounts and credentials in process memory. It is
// used when no Postgres DSN is configured.
type MemoryAccountStore struct {
	mu          sync.RWMutex
	accounts    map[domain.Principal]domain.Account
	credentials map[domain.Principal]domain.Credential
	logins      map[string]domain.Principal
}

var (
	_ AccountRepository    = (*MemoryAccountStore)(nil)
	_ CredentialRepository = (*MemoryAccountStore)(nil)
)

// NewMemoryAccountStore returns an empty store.
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts:    make(map[domain.Principal]domain.Account),
		credentials: make(map[domain.Principal]domain.Credential),
		logins:      make(map[string]domain.Principal),
	}
}

func loginKey(field, value string) string {
	return field + "\x00" + value
}

func (s *MemoryAccountStore) Create(_ context.Context, account *domain.Account, credential *domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.Principal]; exists {
		return &ConflictError{Field: FieldPrincipal}
	}
	keys := map[string]string{FieldUsername: account.Username}
	if account.Email != nil {
		keys[FieldEmail] = *account.Email
	}
	if account.Phone != nil {
		keys[FieldPhone] = *account.Phone
	}
	for _, field := range []string{FieldUsername, FieldEmail, FieldPhone} {
		value, ok := keys[field]
		if !ok {
			continue
		}
		if _, taken := s.logins[loginKey(field, value)]; taken {
			return &ConflictError{Field: field}
		}
	}

	account.CreatedAt = time.Now().UTC()
	for field, value := range keys {
		s.logins[loginKey(field, value)] = account.Principal
	}
	s.accounts[account.Principal] = *account
	s.credentials[account.Principal] = *credential
	return nil
}

func (s *MemoryAccountStore) ResolvePrincipal(_ context.Context, login string) (domain.Principal, error) {
	field := FieldUsername
	switch ClassifyLogin(login) {
	case LoginEmail:
		field = FieldEmail
	case LoginPhone:
		field = FieldPhone
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	principal, ok := s.logins[loginKey(field, NormalizeLogin(login))]
	if !ok {
		return 0, ErrNotFound
	}
	return principal, nil
}

func (s *MemoryAccountStore) GetCredential(_ context.Context, principal domain.Principal) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.credentials[principal]
	if !ok {
		return nil, ErrNotFound
	}
	return &cred, nil
}

// MemoryTokenStore is an in-process TokenRepository.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]domain.Token
}

var _ TokenRepository = (*MemoryTokenStore)(nil)

// NewMemoryTokenStore returns an empty store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]domain.Token)}
}

func tokenKey(tokenType domain.TokenType, value string) string {
	return string(tokenType) + "\x00" + value
}

func (s *MemoryTokenStore) Find(_ context.Context, tokenType domain.TokenType, value string, principal domain.Principal) (*domain.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[tokenKey(tokenType, value)]
	if !ok || tok.Principal != principal {
		return nil, ErrNotFound
	}
	return &tok, nil
}

func (s *MemoryTokenStore) Insert(_ context.Context, token *domain.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tokenKey(token.Type, token.Value)
	if _, exists := s.tokens[key]; exists {
		return &ConflictError{Field: FieldToken}
	}
	s.tokens[key] = *token
	return nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, tokenType domain.TokenType, value string, principal domain.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tokenKey(tokenType, value)
	tok, ok := s.tokens[key]
	if !ok || tok.Principal != principal {
		return ErrNotFound
	}
	delete(s.tokens, key)
	return nil
}

// Len reports the number of stored tokens.
func (s *MemoryTokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
