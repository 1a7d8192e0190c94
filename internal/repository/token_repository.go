package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/token-auth-service/internal/domain"
)

// TokenRepository persists issued tokens keyed by (type, value, principal).
type TokenRepository interface {
	Find(ctx context.Context, tokenType domain.TokenType, value string, principal domain.Principal) (*domain.Token, error)
	Insert(ctx context.Context, token *domain.Token) error
	Delete(ctx context.Context, tokenType domain.TokenType, value string, principal domain.Principal) error
}

// Insert is conditional on the key being absent so that (type, value) stays unique.
var insertTokenLua = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1], "principal", ARGV[1], "principal_type", ARGV[2], "issued_at", ARGV[3], "expire_at", ARGV[4])
redis.call("PEXPIREAT", KEYS[1], ARGV[5])
return 1
`)

// Delete only removes the record when it belongs to the given principal.
var deleteTokenLua = redis.NewScript(`
local owner = redis.call("HGET", KEYS[1], "principal")
if not owner or owner ~= ARGV[1] then
  return 0
end
redis.call("DEL", KEYS[1])
return 1
`)

type tokenRepository struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

// NewTokenRepository returns a Redis-backed token store. Records outlive their
// expiry by retention so expired tokens can still be revoked explicitly.
func NewTokenRepository(client *redis.Client, prefix string, retention time.Duration) TokenRepository {
	if prefix == "" {
		prefix = "token"
	}
	if retention < 0 {
		retention = 0
	}
	return &tokenRepository{client: client, prefix: prefix, retention: retention}
}

func (r *tokenRepository) key(tokenType domain.TokenType, value string) string {
	return r.prefix + ":" + string(tokenType) + ":" + value
}

func (r *tokenRepository) Find(ctx context.Context, tokenType domain.TokenType, value string, principal domain.Principal) (*domain.Token, error) {
	fields, err := r.client.HGetAll(ctx, r.key(tokenType, value)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 || fields["principal"] != principal.String() {
		return nil, ErrNotFound
	}

	issuedAt, err := strconv.ParseInt(fields["issued_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode issued_at: %w", err)
	}
	expireAt, err := strconv.ParseInt(fields["expire_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode expire_at: %w", err)
	}

	return &domain.Token{
		Type:          tokenType,
		Value:         value,
		Principal:     principal,
		PrincipalType: domain.PrincipalType(fields["principal_type"]),
		IssuedAt:      time.UnixMilli(issuedAt).UTC(),
		ExpireAt:      time.UnixMilli(expireAt).UTC(),
	}, nil
}

func (r *tokenRepository) Insert(ctx context.Context, token *domain.Token) error {
	evictAt := token.ExpireAt.Add(r.retention)
	inserted, err := insertTokenLua.Run(ctx, r.client,
		[]string{r.key(token.Type, token.Value)},
		token.Principal.String(),
		string(token.PrincipalType),
		token.IssuedAt.UnixMilli(),
		token.ExpireAt.UnixMilli(),
		evictAt.UnixMilli(),
	).Int()
	if err != nil {
		return err
	}
	if inserted == 0 {
		return &ConflictError{Field: FieldToken}
	}
	return nil
}

func (r *tokenRepository) Delete(ctx context.Context, tokenType domain.TokenType, value string, principal domain.Principal) error {
	deleted, err := deleteTokenLua.Run(ctx, r.client,
		[]string{r.key(tokenType, value)},
		principal.String(),
	).Int()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}
