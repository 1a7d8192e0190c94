package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/token-auth-service/internal/domain"
)

// CredentialRepository resolves login identifiers and stored credentials.
type CredentialRepository interface {
	ResolvePrincipal(ctx context.Context, login string) (domain.Principal, error)
	GetCredential(ctx context.Context, principal domain.Principal) (*domain.Credential, error)
}

type credentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository returns a Postgres-backed implementation.
func NewCredentialRepository(pool *pgxpool.Pool) CredentialRepository {
	return &credentialRepository{pool: pool}
}

func (r *credentialRepository) ResolvePrincipal(ctx context.Context, login string) (domain.Principal, error) {
	var query string
	switch ClassifyLogin(login) {
	case LoginEmail:
		query = `SELECT id FROM principals WHERE email=$1`
	case LoginPhone:
		query = `SELECT id FROM principals WHERE phone=$1`
	default:
		query = `SELECT id FROM principals WHERE username=$1`
	}

	var id int64
	if err := r.pool.QueryRow(ctx, query, NormalizeLogin(login)).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return domain.Principal(id), nil
}

func (r *credentialRepository) GetCredential(ctx context.Context, principal domain.Principal) (*domain.Credential, error) {
	const query = `
        SELECT id, principal_type, hashed_secret, salt
        FROM principals WHERE id=$1`

	var (
		id            int64
		principalType string
		cred          domain.Credential
	)
	if err := r.pool.QueryRow(ctx, query, int64(principal)).Scan(
		&id,
		&principalType,
		&cred.HashedSecret,
		&cred.Salt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	cred.Principal = domain.Principal(id)
	cred.PrincipalType = domain.PrincipalType(principalType)
	return &cred, nil
}
