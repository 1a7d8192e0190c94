package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/token-auth-service/internal/domain"
)

const pgUniqueViolation = "23505"

// constraintFields maps unique constraints in the principals table to the
// request field they guard.
var constraintFields = map[string]string{
	"principals_pkey":         FieldPrincipal,
	"principals_username_key": FieldUsername,
	"principals_email_key":    FieldEmail,
	"principals_phone_key":    FieldPhone,
}

// AccountRepository persists registered principals with their credential.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account, credential *domain.Credential) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account, credential *domain.Credential) error {
	const query = `
        INSERT INTO principals (id, principal_type, username, email, phone, hashed_secret, salt)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		int64(account.Principal),
		string(account.PrincipalType),
		account.Username,
		account.Email,
		account.Phone,
		credential.HashedSecret,
		credential.Salt,
	).Scan(&account.CreatedAt)
	return translatePgError(err)
}

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		field, ok := constraintFields[pgErr.ConstraintName]
		if !ok {
			field = pgErr.ConstraintName
		}
		return &ConflictError{Field: field}
	}
	return err
}
