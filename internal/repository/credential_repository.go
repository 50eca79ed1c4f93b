package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripfriend/auth-service/internal/domain"
)

// CredentialRepository is the member-domain view the auth service reads
// credentials through. Every read returns a fully materialized record.
type CredentialRepository interface {
	Create(ctx context.Context, cred *domain.Credential) error
	GetByUsername(ctx context.Context, username string) (*domain.Credential, error)
	MarkDeleted(ctx context.Context, id int64, at time.Time) error
	Restore(ctx context.Context, id int64) error
}

type credentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository returns a Postgres-backed implementation.
func NewCredentialRepository(pool *pgxpool.Pool) CredentialRepository {
	return &credentialRepository{pool: pool}
}

func (r *credentialRepository) Create(ctx context.Context, cred *domain.Credential) error {
	const query = `
        INSERT INTO members (username, email, password, authority, verified)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING member_id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		cred.Username,
		cred.Email,
		cred.PasswordHash,
		cred.Role,
		cred.Verified,
	).Scan(&cred.ID, &cred.CreatedAt, &cred.UpdatedAt)
}

func (r *credentialRepository) GetByUsername(ctx context.Context, username string) (*domain.Credential, error) {
	const query = `
        SELECT member_id, username, email, password, authority, verified, deleted_at, created_at, updated_at
        FROM members WHERE username=$1`

	var cred domain.Credential
	if err := r.pool.QueryRow(ctx, query, username).Scan(
		&cred.ID,
		&cred.Username,
		&cred.Email,
		&cred.PasswordHash,
		&cred.Role,
		&cred.Verified,
		&cred.DeletedAt,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) MarkDeleted(ctx context.Context, id int64, at time.Time) error {
	const query = `
        UPDATE members SET deleted_at=$1, updated_at=NOW()
        WHERE member_id=$2 AND deleted_at IS NULL`

	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *credentialRepository) Restore(ctx context.Context, id int64) error {
	const query = `
        UPDATE members SET deleted_at=NULL, updated_at=NOW()
        WHERE member_id=$1 AND deleted_at IS NOT NULL`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
