// Package stafftoken implements the StaffRefreshToken repository using PostgreSQL.
package stafftoken

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/rowanledger/taxdesk-backend/internal/adapter/postgres"
	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

var sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const columns = "id, staff_id, token_hash, expires_at, created_at, revoked_at"

// Repo provides refresh-token persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new token repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts a new refresh token.
func (r *Repo) Create(ctx context.Context, token *domain.StaffRefreshToken) error {
	query, args, err := sb.Insert("staff_refresh_tokens").
		Columns("id", "staff_id", "token_hash", "expires_at", "created_at").
		Values(token.ID, token.StaffID, token.TokenHash, token.ExpiresAt,
			token.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "staff_refresh_token", token.ID.String())
	}
	return nil
}

// GetByHash returns a non-revoked refresh token by its hash.
// Returns domain.ErrNotFound if the token does not exist or is revoked.
// Expiry is checked by the caller so the reuse case can be logged distinctly.
func (r *Repo) GetByHash(ctx context.Context, tokenHash string) (*domain.StaffRefreshToken, error) {
	query, args, err := sb.Select(columns).
		From("staff_refresh_tokens").
		Where(sq.Eq{"token_hash": tokenHash, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)

	var t domain.StaffRefreshToken
	err = row.Scan(&t.ID, &t.StaffID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt, &t.RevokedAt)
	if err != nil {
		return nil, postgres.MapError(err, "staff_refresh_token", "by-hash")
	}
	return &t, nil
}

// RevokeByID revokes a specific refresh token by setting revoked_at.
// Idempotent: revoking an already-revoked token is not an error.
func (r *Repo) RevokeByID(ctx context.Context, id uuid.UUID) error {
	query, args, err := sb.Update("staff_refresh_tokens").
		Set("revoked_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "staff_refresh_token", id.String())
	}
	return nil
}

// RevokeAllByStaff revokes all active refresh tokens for the given staff user.
func (r *Repo) RevokeAllByStaff(ctx context.Context, staffID uuid.UUID) error {
	query, args, err := sb.Update("staff_refresh_tokens").
		Set("revoked_at", time.Now().UTC()).
		Where(sq.Eq{"staff_id": staffID, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke all: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "staff_refresh_token", staffID.String())
	}
	return nil
}

// DeleteExpired removes all expired or revoked tokens.
// Returns the count of deleted tokens.
func (r *Repo) DeleteExpired(ctx context.Context) (int, error) {
	query, args, err := sb.Delete("staff_refresh_tokens").
		Where(sq.Or{
			sq.Lt{"expires_at": time.Now().UTC()},
			sq.NotEq{"revoked_at": nil},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, postgres.MapError(err, "staff_refresh_token", "cleanup")
	}
	return int(tag.RowsAffected()), nil
}
