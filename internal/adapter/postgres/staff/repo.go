// Package staff implements the StaffUser repository using PostgreSQL.
package staff

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/rowanledger/taxdesk-backend/internal/adapter/postgres"
	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

var sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const columns = "id, email, name, role, password_hash, created_at, updated_at"

// Repo provides staff user persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new staff repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts a new staff user. A duplicate email maps to
// domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, u *domain.StaffUser) (*domain.StaffUser, error) {
	query, args, err := sb.Insert("staff_users").
		Columns("id", "email", "name", "role", "password_hash", "created_at", "updated_at").
		Values(u.ID, u.Email, u.Name, u.Role.String(), u.PasswordHash,
			u.CreatedAt, u.UpdatedAt).
		Suffix("RETURNING " + columns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	got, err := scanStaff(row)
	if err != nil {
		return nil, postgres.MapError(err, "staff_user", u.ID.String())
	}
	return got, nil
}

// GetByID returns a staff user by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffUser, error) {
	query, args, err := sb.Select(columns).
		From("staff_users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	u, err := scanStaff(row)
	if err != nil {
		return nil, postgres.MapError(err, "staff_user", id.String())
	}
	return u, nil
}

// GetByEmail returns a staff user by email.
func (r *Repo) GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	query, args, err := sb.Select(columns).
		From("staff_users").
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	u, err := scanStaff(row)
	if err != nil {
		return nil, postgres.MapError(err, "staff_user", email)
	}
	return u, nil
}

func scanStaff(row pgx.Row) (*domain.StaffUser, error) {
	var (
		u    domain.StaffUser
		role string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = domain.StaffRole(role)
	return &u, nil
}
