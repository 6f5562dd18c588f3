// Package intakelink implements the IntakeLink repository using PostgreSQL.
package intakelink

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/rowanledger/taxdesk-backend/internal/adapter/postgres"
	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

var sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const columns = "id, workspace_id, token_hash, token_last4, channels, status, " +
	"created_by, created_at, expires_at, used_at, used_workspace_id"

// Repo provides intake link persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new intake link repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts a new intake link. The token hash column is unique;
// a collision maps to domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, link *domain.IntakeLink) (*domain.IntakeLink, error) {
	query, args, err := sb.Insert("intake_links").
		Columns("id", "workspace_id", "token_hash", "token_last4", "channels",
			"status", "created_by", "created_at", "expires_at").
		Values(link.ID, link.WorkspaceID, link.TokenHash, link.TokenLast4,
			channelsToDB(link.Channels), link.Status.String(), link.CreatedBy,
			link.CreatedAt, link.ExpiresAt).
		Suffix("RETURNING " + columns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	got, err := scanLink(row)
	if err != nil {
		return nil, postgres.MapError(err, "intake_link", link.ID.String())
	}
	return got, nil
}

// GetByTokenHash returns the link whose stored hash matches, regardless of
// status. Status interpretation is the caller's concern; this keeps the
// valid/expired/used distinction in one place (the token codec).
func (r *Repo) GetByTokenHash(ctx context.Context, hash string) (*domain.IntakeLink, error) {
	query, args, err := sb.Select(columns).
		From("intake_links").
		Where(sq.Eq{"token_hash": hash}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	link, err := scanLink(row)
	if err != nil {
		return nil, postgres.MapError(err, "intake_link", "by-hash")
	}
	return link, nil
}

// ListByWorkspace returns all links bound to a workspace, newest first.
func (r *Repo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.IntakeLink, error) {
	query, args, err := sb.Select(columns).
		From("intake_links").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list intake_links: %w", err)
	}
	defer rows.Close()

	var result []*domain.IntakeLink
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intake_link: %w", err)
		}
		result = append(result, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intake_links: %w", err)
	}
	return result, nil
}

// MarkUsed atomically claims the link: the status flips to used only if it is
// still active. Returns false if another request already consumed the link or
// a sweep expired it. This conditional write is what closes the concurrent
// double-redemption race.
func (r *Repo) MarkUsed(ctx context.Context, id uuid.UUID, workspaceID *uuid.UUID, usedAt time.Time) (bool, error) {
	query, args, err := sb.Update("intake_links").
		Set("status", domain.IntakeLinkUsed.String()).
		Set("used_at", usedAt).
		Set("used_workspace_id", workspaceID).
		Where(sq.Eq{"id": id, "status": domain.IntakeLinkActive.String()}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build mark used: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return false, postgres.MapError(err, "intake_link", id.String())
	}
	return tag.RowsAffected() == 1, nil
}

// SetUsedWorkspace backfills the workspace created by a new-client redemption.
func (r *Repo) SetUsedWorkspace(ctx context.Context, id, workspaceID uuid.UUID) error {
	query, args, err := sb.Update("intake_links").
		Set("used_workspace_id", workspaceID).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set used workspace: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "intake_link", id.String())
	}
	return nil
}

// ExpireLapsed sweeps active links whose TTL has elapsed into the expired
// state. Returns the number of links swept.
func (r *Repo) ExpireLapsed(ctx context.Context, now time.Time) (int, error) {
	query, args, err := sb.Update("intake_links").
		Set("status", domain.IntakeLinkExpired.String()).
		Where(sq.Eq{"status": domain.IntakeLinkActive.String()}).
		Where(sq.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build expire: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, postgres.MapError(err, "intake_link", "sweep")
	}
	return int(tag.RowsAffected()), nil
}

// DeleteTerminalBefore removes used/expired links older than the cutoff.
// Returns the number of links deleted.
func (r *Repo) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query, args, err := sb.Delete("intake_links").
		Where(sq.Eq{"status": []string{
			domain.IntakeLinkUsed.String(),
			domain.IntakeLinkExpired.String(),
		}}).
		Where(sq.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, postgres.MapError(err, "intake_link", "cleanup")
	}
	return int(tag.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// Row mapping
// ---------------------------------------------------------------------------

func scanLink(row pgx.Row) (*domain.IntakeLink, error) {
	var (
		link     domain.IntakeLink
		channels []string
		status   string
	)
	err := row.Scan(&link.ID, &link.WorkspaceID, &link.TokenHash,
		&link.TokenLast4, &channels, &status, &link.CreatedBy, &link.CreatedAt,
		&link.ExpiresAt, &link.UsedAt, &link.UsedWorkspaceID)
	if err != nil {
		return nil, err
	}

	link.Status = domain.IntakeLinkStatus(status)
	link.Channels = channelsFromDB(channels)
	return &link, nil
}

func channelsToDB(channels []domain.IntakeChannel) []string {
	out := make([]string, len(channels))
	for i, c := range channels {
		out[i] = c.String()
	}
	return out
}

func channelsFromDB(channels []string) []domain.IntakeChannel {
	if channels == nil {
		return nil
	}
	out := make([]domain.IntakeChannel, len(channels))
	for i, c := range channels {
		out[i] = domain.IntakeChannel(c)
	}
	return out
}
