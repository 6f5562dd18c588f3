// Package timeline implements the TimelineEvent repository using PostgreSQL.
// Events are append-only audit records; nothing updates or deletes them.
package timeline

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/rowanledger/taxdesk-backend/internal/adapter/postgres"
	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

var sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const columns = "id, workspace_id, event_type, title, description, metadata, created_at"

// Repo provides timeline event persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new timeline repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Append inserts a new event.
func (r *Repo) Append(ctx context.Context, ev *domain.TimelineEvent) (*domain.TimelineEvent, error) {
	var metadata []byte
	if ev.Metadata != nil {
		var err error
		metadata, err = json.Marshal(ev.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
	}

	query, args, err := sb.Insert("timeline_events").
		Columns("id", "workspace_id", "event_type", "title", "description",
			"metadata", "created_at").
		Values(ev.ID, ev.WorkspaceID, ev.Type.String(), ev.Title,
			ev.Description, metadata, ev.CreatedAt).
		Suffix("RETURNING " + columns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	got, err := scanEvent(row)
	if err != nil {
		return nil, postgres.MapError(err, "timeline_event", ev.ID.String())
	}
	return got, nil
}

// ListByWorkspace returns events for a workspace ordered newest first, with
// the total count for pagination.
func (r *Repo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*domain.TimelineEvent, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := sb.Select("COUNT(*)").
		From("timeline_events").
		Where(sq.Eq{"workspace_id": workspaceID}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count timeline_events: %w", err)
	}

	query, args, err = sb.Select(columns).
		From("timeline_events").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list timeline_events: %w", err)
	}
	defer rows.Close()

	var result []*domain.TimelineEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan timeline_event: %w", err)
		}
		result = append(result, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate timeline_events: %w", err)
	}

	return result, total, nil
}

func scanEvent(row pgx.Row) (*domain.TimelineEvent, error) {
	var (
		ev          domain.TimelineEvent
		eventType   string
		metadataRaw []byte
	)
	err := row.Scan(&ev.ID, &ev.WorkspaceID, &eventType, &ev.Title,
		&ev.Description, &metadataRaw, &ev.CreatedAt)
	if err != nil {
		return nil, err
	}

	ev.Type = domain.TimelineEventType(eventType)
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &ev.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &ev, nil
}
