// Package intakeresponse implements the IntakeResponse repository using PostgreSQL.
// Responses are append-only: there are no update or delete operations.
package intakeresponse

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

const columns = "id, workspace_id, link_id, answers, submitted_at"

// Repo provides intake response persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new intake response repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create appends a new response snapshot.
func (r *Repo) Create(ctx context.Context, resp *domain.IntakeResponse) (*domain.IntakeResponse, error) {
	answers, err := json.Marshal(resp.Answers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}

	query, args, err := sb.Insert("intake_responses").
		Columns("id", "workspace_id", "link_id", "answers", "submitted_at").
		Values(resp.ID, resp.WorkspaceID, resp.LinkID, answers, resp.SubmittedAt).
		Suffix("RETURNING " + columns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	got, err := scanResponse(row)
	if err != nil {
		return nil, postgres.MapError(err, "intake_response", resp.ID.String())
	}
	return got, nil
}

// ListByWorkspace returns all responses for a workspace, newest first.
func (r *Repo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.IntakeResponse, error) {
	query, args, err := sb.Select(columns).
		From("intake_responses").
		Where(sq.Eq{"workspace_id": workspaceID}).
		OrderBy("submitted_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list intake_responses: %w", err)
	}
	defer rows.Close()

	var result []*domain.IntakeResponse
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intake_response: %w", err)
		}
		result = append(result, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intake_responses: %w", err)
	}
	return result, nil
}

func scanResponse(row pgx.Row) (*domain.IntakeResponse, error) {
	var (
		resp       domain.IntakeResponse
		answersRaw []byte
	)
	err := row.Scan(&resp.ID, &resp.WorkspaceID, &resp.LinkID, &answersRaw, &resp.SubmittedAt)
	if err != nil {
		return nil, err
	}

	if len(answersRaw) > 0 {
		if err := json.Unmarshal(answersRaw, &resp.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	return &resp, nil
}
