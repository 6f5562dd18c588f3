// Package workspace implements the ClientWorkspace repository using PostgreSQL.
package workspace

import (
	"context"
	"encoding/json"
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

const columns = "id, display_name, status, contact_name, contact_email, contact_phone, " +
	"contact_address, tags, tax_years, checklist, created_at, updated_at, last_activity_at"

// Repo provides client workspace persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new workspace repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts a new workspace and returns the persisted row.
func (r *Repo) Create(ctx context.Context, ws *domain.ClientWorkspace) (*domain.ClientWorkspace, error) {
	checklist, err := json.Marshal(ws.Checklist)
	if err != nil {
		return nil, fmt.Errorf("marshal checklist: %w", err)
	}

	query, args, err := sb.Insert("client_workspaces").
		Columns("id", "display_name", "status", "contact_name", "contact_email",
			"contact_phone", "contact_address", "tags", "tax_years", "checklist",
			"created_at", "updated_at", "last_activity_at").
		Values(ws.ID, ws.DisplayName, ws.Status.String(), ws.Contact.Name,
			ws.Contact.Email, ws.Contact.Phone, ws.Contact.Address, ws.Tags,
			yearsToDB(ws.TaxYears), checklist, ws.CreatedAt, ws.UpdatedAt,
			ws.LastActivityAt).
		Suffix("RETURNING " + columns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	got, err := scanWorkspace(row)
	if err != nil {
		return nil, postgres.MapError(err, "client_workspace", ws.ID.String())
	}
	return got, nil
}

// GetByID returns a workspace by primary key.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientWorkspace, error) {
	query, args, err := sb.Select(columns).
		From("client_workspaces").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	ws, err := scanWorkspace(row)
	if err != nil {
		return nil, postgres.MapError(err, "client_workspace", id.String())
	}
	return ws, nil
}

// List returns workspaces matching the filter, newest first, plus the total
// count for the same filter.
func (r *Repo) List(ctx context.Context, f domain.WorkspaceFilter) ([]*domain.ClientWorkspace, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	where := sq.And{}
	if f.Status != nil {
		where = append(where, sq.Eq{"status": f.Status.String()})
	}
	if f.Tag != nil {
		where = append(where, sq.Expr("? = ANY(tags)", *f.Tag))
	}

	countQuery := sb.Select("COUNT(*)").From("client_workspaces")
	if len(where) > 0 {
		countQuery = countQuery.Where(where)
	}
	query, args, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count client_workspaces: %w", err)
	}

	listQuery := sb.Select(columns).
		From("client_workspaces").
		OrderBy("created_at DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))
	if len(where) > 0 {
		listQuery = listQuery.Where(where)
	}
	query, args, err = listQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list client_workspaces: %w", err)
	}
	defer rows.Close()

	var result []*domain.ClientWorkspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan client_workspace: %w", err)
		}
		result = append(result, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate client_workspaces: %w", err)
	}

	return result, total, nil
}

// Update replaces the mutable fields of a workspace and bumps updated_at.
// Returns domain.ErrNotFound if the workspace does not exist.
func (r *Repo) Update(ctx context.Context, ws *domain.ClientWorkspace) (*domain.ClientWorkspace, error) {
	checklist, err := json.Marshal(ws.Checklist)
	if err != nil {
		return nil, fmt.Errorf("marshal checklist: %w", err)
	}

	query, args, err := sb.Update("client_workspaces").
		Set("display_name", ws.DisplayName).
		Set("status", ws.Status.String()).
		Set("contact_name", ws.Contact.Name).
		Set("contact_email", ws.Contact.Email).
		Set("contact_phone", ws.Contact.Phone).
		Set("contact_address", ws.Contact.Address).
		Set("tags", ws.Tags).
		Set("tax_years", yearsToDB(ws.TaxYears)).
		Set("checklist", checklist).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": ws.ID}).
		Suffix("RETURNING " + columns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	got, err := scanWorkspace(row)
	if err != nil {
		return nil, postgres.MapError(err, "client_workspace", ws.ID.String())
	}
	return got, nil
}

// Touch records intake activity: the workspace becomes active and
// last_activity_at is set. Returns domain.ErrNotFound if it does not exist.
func (r *Repo) Touch(ctx context.Context, id uuid.UUID, at time.Time) (*domain.ClientWorkspace, error) {
	query, args, err := sb.Update("client_workspaces").
		Set("status", domain.WorkspaceActive.String()).
		Set("last_activity_at", at).
		Set("updated_at", at).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + columns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build touch: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	ws, err := scanWorkspace(row)
	if err != nil {
		return nil, postgres.MapError(err, "client_workspace", id.String())
	}
	return ws, nil
}

// ---------------------------------------------------------------------------
// Row mapping
// ---------------------------------------------------------------------------

func scanWorkspace(row pgx.Row) (*domain.ClientWorkspace, error) {
	var (
		ws           domain.ClientWorkspace
		status       string
		years        []int32
		checklistRaw []byte
	)
	err := row.Scan(&ws.ID, &ws.DisplayName, &status, &ws.Contact.Name,
		&ws.Contact.Email, &ws.Contact.Phone, &ws.Contact.Address, &ws.Tags,
		&years, &checklistRaw, &ws.CreatedAt, &ws.UpdatedAt, &ws.LastActivityAt)
	if err != nil {
		return nil, err
	}

	ws.Status = domain.WorkspaceStatus(status)
	ws.TaxYears = yearsFromDB(years)

	// Checklist rows may predate the canonical shape; normalize on every read.
	var raw map[string]any
	if len(checklistRaw) > 0 {
		if err := json.Unmarshal(checklistRaw, &raw); err != nil {
			raw = nil
		}
	}
	ws.Checklist = domain.NormalizeChecklist(raw)

	return &ws, nil
}

func yearsToDB(years []int) []int32 {
	out := make([]int32, len(years))
	for i, y := range years {
		out[i] = int32(y)
	}
	return out
}

func yearsFromDB(years []int32) []int {
	if years == nil {
		return nil
	}
	out := make([]int, len(years))
	for i, y := range years {
		out[i] = int(y)
	}
	return out
}
