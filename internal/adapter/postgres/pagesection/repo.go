// Package pagesection implements the marketing PageSection repository using PostgreSQL.
package pagesection

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

const columns = "id, page_slug, section_key, title, body, position, published, created_at, updated_at"

// Repo provides page section persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new page section repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Upsert creates or replaces the section keyed by (page_slug, section_key).
// New sections start unpublished; upserting an existing section keeps its
// published flag.
func (r *Repo) Upsert(ctx context.Context, s *domain.PageSection) (*domain.PageSection, error) {
	body, err := json.Marshal(s.Body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	now := time.Now().UTC()
	query, args, err := sb.Insert("page_sections").
		Columns("id", "page_slug", "section_key", "title", "body", "position",
			"published", "created_at", "updated_at").
		Values(s.ID, s.PageSlug, s.SectionKey, s.Title, body, s.Position,
			false, now, now).
		Suffix("ON CONFLICT (page_slug, section_key) DO UPDATE SET " +
			"title = EXCLUDED.title, body = EXCLUDED.body, " +
			"position = EXCLUDED.position, updated_at = EXCLUDED.updated_at " +
			"RETURNING " + columns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upsert: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	got, err := scanSection(row)
	if err != nil {
		return nil, postgres.MapError(err, "page_section", s.PageSlug+"/"+s.SectionKey)
	}
	return got, nil
}

// GetByID returns a section by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PageSection, error) {
	query, args, err := sb.Select(columns).
		From("page_sections").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	s, err := scanSection(row)
	if err != nil {
		return nil, postgres.MapError(err, "page_section", id.String())
	}
	return s, nil
}

// ListForPage returns a page's sections ordered by position. When
// publishedOnly is true, unpublished sections are filtered out (the public
// site path).
func (r *Repo) ListForPage(ctx context.Context, pageSlug string, publishedOnly bool) ([]*domain.PageSection, error) {
	builder := sb.Select(columns).
		From("page_sections").
		Where(sq.Eq{"page_slug": pageSlug}).
		OrderBy("position ASC, section_key ASC")
	if publishedOnly {
		builder = builder.Where(sq.Eq{"published": true})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list page_sections: %w", err)
	}
	defer rows.Close()

	var result []*domain.PageSection
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page_section: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate page_sections: %w", err)
	}
	return result, nil
}

// SetPublished flips a section's published flag.
// Returns domain.ErrNotFound if the section does not exist.
func (r *Repo) SetPublished(ctx context.Context, id uuid.UUID, published bool) (*domain.PageSection, error) {
	query, args, err := sb.Update("page_sections").
		Set("published", published).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + columns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build publish: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	s, err := scanSection(row)
	if err != nil {
		return nil, postgres.MapError(err, "page_section", id.String())
	}
	return s, nil
}

// Delete removes a section. Returns domain.ErrNotFound if it does not exist.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := sb.Delete("page_sections").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "page_section", id.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("page_section %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanSection(row pgx.Row) (*domain.PageSection, error) {
	var (
		s       domain.PageSection
		bodyRaw []byte
	)
	err := row.Scan(&s.ID, &s.PageSlug, &s.SectionKey, &s.Title, &bodyRaw,
		&s.Position, &s.Published, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(bodyRaw) > 0 {
		if err := json.Unmarshal(bodyRaw, &s.Body); err != nil {
			return nil, fmt.Errorf("unmarshal body: %w", err)
		}
	}
	return &s, nil
}
