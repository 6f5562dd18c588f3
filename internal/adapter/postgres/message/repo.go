// Package message implements the message thread repository using PostgreSQL.
package message

import (
	"context"
	"errors"
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

const (
	threadColumns  = "id, workspace_id, subject, created_at, updated_at"
	messageColumns = "id, thread_id, author_type, author_id, body, created_at, read_at"
)

// Repo provides message thread persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new message repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// EnsureThread returns the workspace's thread, creating it if absent.
// Each workspace has exactly one thread (unique workspace_id).
func (r *Repo) EnsureThread(ctx context.Context, workspaceID uuid.UUID, subject string) (*domain.MessageThread, error) {
	now := time.Now().UTC()

	query, args, err := sb.Insert("message_threads").
		Columns("id", "workspace_id", "subject", "created_at", "updated_at").
		Values(uuid.New(), workspaceID, subject, now, now).
		Suffix("ON CONFLICT (workspace_id) DO UPDATE SET updated_at = EXCLUDED.updated_at RETURNING " + threadColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ensure thread: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	thread, err := scanThread(row)
	if err != nil {
		return nil, postgres.MapError(err, "message_thread", workspaceID.String())
	}
	return thread, nil
}

// GetThread returns a thread by primary key.
func (r *Repo) GetThread(ctx context.Context, threadID uuid.UUID) (*domain.MessageThread, error) {
	query, args, err := sb.Select(threadColumns).
		From("message_threads").
		Where(sq.Eq{"id": threadID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	thread, err := scanThread(row)
	if err != nil {
		return nil, postgres.MapError(err, "message_thread", threadID.String())
	}
	return thread, nil
}

// ListThreads returns threads ordered by most recent activity, each with its
// latest message and the count of client messages staff have not read yet.
func (r *Repo) ListThreads(ctx context.Context, limit, offset int) ([]*domain.MessageThreadView, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var total int
	query, args, err := sb.Select("COUNT(*)").From("message_threads").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count message_threads: %w", err)
	}

	query, args, err = sb.Select(threadColumns).
		From("message_threads").
		OrderBy("updated_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list message_threads: %w", err)
	}
	defer rows.Close()

	var threads []*domain.MessageThread
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan message_thread: %w", err)
		}
		threads = append(threads, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate message_threads: %w", err)
	}

	views := make([]*domain.MessageThreadView, 0, len(threads))
	for _, thread := range threads {
		view := &domain.MessageThreadView{Thread: *thread}

		last, err := r.latestMessage(ctx, q, thread.ID)
		if err != nil {
			return nil, 0, err
		}
		view.LastMessage = last

		unread, err := r.unreadCount(ctx, q, thread.ID)
		if err != nil {
			return nil, 0, err
		}
		view.UnreadCount = unread

		views = append(views, view)
	}

	return views, total, nil
}

// CreateMessage appends a message and bumps the thread's updated_at.
func (r *Repo) CreateMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := sb.Insert("messages").
		Columns("id", "thread_id", "author_type", "author_id", "body", "created_at").
		Values(msg.ID, msg.ThreadID, msg.Author.String(), msg.AuthorID,
			msg.Body, msg.CreatedAt).
		Suffix("RETURNING " + messageColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	row := q.QueryRow(ctx, query, args...)
	got, err := scanMessage(row)
	if err != nil {
		return nil, postgres.MapError(err, "message", msg.ID.String())
	}

	query, args, err = sb.Update("message_threads").
		Set("updated_at", msg.CreatedAt).
		Where(sq.Eq{"id": msg.ThreadID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build thread bump: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return nil, postgres.MapError(err, "message_thread", msg.ThreadID.String())
	}

	return got, nil
}

// ListMessages returns a page of messages oldest first, plus the total count.
func (r *Repo) ListMessages(ctx context.Context, threadID uuid.UUID, limit, offset int) ([]*domain.Message, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var total int
	query, args, err := sb.Select("COUNT(*)").
		From("messages").
		Where(sq.Eq{"thread_id": threadID}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	query, args, err = sb.Select(messageColumns).
		From("messages").
		Where(sq.Eq{"thread_id": threadID}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var result []*domain.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan message: %w", err)
		}
		result = append(result, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate messages: %w", err)
	}

	return result, total, nil
}

// MarkThreadRead stamps read_at on every unread client message in the thread.
// Returns the number of messages marked.
func (r *Repo) MarkThreadRead(ctx context.Context, threadID uuid.UUID, at time.Time) (int, error) {
	query, args, err := sb.Update("messages").
		Set("read_at", at).
		Where(sq.Eq{
			"thread_id":   threadID,
			"author_type": domain.AuthorClient.String(),
			"read_at":     nil,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build mark read: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, postgres.MapError(err, "message_thread", threadID.String())
	}
	return int(tag.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// Row mapping
// ---------------------------------------------------------------------------

func (r *Repo) latestMessage(ctx context.Context, q postgres.Querier, threadID uuid.UUID) (*domain.Message, error) {
	query, args, err := sb.Select(messageColumns).
		From("messages").
		Where(sq.Eq{"thread_id": threadID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build latest: %w", err)
	}

	row := q.QueryRow(ctx, query, args...)
	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest message: %w", err)
	}
	return msg, nil
}

func (r *Repo) unreadCount(ctx context.Context, q postgres.Querier, threadID uuid.UUID) (int, error) {
	query, args, err := sb.Select("COUNT(*)").
		From("messages").
		Where(sq.Eq{
			"thread_id":   threadID,
			"author_type": domain.AuthorClient.String(),
			"read_at":     nil,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build unread count: %w", err)
	}

	var count int
	if err := q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return count, nil
}

func scanThread(row pgx.Row) (*domain.MessageThread, error) {
	var thread domain.MessageThread
	err := row.Scan(&thread.ID, &thread.WorkspaceID, &thread.Subject,
		&thread.CreatedAt, &thread.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var (
		msg    domain.Message
		author string
	)
	err := row.Scan(&msg.ID, &msg.ThreadID, &author, &msg.AuthorID,
		&msg.Body, &msg.CreatedAt, &msg.ReadAt)
	if err != nil {
		return nil, err
	}
	msg.Author = domain.MessageAuthor(author)
	return &msg, nil
}
