// Package message implements workspace conversations: one thread per
// workspace, staff inbox views, and read tracking.
package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
	"github.com/rowanledger/taxdesk-backend/pkg/ctxutil"
)

const (
	defaultLimit = 50
	maxLimit     = 200
	maxBodyLen   = 10000
)

// messageRepo defines the message repository interface needed by the service.
type messageRepo interface {
	EnsureThread(ctx context.Context, workspaceID uuid.UUID, subject string) (*domain.MessageThread, error)
	GetThread(ctx context.Context, threadID uuid.UUID) (*domain.MessageThread, error)
	ListThreads(ctx context.Context, limit, offset int) ([]*domain.MessageThreadView, int, error)
	CreateMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	ListMessages(ctx context.Context, threadID uuid.UUID, limit, offset int) ([]*domain.Message, int, error)
	MarkThreadRead(ctx context.Context, threadID uuid.UUID, at time.Time) (int, error)
}

// workspaceRepo defines the workspace repository interface needed by the service.
type workspaceRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientWorkspace, error)
}

// timelineRepo defines the timeline repository interface needed by the service.
type timelineRepo interface {
	Append(ctx context.Context, ev *domain.TimelineEvent) (*domain.TimelineEvent, error)
}

// Service implements messaging operations.
type Service struct {
	log        *slog.Logger
	messages   messageRepo
	workspaces workspaceRepo
	timeline   timelineRepo
	now        func() time.Time
}

// NewService creates a new message service instance.
func NewService(
	logger *slog.Logger,
	messages messageRepo,
	workspaces workspaceRepo,
	timeline timelineRepo,
) *Service {
	return &Service{
		log:        logger.With("service", "message"),
		messages:   messages,
		workspaces: workspaces,
		timeline:   timeline,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// PostInput holds a new message for a workspace's thread.
type PostInput struct {
	WorkspaceID uuid.UUID
	Author      domain.MessageAuthor
	Body        string
}

// Validate validates the post input.
func (i PostInput) Validate() error {
	var errs []domain.FieldError

	if i.WorkspaceID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "workspaceId", Message: "required"})
	}
	if !i.Author.IsValid() {
		errs = append(errs, domain.FieldError{Field: "author", Message: "unknown author type"})
	}
	if i.Body == "" {
		errs = append(errs, domain.FieldError{Field: "body", Message: "required"})
	} else if len(i.Body) > maxBodyLen {
		errs = append(errs, domain.FieldError{Field: "body", Message: "too long"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Post appends a message to the workspace's thread, creating the thread on
// first use.
func (s *Service) Post(ctx context.Context, input PostInput) (*domain.Message, error) {
	input.Body = strings.TrimSpace(input.Body)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	ws, err := s.workspaces.GetByID(ctx, input.WorkspaceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("message.Post get workspace: %w", err)
	}

	thread, err := s.messages.EnsureThread(ctx, ws.ID, ws.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("message.Post ensure thread: %w", err)
	}

	msg := &domain.Message{
		ID:        uuid.New(),
		ThreadID:  thread.ID,
		Author:    input.Author,
		Body:      input.Body,
		CreatedAt: s.now(),
	}
	if input.Author == domain.AuthorStaff {
		if staffID, ok := ctxutil.StaffIDFromCtx(ctx); ok {
			msg.AuthorID = &staffID
		}
	}

	created, err := s.messages.CreateMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("message.Post create: %w", err)
	}

	_, err = s.timeline.Append(ctx, &domain.TimelineEvent{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		Type:        domain.TimelineEventMessage,
		Title:       "Message posted",
		Description: fmt.Sprintf("New %s message on the thread.", input.Author),
		Metadata:    map[string]any{"messageId": created.ID.String()},
		CreatedAt:   created.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("message.Post append timeline: %w", err)
	}

	s.log.InfoContext(ctx, "message posted",
		slog.String("workspace_id", ws.ID.String()),
		slog.String("author", input.Author.String()))

	return created, nil
}

// Inbox returns thread views for the staff inbox, most recent activity first.
func (s *Service) Inbox(ctx context.Context, limit, offset int) ([]*domain.MessageThreadView, int, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	views, total, err := s.messages.ListThreads(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("message.Inbox: %w", err)
	}
	return views, total, nil
}

// History returns a thread's messages oldest first.
func (s *Service) History(ctx context.Context, threadID uuid.UUID, limit, offset int) ([]*domain.Message, int, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	if _, err := s.messages.GetThread(ctx, threadID); err != nil {
		return nil, 0, fmt.Errorf("message.History get thread: %w", err)
	}

	msgs, total, err := s.messages.ListMessages(ctx, threadID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("message.History: %w", err)
	}
	return msgs, total, nil
}

// MarkRead stamps every unread client message in the thread as read.
func (s *Service) MarkRead(ctx context.Context, threadID uuid.UUID) (int, error) {
	if _, err := s.messages.GetThread(ctx, threadID); err != nil {
		return 0, fmt.Errorf("message.MarkRead get thread: %w", err)
	}

	marked, err := s.messages.MarkThreadRead(ctx, threadID, s.now())
	if err != nil {
		return 0, fmt.Errorf("message.MarkRead: %w", err)
	}
	return marked, nil
}
