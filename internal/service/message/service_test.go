package message

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/adapter/memory"
	"github.com/rowanledger/taxdesk-backend/internal/domain"
	"github.com/rowanledger/taxdesk-backend/pkg/ctxutil"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(logger, store.Messages(), store.Workspaces(), store.Timeline())
	return svc, store
}

func seedWorkspace(t *testing.T, store *memory.Store) *domain.ClientWorkspace {
	t.Helper()
	now := time.Now().UTC()
	ws, err := store.Workspaces().Create(context.Background(), &domain.ClientWorkspace{
		ID:          uuid.New(),
		DisplayName: "Priya Raman",
		Status:      domain.WorkspaceActive,
		Checklist:   domain.DefaultChecklist(),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("seed workspace: %v", err)
	}
	return ws
}

func TestService_Post_CreatesThreadAndEvent(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)
	ws := seedWorkspace(t, store)

	staffID := uuid.New()
	ctx := ctxutil.WithStaffID(context.Background(), staffID)

	msg, err := svc.Post(ctx, PostInput{
		WorkspaceID: ws.ID,
		Author:      domain.AuthorStaff,
		Body:        "  Welcome aboard!  ",
	})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}

	if msg.Body != "Welcome aboard!" {
		t.Fatalf("expected trimmed body, got %q", msg.Body)
	}
	if msg.AuthorID == nil || *msg.AuthorID != staffID {
		t.Fatal("expected staff author id from context")
	}

	events, _, err := store.Timeline().ListByWorkspace(context.Background(), ws.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListByWorkspace: %v", err)
	}
	if len(events) != 1 || events[0].Type != domain.TimelineEventMessage {
		t.Fatalf("expected a message timeline event, got %+v", events)
	}
}

func TestService_Post_UnknownWorkspace(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	_, err := svc.Post(context.Background(), PostInput{
		WorkspaceID: uuid.New(),
		Author:      domain.AuthorClient,
		Body:        "hello",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Post_EmptyBody(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)
	ws := seedWorkspace(t, store)

	_, err := svc.Post(context.Background(), PostInput{
		WorkspaceID: ws.ID,
		Author:      domain.AuthorClient,
		Body:        "   ",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_InboxAndMarkRead(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)
	ws := seedWorkspace(t, store)

	for i := 0; i < 2; i++ {
		if _, err := svc.Post(context.Background(), PostInput{
			WorkspaceID: ws.ID,
			Author:      domain.AuthorClient,
			Body:        "question about my W-2",
		}); err != nil {
			t.Fatalf("Post: %v", err)
		}
	}

	views, total, err := svc.Inbox(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("Inbox: %v", err)
	}
	if total != 1 || len(views) != 1 {
		t.Fatalf("expected one thread, got total=%d len=%d", total, len(views))
	}
	if views[0].UnreadCount != 2 {
		t.Fatalf("expected 2 unread, got %d", views[0].UnreadCount)
	}

	marked, err := svc.MarkRead(context.Background(), views[0].Thread.ID)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if marked != 2 {
		t.Fatalf("expected 2 marked, got %d", marked)
	}

	msgs, total, err := svc.History(context.Background(), views[0].Thread.ID, 0, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if total != 2 || len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got total=%d len=%d", total, len(msgs))
	}
	for _, m := range msgs {
		if m.ReadAt == nil {
			t.Fatal("expected all client messages marked read")
		}
	}
}

func TestService_History_UnknownThread(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	_, _, err := svc.History(context.Background(), uuid.New(), 0, 0)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
