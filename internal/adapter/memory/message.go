package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// MessageRepo is the in-memory counterpart of the postgres message repo.
type MessageRepo struct {
	store *Store
}

func (r *MessageRepo) EnsureThread(ctx context.Context, workspaceID uuid.UUID, subject string) (*domain.MessageThread, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	for _, th := range r.store.threads {
		if th.WorkspaceID == workspaceID {
			th.UpdatedAt = now
			cp := *th
			return &cp, nil
		}
	}

	th := &domain.MessageThread{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Subject:     subject,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.store.threads[th.ID] = th
	cp := *th
	return &cp, nil
}

func (r *MessageRepo) GetThread(ctx context.Context, threadID uuid.UUID) (*domain.MessageThread, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	th, ok := r.store.threads[threadID]
	if !ok {
		return nil, fmt.Errorf("message_thread %s: %w", threadID, domain.ErrNotFound)
	}
	cp := *th
	return &cp, nil
}

func (r *MessageRepo) ListThreads(ctx context.Context, limit, offset int) ([]*domain.MessageThreadView, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var threads []*domain.MessageThread
	for _, th := range r.store.threads {
		cp := *th
		threads = append(threads, &cp)
	}
	sortByTimeDesc(threads, func(th *domain.MessageThread) time.Time { return th.UpdatedAt })
	total := len(threads)
	threads = paginate(threads, limit, offset)

	views := make([]*domain.MessageThreadView, 0, len(threads))
	for _, th := range threads {
		view := &domain.MessageThreadView{Thread: *th}
		for _, msg := range r.store.messages {
			if msg.ThreadID != th.ID {
				continue
			}
			if view.LastMessage == nil || msg.CreatedAt.After(view.LastMessage.CreatedAt) {
				cp := cloneMessage(msg)
				view.LastMessage = cp
			}
			if msg.Author == domain.AuthorClient && msg.ReadAt == nil {
				view.UnreadCount++
			}
		}
		views = append(views, view)
	}

	return views, total, nil
}

func (r *MessageRepo) CreateMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	th, ok := r.store.threads[msg.ThreadID]
	if !ok {
		return nil, fmt.Errorf("message_thread %s: %w", msg.ThreadID, domain.ErrNotFound)
	}

	cp := cloneMessage(msg)
	r.store.messages[msg.ID] = cp
	th.UpdatedAt = msg.CreatedAt
	return cloneMessage(cp), nil
}

func (r *MessageRepo) ListMessages(ctx context.Context, threadID uuid.UUID, limit, offset int) ([]*domain.Message, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var matched []*domain.Message
	for _, msg := range r.store.messages {
		if msg.ThreadID == threadID {
			matched = append(matched, cloneMessage(msg))
		}
	}
	sortByTimeAsc(matched, func(msg *domain.Message) time.Time { return msg.CreatedAt })
	total := len(matched)
	return paginate(matched, limit, offset), total, nil
}

func (r *MessageRepo) MarkThreadRead(ctx context.Context, threadID uuid.UUID, at time.Time) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	at = at.UTC()
	var marked int
	for _, msg := range r.store.messages {
		if msg.ThreadID == threadID && msg.Author == domain.AuthorClient && msg.ReadAt == nil {
			t := at
			msg.ReadAt = &t
			marked++
		}
	}
	return marked, nil
}

func cloneMessage(msg *domain.Message) *domain.Message {
	cp := *msg
	if msg.AuthorID != nil {
		id := *msg.AuthorID
		cp.AuthorID = &id
	}
	if msg.ReadAt != nil {
		t := *msg.ReadAt
		cp.ReadAt = &t
	}
	return &cp
}
