package memory

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// TimelineRepo is the in-memory counterpart of the postgres timeline repo.
type TimelineRepo struct {
	store *Store
}

func (r *TimelineRepo) Append(ctx context.Context, ev *domain.TimelineEvent) (*domain.TimelineEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cp := cloneEvent(ev)
	r.store.events[ev.ID] = cp
	return cloneEvent(cp), nil
}

func (r *TimelineRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*domain.TimelineEvent, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var matched []*domain.TimelineEvent
	for _, ev := range r.store.events {
		if ev.WorkspaceID == workspaceID {
			matched = append(matched, cloneEvent(ev))
		}
	}
	sortByTimeDesc(matched, func(ev *domain.TimelineEvent) time.Time { return ev.CreatedAt })
	total := len(matched)
	return paginate(matched, limit, offset), total, nil
}

func cloneEvent(ev *domain.TimelineEvent) *domain.TimelineEvent {
	cp := *ev
	if ev.Metadata != nil {
		cp.Metadata = maps.Clone(ev.Metadata)
	}
	return &cp
}
