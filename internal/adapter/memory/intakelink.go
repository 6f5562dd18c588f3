package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// IntakeLinkRepo is the in-memory counterpart of the postgres intake link repo.
type IntakeLinkRepo struct {
	store *Store
}

func (r *IntakeLinkRepo) Create(ctx context.Context, link *domain.IntakeLink) (*domain.IntakeLink, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, l := range r.store.links {
		if l.TokenHash == link.TokenHash {
			return nil, fmt.Errorf("intake_link %s: %w", link.ID, domain.ErrAlreadyExists)
		}
	}

	cp := cloneLink(link)
	r.store.links[link.ID] = cp
	return cloneLink(cp), nil
}

func (r *IntakeLinkRepo) GetByTokenHash(ctx context.Context, hash string) (*domain.IntakeLink, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, l := range r.store.links {
		if l.TokenHash == hash {
			return cloneLink(l), nil
		}
	}
	return nil, fmt.Errorf("intake_link: %w", domain.ErrNotFound)
}

func (r *IntakeLinkRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.IntakeLink, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*domain.IntakeLink
	for _, l := range r.store.links {
		if l.WorkspaceID != nil && *l.WorkspaceID == workspaceID {
			result = append(result, cloneLink(l))
		}
	}
	sortByTimeDesc(result, func(l *domain.IntakeLink) time.Time { return l.CreatedAt })
	return result, nil
}

// MarkUsed claims the link only if it is still active, mirroring the
// conditional UPDATE the postgres repo uses to close the redemption race.
func (r *IntakeLinkRepo) MarkUsed(ctx context.Context, id uuid.UUID, workspaceID *uuid.UUID, usedAt time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	l, ok := r.store.links[id]
	if !ok || l.Status != domain.IntakeLinkActive {
		return false, nil
	}

	l.Status = domain.IntakeLinkUsed
	usedAt = usedAt.UTC()
	l.UsedAt = &usedAt
	if workspaceID != nil {
		id := *workspaceID
		l.UsedWorkspaceID = &id
	}
	return true, nil
}

func (r *IntakeLinkRepo) SetUsedWorkspace(ctx context.Context, id, workspaceID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	l, ok := r.store.links[id]
	if !ok {
		return fmt.Errorf("intake_link %s: %w", id, domain.ErrNotFound)
	}
	l.UsedWorkspaceID = &workspaceID
	return nil
}

func (r *IntakeLinkRepo) ExpireLapsed(ctx context.Context, now time.Time) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var swept int
	for _, l := range r.store.links {
		if l.Status == domain.IntakeLinkActive && !now.Before(l.ExpiresAt) {
			l.Status = domain.IntakeLinkExpired
			swept++
		}
	}
	return swept, nil
}

func (r *IntakeLinkRepo) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var deleted int
	for id, l := range r.store.links {
		if l.Status == domain.IntakeLinkActive {
			continue
		}
		if l.CreatedAt.Before(cutoff) {
			delete(r.store.links, id)
			deleted++
		}
	}
	return deleted, nil
}

func cloneLink(l *domain.IntakeLink) *domain.IntakeLink {
	cp := *l
	cp.Channels = slices.Clone(l.Channels)
	if l.WorkspaceID != nil {
		id := *l.WorkspaceID
		cp.WorkspaceID = &id
	}
	if l.UsedAt != nil {
		t := *l.UsedAt
		cp.UsedAt = &t
	}
	if l.UsedWorkspaceID != nil {
		id := *l.UsedWorkspaceID
		cp.UsedWorkspaceID = &id
	}
	return &cp
}
