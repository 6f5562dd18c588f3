package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// WorkspaceRepo is the in-memory counterpart of the postgres workspace repo.
type WorkspaceRepo struct {
	store *Store
}

func (r *WorkspaceRepo) Create(ctx context.Context, ws *domain.ClientWorkspace) (*domain.ClientWorkspace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.workspaces[ws.ID]; ok {
		return nil, fmt.Errorf("client_workspace %s: %w", ws.ID, domain.ErrAlreadyExists)
	}

	cp := cloneWorkspace(ws)
	r.store.workspaces[ws.ID] = cp
	return cloneWorkspace(cp), nil
}

func (r *WorkspaceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientWorkspace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ws, ok := r.store.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("client_workspace %s: %w", id, domain.ErrNotFound)
	}
	return cloneWorkspace(ws), nil
}

func (r *WorkspaceRepo) List(ctx context.Context, f domain.WorkspaceFilter) ([]*domain.ClientWorkspace, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var matched []*domain.ClientWorkspace
	for _, ws := range r.store.workspaces {
		if f.Status != nil && ws.Status != *f.Status {
			continue
		}
		if f.Tag != nil && !slices.Contains(ws.Tags, *f.Tag) {
			continue
		}
		matched = append(matched, cloneWorkspace(ws))
	}

	sortByTimeDesc(matched, func(ws *domain.ClientWorkspace) time.Time { return ws.CreatedAt })
	total := len(matched)
	return paginate(matched, f.Limit, f.Offset), total, nil
}

func (r *WorkspaceRepo) Update(ctx context.Context, ws *domain.ClientWorkspace) (*domain.ClientWorkspace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.workspaces[ws.ID]
	if !ok {
		return nil, fmt.Errorf("client_workspace %s: %w", ws.ID, domain.ErrNotFound)
	}

	cp := cloneWorkspace(ws)
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = time.Now().UTC()
	r.store.workspaces[ws.ID] = cp
	return cloneWorkspace(cp), nil
}

func (r *WorkspaceRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) (*domain.ClientWorkspace, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ws, ok := r.store.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("client_workspace %s: %w", id, domain.ErrNotFound)
	}

	ws.Status = domain.WorkspaceActive
	at = at.UTC()
	ws.LastActivityAt = &at
	ws.UpdatedAt = at
	return cloneWorkspace(ws), nil
}

func cloneWorkspace(ws *domain.ClientWorkspace) *domain.ClientWorkspace {
	cp := *ws
	cp.Tags = slices.Clone(ws.Tags)
	cp.TaxYears = slices.Clone(ws.TaxYears)
	if ws.LastActivityAt != nil {
		t := *ws.LastActivityAt
		cp.LastActivityAt = &t
	}
	return &cp
}
