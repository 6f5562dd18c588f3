package memory

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// IntakeResponseRepo is the in-memory counterpart of the postgres response repo.
type IntakeResponseRepo struct {
	store *Store
}

func (r *IntakeResponseRepo) Create(ctx context.Context, resp *domain.IntakeResponse) (*domain.IntakeResponse, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cp := cloneResponse(resp)
	r.store.responses[resp.ID] = cp
	return cloneResponse(cp), nil
}

func (r *IntakeResponseRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.IntakeResponse, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*domain.IntakeResponse
	for _, resp := range r.store.responses {
		if resp.WorkspaceID == workspaceID {
			result = append(result, cloneResponse(resp))
		}
	}
	sortByTimeDesc(result, func(resp *domain.IntakeResponse) time.Time { return resp.SubmittedAt })
	return result, nil
}

func cloneResponse(resp *domain.IntakeResponse) *domain.IntakeResponse {
	cp := *resp
	if resp.LinkID != nil {
		id := *resp.LinkID
		cp.LinkID = &id
	}
	if resp.Answers != nil {
		cp.Answers = maps.Clone(resp.Answers)
	}
	return &cp
}
