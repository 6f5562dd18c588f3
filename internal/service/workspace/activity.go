package workspace

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// ListTimeline returns a page of the workspace's activity feed, newest first.
func (s *Service) ListTimeline(ctx context.Context, id uuid.UUID, limit, offset int) ([]*domain.TimelineEvent, int, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	// Verify the workspace exists so an unknown id reads as 404, not an
	// empty feed.
	if _, err := s.workspaces.GetByID(ctx, id); err != nil {
		return nil, 0, fmt.Errorf("workspace.ListTimeline get: %w", err)
	}

	events, total, err := s.timeline.ListByWorkspace(ctx, id, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("workspace.ListTimeline: %w", err)
	}
	return events, total, nil
}

// ListResponses returns the workspace's intake submissions, newest first.
func (s *Service) ListResponses(ctx context.Context, id uuid.UUID) ([]*domain.IntakeResponse, error) {
	if _, err := s.workspaces.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("workspace.ListResponses get: %w", err)
	}

	responses, err := s.responses.ListByWorkspace(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("workspace.ListResponses: %w", err)
	}
	return responses, nil
}
