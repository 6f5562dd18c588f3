package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// Create adds a workspace directly, for clients onboarded over the phone or
// in person rather than through an intake link.
func (s *Service) Create(ctx context.Context, input CreateInput) (*View, error) {
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	taxYears := input.TaxYears
	if len(taxYears) == 0 {
		taxYears = []int{now.Year()}
	} else {
		taxYears = slices.Clone(taxYears)
		slices.Sort(taxYears)
	}

	ws, err := s.workspaces.Create(ctx, &domain.ClientWorkspace{
		ID:          uuid.New(),
		DisplayName: input.DisplayName,
		Status:      domain.WorkspaceActive,
		Contact:     input.Contact,
		Tags:        input.Tags,
		TaxYears:    taxYears,
		Checklist:   domain.DefaultChecklist(),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("workspace.Create: %w", err)
	}

	s.log.InfoContext(ctx, "workspace created",
		slog.String("workspace_id", ws.ID.String()))

	return newView(ws), nil
}

// Get returns a workspace with its lifecycle badge.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	ws, err := s.workspaces.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("workspace.Get: %w", err)
	}
	return newView(ws), nil
}

// List returns workspaces matching the filter, each with its badge, plus the
// total count.
func (s *Service) List(ctx context.Context, input ListInput) ([]*View, int, error) {
	input.normalize()

	workspaces, total, err := s.workspaces.List(ctx, domain.WorkspaceFilter{
		Status: input.Status,
		Tag:    input.Tag,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("workspace.List: %w", err)
	}

	views := make([]*View, len(workspaces))
	for i, ws := range workspaces {
		views[i] = newView(ws)
	}
	return views, total, nil
}

// Update applies a partial update to the workspace profile.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*View, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	ws, err := s.workspaces.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("workspace.Update get: %w", err)
	}

	if input.DisplayName != nil {
		ws.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.Contact != nil {
		ws.Contact = *input.Contact
	}
	if input.Tags != nil {
		ws.Tags = *input.Tags
	}
	if input.TaxYears != nil {
		years := slices.Clone(*input.TaxYears)
		slices.Sort(years)
		ws.TaxYears = years
	}

	updated, err := s.workspaces.Update(ctx, ws)
	if err != nil {
		return nil, fmt.Errorf("workspace.Update: %w", err)
	}
	return newView(updated), nil
}

// Archive marks the workspace inactive. Archived workspaces stay readable
// and flip back to active on any new intake activity.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) (*View, error) {
	ws, err := s.workspaces.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("workspace.Archive get: %w", err)
	}

	if ws.Status == domain.WorkspaceInactive {
		return newView(ws), nil
	}

	ws.Status = domain.WorkspaceInactive
	updated, err := s.workspaces.Update(ctx, ws)
	if err != nil {
		return nil, fmt.Errorf("workspace.Archive: %w", err)
	}

	_, err = s.timeline.Append(ctx, &domain.TimelineEvent{
		ID:          uuid.New(),
		WorkspaceID: id,
		Type:        domain.TimelineEventStatus,
		Title:       "Workspace archived",
		CreatedAt:   s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("workspace.Archive append timeline: %w", err)
	}

	s.log.InfoContext(ctx, "workspace archived",
		slog.String("workspace_id", id.String()))

	return newView(updated), nil
}
