package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// UpdateChecklist applies a validated checklist patch. Every key that actually
// changes gets its own timeline event, so the activity feed reads as discrete
// steps rather than one opaque edit.
func (s *Service) UpdateChecklist(ctx context.Context, id uuid.UUID, patch ChecklistPatch) (*View, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	ws, err := s.workspaces.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("workspace.UpdateChecklist get: %w", err)
	}

	// Deterministic event order regardless of map iteration.
	keys := make([]string, 0, len(patch))
	for key := range patch {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	type change struct {
		key      string
		from, to domain.ChecklistStatus
	}
	var changes []change
	for _, key := range keys {
		to := domain.ChecklistStatus(patch[key])
		from, _ := ws.Checklist.Get(key)
		if from == to {
			continue
		}
		ws.Checklist.Set(key, to)
		changes = append(changes, change{key: key, from: from, to: to})
	}

	if len(changes) == 0 {
		return newView(ws), nil
	}

	updated, err := s.workspaces.Update(ctx, ws)
	if err != nil {
		return nil, fmt.Errorf("workspace.UpdateChecklist: %w", err)
	}

	now := s.now()
	for _, c := range changes {
		_, err := s.timeline.Append(ctx, &domain.TimelineEvent{
			ID:          uuid.New(),
			WorkspaceID: id,
			Type:        domain.TimelineEventChecklist,
			Title:       "Checklist updated",
			Description: fmt.Sprintf("%s moved from %s to %s", c.key, c.from, c.to),
			Metadata: map[string]any{
				"key":  c.key,
				"from": c.from.String(),
				"to":   c.to.String(),
			},
			CreatedAt: now,
		})
		if err != nil {
			return nil, fmt.Errorf("workspace.UpdateChecklist append timeline: %w", err)
		}
	}

	s.log.InfoContext(ctx, "checklist updated",
		slog.String("workspace_id", id.String()),
		slog.Int("changes", len(changes)),
		slog.String("badge", updated.Checklist.LifecycleBadge().String()))

	return newView(updated), nil
}
