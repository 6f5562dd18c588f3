package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// RedeemResult reports a successful form submission.
type RedeemResult struct {
	Workspace *domain.ClientWorkspace
	Response  *domain.IntakeResponse
}

// Redeem consumes an intake link with the submitted form. The link is claimed
// before any workspace mutation: the conditional status flip is the only
// arbiter when two submissions race, so at most one can get past it.
func (s *Service) Redeem(ctx context.Context, input RedeemInput) (*RedeemResult, error) {
	link, err := s.verify(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Address = strings.TrimSpace(input.Address)

	// Contact fields seed the workspace on the new-client flow, so they are
	// required there. Bound links take whatever the client submits.
	if link.WorkspaceID == nil {
		if err := input.Validate(); err != nil {
			return nil, err
		}
	}

	if input.ClientWorkspaceID != nil &&
		(link.WorkspaceID == nil || *link.WorkspaceID != *input.ClientWorkspaceID) {
		return nil, domain.NewValidationError("clientWorkspaceId", "does not match the link")
	}

	now := s.now()
	claimed, err := s.links.MarkUsed(ctx, link.ID, link.WorkspaceID, now)
	if err != nil {
		return nil, fmt.Errorf("intake.Redeem claim link: %w", err)
	}
	if !claimed {
		// Lost the race, or a sweep got there first.
		return nil, domain.ErrLinkNotFound
	}

	var ws *domain.ClientWorkspace
	if link.WorkspaceID != nil {
		ws, err = s.workspaces.Touch(ctx, *link.WorkspaceID, now)
		if err != nil {
			return nil, fmt.Errorf("intake.Redeem touch workspace: %w", err)
		}
	} else {
		ws, err = s.workspaces.Create(ctx, &domain.ClientWorkspace{
			ID:          uuid.New(),
			DisplayName: input.FullName,
			Status:      domain.WorkspaceActive,
			Contact: domain.ContactInfo{
				Name:    input.FullName,
				Email:   input.Email,
				Phone:   input.Phone,
				Address: input.Address,
			},
			TaxYears:       domain.CoerceTaxYears(input.TaxYears, now),
			Checklist:      domain.DefaultChecklist(),
			CreatedAt:      now,
			UpdatedAt:      now,
			LastActivityAt: &now,
		})
		if err != nil {
			return nil, fmt.Errorf("intake.Redeem create workspace: %w", err)
		}
		if err := s.links.SetUsedWorkspace(ctx, link.ID, ws.ID); err != nil {
			return nil, fmt.Errorf("intake.Redeem bind workspace: %w", err)
		}
	}

	answers := make(map[string]any, len(input.Extra)+5)
	for k, v := range input.Extra {
		answers[k] = v
	}
	if link.WorkspaceID == nil {
		answers["fullName"] = input.FullName
		answers["email"] = input.Email
		answers["phone"] = input.Phone
		answers["address"] = input.Address
		answers["taxYears"] = domain.CoerceTaxYears(input.TaxYears, now)
	} else {
		// Free-form submission; record contact fields only when supplied.
		for k, v := range map[string]string{
			"fullName": input.FullName,
			"email":    input.Email,
			"phone":    input.Phone,
			"address":  input.Address,
		} {
			if v != "" {
				answers[k] = v
			}
		}
		if input.TaxYears != nil {
			answers["taxYears"] = domain.CoerceTaxYears(input.TaxYears, now)
		}
	}

	linkID := link.ID
	resp, err := s.responses.Create(ctx, &domain.IntakeResponse{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		LinkID:      &linkID,
		Answers:     answers,
		SubmittedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("intake.Redeem store response: %w", err)
	}

	_, err = s.timeline.Append(ctx, &domain.TimelineEvent{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		Type:        domain.TimelineEventIntake,
		Title:       "Intake form submitted",
		Description: "Client submitted the intake form.",
		Metadata: map[string]any{
			"linkId":     link.ID.String(),
			"responseId": resp.ID.String(),
		},
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("intake.Redeem append timeline: %w", err)
	}

	s.log.InfoContext(ctx, "intake link redeemed",
		slog.String("link_id", link.ID.String()),
		slog.String("workspace_id", ws.ID.String()),
		slog.String("kind", link.Kind().String()))

	return &RedeemResult{Workspace: ws, Response: resp}, nil
}
