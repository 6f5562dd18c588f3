package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
	"github.com/rowanledger/taxdesk-backend/internal/linktoken"
	"github.com/rowanledger/taxdesk-backend/pkg/ctxutil"
)

// CreatedLink carries the issued link plus the raw token. The raw token
// exists only in this response; it is never persisted.
type CreatedLink struct {
	Link     *domain.IntakeLink
	RawToken string
}

// CreateLink issues a new intake link. Workspace links get the fixed TTL;
// new-client links use the requested TTL, which must be one of the configured
// options (defaulting to the fixed TTL when omitted).
func (s *Service) CreateLink(ctx context.Context, input CreateLinkInput) (*CreatedLink, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	ttl := s.cfg.ExistingLinkTTL
	if input.WorkspaceID == nil && input.TTL != nil {
		if !s.cfg.IsNewClientTTLAllowed(*input.TTL) {
			return nil, domain.NewValidationError("ttl", "not an allowed expiry option")
		}
		ttl = *input.TTL
	}

	if input.WorkspaceID != nil {
		if _, err := s.workspaces.GetByID(ctx, *input.WorkspaceID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("intake.CreateLink get workspace: %w", err)
		}
	}

	raw, hash, last4, err := linktoken.Issue()
	if err != nil {
		return nil, fmt.Errorf("intake.CreateLink issue token: %w", err)
	}

	createdBy, _ := ctxutil.StaffIDFromCtx(ctx)
	now := s.now()
	link := &domain.IntakeLink{
		ID:          uuid.New(),
		WorkspaceID: input.WorkspaceID,
		TokenHash:   hash,
		TokenLast4:  last4,
		Channels:    input.Channels,
		Status:      domain.IntakeLinkActive,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}

	created, err := s.links.Create(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("intake.CreateLink store link: %w", err)
	}

	if created.WorkspaceID != nil {
		_, err = s.timeline.Append(ctx, &domain.TimelineEvent{
			ID:          uuid.New(),
			WorkspaceID: *created.WorkspaceID,
			Type:        domain.TimelineEventIntake,
			Title:       "Intake link sent",
			Description: "An intake form link was issued to the client.",
			Metadata: map[string]any{
				"linkId":     created.ID.String(),
				"tokenLast4": created.TokenLast4,
			},
			CreatedAt: now,
		})
		if err != nil {
			return nil, fmt.Errorf("intake.CreateLink append timeline: %w", err)
		}
	}

	s.log.InfoContext(ctx, "intake link created",
		slog.String("link_id", created.ID.String()),
		slog.String("kind", created.Kind().String()),
		slog.Time("expires_at", created.ExpiresAt))

	return &CreatedLink{Link: created, RawToken: raw}, nil
}

// ListLinks returns a workspace's links, newest first.
func (s *Service) ListLinks(ctx context.Context, workspaceID uuid.UUID) ([]*domain.IntakeLink, error) {
	links, err := s.links.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("intake.ListLinks: %w", err)
	}

	// Lapsed links are reported expired even before the sweep flips them.
	now := s.now()
	for _, l := range links {
		if l.Status == domain.IntakeLinkActive && l.IsExpired(now) {
			l.Status = domain.IntakeLinkExpired
		}
	}
	return links, nil
}
