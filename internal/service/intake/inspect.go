package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
	"github.com/rowanledger/taxdesk-backend/internal/linktoken"
)

// Form steps shown to the client. Bound links skip the contact and tax-year
// steps because the workspace already holds that information.
var (
	newClientSteps = []string{"contact", "tax_years", "documents"}
	boundSteps     = []string{"documents"}
)

// FormDescriptor tells the public intake form what to render for a token.
// WorkspaceID is set for bound links.
type FormDescriptor struct {
	Kind        domain.IntakeLinkKind
	Steps       []string
	WorkspaceID *uuid.UUID
	DisplayName string
	ExpiresAt   time.Time
}

// Inspect verifies a raw token and describes the form it unlocks.
// Returns ErrLinkNotFound for unknown or consumed tokens and ErrLinkExpired
// for lapsed ones.
func (s *Service) Inspect(ctx context.Context, rawToken string) (*FormDescriptor, error) {
	link, err := s.verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	desc := &FormDescriptor{
		Kind:      link.Kind(),
		Steps:     newClientSteps,
		ExpiresAt: link.ExpiresAt,
	}

	if link.WorkspaceID != nil {
		ws, err := s.workspaces.GetByID(ctx, *link.WorkspaceID)
		if err != nil {
			return nil, fmt.Errorf("intake.Inspect get workspace: %w", err)
		}
		desc.Steps = boundSteps
		desc.WorkspaceID = link.WorkspaceID
		desc.DisplayName = ws.DisplayName
	}

	return desc, nil
}

// verify maps a raw token onto its link, translating the verdict into the
// public error taxonomy.
func (s *Service) verify(ctx context.Context, rawToken string) (*domain.IntakeLink, error) {
	if len(rawToken) != linktoken.RawTokenLength {
		return nil, domain.ErrLinkNotFound
	}

	link, err := s.links.GetByTokenHash(ctx, linktoken.Hash(rawToken))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("intake.verify get link: %w", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		link = nil
	}

	switch linktoken.Evaluate(link, s.now()) {
	case linktoken.VerdictValid:
		return link, nil
	case linktoken.VerdictExpired:
		return nil, domain.ErrLinkExpired
	default:
		if link != nil && link.Status == domain.IntakeLinkUsed {
			// Consumed links read as missing, but the attempt is worth noting.
			s.log.WarnContext(ctx, "used intake link presented",
				slog.String("link_id", link.ID.String()))
		}
		return nil, domain.ErrLinkNotFound
	}
}
