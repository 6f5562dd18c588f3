// Package intake implements the intake-link lifecycle: issuing links,
// verifying tokens for the public form, and redeeming submissions.
package intake

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/config"
	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// linkRepo defines the intake link repository interface needed by the service.
type linkRepo interface {
	Create(ctx context.Context, link *domain.IntakeLink) (*domain.IntakeLink, error)
	GetByTokenHash(ctx context.Context, hash string) (*domain.IntakeLink, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.IntakeLink, error)
	MarkUsed(ctx context.Context, id uuid.UUID, workspaceID *uuid.UUID, usedAt time.Time) (bool, error)
	SetUsedWorkspace(ctx context.Context, id, workspaceID uuid.UUID) error
}

// workspaceRepo defines the workspace repository interface needed by the service.
type workspaceRepo interface {
	Create(ctx context.Context, ws *domain.ClientWorkspace) (*domain.ClientWorkspace, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientWorkspace, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) (*domain.ClientWorkspace, error)
}

// responseRepo defines the intake response repository interface needed by the service.
type responseRepo interface {
	Create(ctx context.Context, resp *domain.IntakeResponse) (*domain.IntakeResponse, error)
}

// timelineRepo defines the timeline repository interface needed by the service.
type timelineRepo interface {
	Append(ctx context.Context, ev *domain.TimelineEvent) (*domain.TimelineEvent, error)
}

// Service implements intake link operations.
type Service struct {
	log        *slog.Logger
	links      linkRepo
	workspaces workspaceRepo
	responses  responseRepo
	timeline   timelineRepo
	cfg        config.IntakeConfig
	now        func() time.Time
}

// NewService creates a new intake service instance.
func NewService(
	logger *slog.Logger,
	links linkRepo,
	workspaces workspaceRepo,
	responses responseRepo,
	timeline timelineRepo,
	cfg config.IntakeConfig,
) *Service {
	return &Service{
		log:        logger.With("service", "intake"),
		links:      links,
		workspaces: workspaces,
		responses:  responses,
		timeline:   timeline,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}
