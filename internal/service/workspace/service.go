// Package workspace implements back-office operations on client workspaces:
// CRUD, checklist updates, and activity views.
package workspace

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

// workspaceRepo defines the workspace repository interface needed by the service.
type workspaceRepo interface {
	Create(ctx context.Context, ws *domain.ClientWorkspace) (*domain.ClientWorkspace, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientWorkspace, error)
	List(ctx context.Context, f domain.WorkspaceFilter) ([]*domain.ClientWorkspace, int, error)
	Update(ctx context.Context, ws *domain.ClientWorkspace) (*domain.ClientWorkspace, error)
}

// timelineRepo defines the timeline repository interface needed by the service.
type timelineRepo interface {
	Append(ctx context.Context, ev *domain.TimelineEvent) (*domain.TimelineEvent, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*domain.TimelineEvent, int, error)
}

// responseRepo defines the intake response repository interface needed by the service.
type responseRepo interface {
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.IntakeResponse, error)
}

// Service implements workspace operations.
type Service struct {
	log        *slog.Logger
	workspaces workspaceRepo
	timeline   timelineRepo
	responses  responseRepo
	now        func() time.Time
}

// NewService creates a new workspace service instance.
func NewService(
	logger *slog.Logger,
	workspaces workspaceRepo,
	timeline timelineRepo,
	responses responseRepo,
) *Service {
	return &Service{
		log:        logger.With("service", "workspace"),
		workspaces: workspaces,
		timeline:   timeline,
		responses:  responses,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// View pairs a workspace with its derived lifecycle badge.
type View struct {
	Workspace *domain.ClientWorkspace
	Badge     domain.LifecycleBadge
}

func newView(ws *domain.ClientWorkspace) *View {
	return &View{Workspace: ws, Badge: ws.Checklist.LifecycleBadge()}
}
