package rest

import (
	"log/slog"
	"net/http"

	"github.com/rowanledger/taxdesk-backend/internal/config"
	"github.com/rowanledger/taxdesk-backend/internal/obs"
	"github.com/rowanledger/taxdesk-backend/internal/transport/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Validator middleware.AccessTokenValidator
	Limiter   *middleware.RateLimiter

	Health    *HealthHandler
	Auth      *AuthHandler
	Intake    *IntakeHandler
	Workspace *WorkspaceHandler
	Message   *MessageHandler
	Content   *ContentHandler
}

// NewRouter builds the HTTP routing table. Public endpoints (health, intake
// form, published pages) sit outside the auth gate; everything under the
// staff surface requires a valid access token.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	staff := middleware.Chain(
		middleware.Auth(deps.Validator),
		middleware.RequireStaff(),
	)
	publicIntake := deps.Limiter.Limit(deps.Config.Intake.LinkRateLimitPerMinute)

	// Probes and metrics.
	mux.HandleFunc("GET /live", deps.Health.Live)
	mux.HandleFunc("GET /ready", deps.Health.Ready)
	mux.HandleFunc("GET /health", deps.Health.Health)
	mux.Handle("GET /metrics", obs.Handler())

	// Staff session endpoints.
	mux.HandleFunc("POST /api/auth/login", deps.Auth.Login)
	mux.HandleFunc("POST /api/auth/refresh", deps.Auth.Refresh)
	mux.Handle("POST /api/auth/logout", staff(http.HandlerFunc(deps.Auth.Logout)))

	// Public intake form, token-gated and rate limited per IP.
	mux.Handle("GET /api/intake-links/{token}", publicIntake(http.HandlerFunc(deps.Intake.Inspect)))
	mux.Handle("POST /api/intake-links/{token}", publicIntake(http.HandlerFunc(deps.Intake.Redeem)))

	// Public page content.
	mux.HandleFunc("GET /api/pages/{slug}", deps.Content.PublicPage)

	// Staff back office.
	mux.Handle("POST /api/intake-links", staff(http.HandlerFunc(deps.Intake.CreateLink)))
	mux.Handle("GET /api/workspaces/{id}/links", staff(http.HandlerFunc(deps.Intake.ListWorkspaceLinks)))

	mux.Handle("POST /api/workspaces", staff(http.HandlerFunc(deps.Workspace.Create)))
	mux.Handle("GET /api/workspaces", staff(http.HandlerFunc(deps.Workspace.List)))
	mux.Handle("GET /api/workspaces/{id}", staff(http.HandlerFunc(deps.Workspace.Get)))
	mux.Handle("PATCH /api/workspaces/{id}", staff(http.HandlerFunc(deps.Workspace.Update)))
	mux.Handle("POST /api/workspaces/{id}/archive", staff(http.HandlerFunc(deps.Workspace.Archive)))
	mux.Handle("PATCH /api/workspaces/{id}/checklist", staff(http.HandlerFunc(deps.Workspace.UpdateChecklist)))
	mux.Handle("GET /api/workspaces/{id}/timeline", staff(http.HandlerFunc(deps.Workspace.Timeline)))
	mux.Handle("GET /api/workspaces/{id}/responses", staff(http.HandlerFunc(deps.Workspace.Responses)))

	mux.Handle("GET /api/inbox", staff(http.HandlerFunc(deps.Message.Inbox)))
	mux.Handle("POST /api/workspaces/{id}/messages", staff(http.HandlerFunc(deps.Message.Post)))
	mux.Handle("GET /api/threads/{id}/messages", staff(http.HandlerFunc(deps.Message.History)))
	mux.Handle("POST /api/threads/{id}/read", staff(http.HandlerFunc(deps.Message.MarkRead)))

	// Admin-only content management; role is checked in the handlers.
	mux.Handle("GET /api/admin/pages/{slug}", staff(http.HandlerFunc(deps.Content.AdminPage)))
	mux.Handle("PUT /api/admin/pages/{slug}/sections/{key}", staff(http.HandlerFunc(deps.Content.UpsertSection)))
	mux.Handle("POST /api/admin/sections/{id}/publish", staff(http.HandlerFunc(deps.Content.PublishSection)))
	mux.Handle("DELETE /api/admin/sections/{id}", staff(http.HandlerFunc(deps.Content.DeleteSection)))

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(deps.Logger),
		middleware.Logger(deps.Logger),
		middleware.CORS(deps.Config.CORS),
		obs.Instrument,
	)(mux)
}
