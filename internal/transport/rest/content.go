package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
	"github.com/rowanledger/taxdesk-backend/internal/service/content"
	"github.com/rowanledger/taxdesk-backend/internal/transport/middleware"
)

// contentService defines the minimal interface needed by ContentHandler.
type contentService interface {
	Upsert(ctx context.Context, input content.UpsertInput) (*domain.PageSection, error)
	PublicPage(ctx context.Context, pageSlug string) ([]*domain.PageSection, error)
	AdminPage(ctx context.Context, pageSlug string) ([]*domain.PageSection, error)
	SetPublished(ctx context.Context, id uuid.UUID, published bool) (*domain.PageSection, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContentHandler serves managed page content: a public read surface and
// admin-only editing endpoints.
type ContentHandler struct {
	svc contentService
	log *slog.Logger
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(svc contentService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{svc: svc, log: logger.With("handler", "content")}
}

type sectionResponse struct {
	ID         string         `json:"id"`
	PageSlug   string         `json:"pageSlug"`
	SectionKey string         `json:"sectionKey"`
	Title      string         `json:"title,omitempty"`
	Body       map[string]any `json:"body,omitempty"`
	Position   int            `json:"position"`
	Published  bool           `json:"published"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// PublicPage handles GET /api/pages/{slug}. Public; drafts are invisible.
func (h *ContentHandler) PublicPage(w http.ResponseWriter, r *http.Request) {
	sections, err := h.svc.PublicPage(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": toSectionResponses(sections)})
}

// AdminPage handles GET /api/admin/pages/{slug}. Includes drafts.
func (h *ContentHandler) AdminPage(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	sections, err := h.svc.AdminPage(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": toSectionResponses(sections)})
}

type upsertSectionRequest struct {
	Title    string         `json:"title"`
	Body     map[string]any `json:"body"`
	Position int            `json:"position"`
}

// UpsertSection handles PUT /api/admin/pages/{slug}/sections/{key}.
func (h *ContentHandler) UpsertSection(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req upsertSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	section, err := h.svc.Upsert(r.Context(), content.UpsertInput{
		PageSlug:   r.PathValue("slug"),
		SectionKey: r.PathValue("key"),
		Title:      req.Title,
		Body:       req.Body,
		Position:   req.Position,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSectionResponse(section))
}

type publishSectionRequest struct {
	Published bool `json:"published"`
}

// PublishSection handles POST /api/admin/sections/{id}/publish.
func (h *ContentHandler) PublishSection(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req publishSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	section, err := h.svc.SetPublished(r.Context(), id, req.Published)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSectionResponse(section))
}

// DeleteSection handles DELETE /api/admin/sections/{id}.
func (h *ContentHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toSectionResponse(s *domain.PageSection) sectionResponse {
	return sectionResponse{
		ID:         s.ID.String(),
		PageSlug:   s.PageSlug,
		SectionKey: s.SectionKey,
		Title:      s.Title,
		Body:       s.Body,
		Position:   s.Position,
		Published:  s.Published,
		UpdatedAt:  s.UpdatedAt,
	}
}

func toSectionResponses(sections []*domain.PageSection) []sectionResponse {
	items := make([]sectionResponse, len(sections))
	for i, s := range sections {
		items[i] = toSectionResponse(s)
	}
	return items
}
