package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
	"github.com/rowanledger/taxdesk-backend/internal/service/workspace"
)

// workspaceService defines the minimal interface needed by WorkspaceHandler.
type workspaceService interface {
	Create(ctx context.Context, input workspace.CreateInput) (*workspace.View, error)
	Get(ctx context.Context, id uuid.UUID) (*workspace.View, error)
	List(ctx context.Context, input workspace.ListInput) ([]*workspace.View, int, error)
	Update(ctx context.Context, id uuid.UUID, input workspace.UpdateInput) (*workspace.View, error)
	Archive(ctx context.Context, id uuid.UUID) (*workspace.View, error)
	UpdateChecklist(ctx context.Context, id uuid.UUID, patch workspace.ChecklistPatch) (*workspace.View, error)
	ListTimeline(ctx context.Context, id uuid.UUID, limit, offset int) ([]*domain.TimelineEvent, int, error)
	ListResponses(ctx context.Context, id uuid.UUID) ([]*domain.IntakeResponse, error)
}

// WorkspaceHandler serves client workspace endpoints.
type WorkspaceHandler struct {
	svc workspaceService
	log *slog.Logger
}

// NewWorkspaceHandler creates a WorkspaceHandler.
func NewWorkspaceHandler(svc workspaceService, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc, log: logger.With("handler", "workspace")}
}

type contactResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type workspaceResponse struct {
	ID             string                    `json:"id"`
	DisplayName    string                    `json:"displayName"`
	Status         string                    `json:"status"`
	Badge          string                    `json:"badge"`
	Contact        contactResponse           `json:"contact"`
	Tags           []string                  `json:"tags,omitempty"`
	TaxYears       []int                     `json:"taxYears"`
	Checklist      domain.TaxReturnChecklist `json:"checklist"`
	CreatedAt      time.Time                 `json:"createdAt"`
	UpdatedAt      time.Time                 `json:"updatedAt"`
	LastActivityAt *time.Time                `json:"lastActivityAt,omitempty"`
}

type createWorkspaceRequest struct {
	DisplayName string          `json:"displayName"`
	Contact     contactResponse `json:"contact"`
	Tags        []string        `json:"tags"`
	TaxYears    []int           `json:"taxYears"`
}

type updateWorkspaceRequest struct {
	DisplayName *string          `json:"displayName"`
	Contact     *contactResponse `json:"contact"`
	Tags        *[]string        `json:"tags"`
	TaxYears    *[]int           `json:"taxYears"`
}

// Create handles POST /api/workspaces.
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.svc.Create(r.Context(), workspace.CreateInput{
		DisplayName: req.DisplayName,
		Contact:     toContactInfo(req.Contact),
		Tags:        req.Tags,
		TaxYears:    req.TaxYears,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWorkspaceResponse(view))
}

// Get handles GET /api/workspaces/{id}.
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkspaceResponse(view))
}

// List handles GET /api/workspaces?status=active&tag=priority&limit=50&offset=0.
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	input := workspace.ListInput{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := domain.WorkspaceStatus(v)
		if !status.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		input.Status = &status
	}
	if v := r.URL.Query().Get("tag"); v != "" {
		input.Tag = &v
	}

	views, total, err := h.svc.List(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]workspaceResponse, len(views))
	for i, v := range views {
		items[i] = toWorkspaceResponse(v)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workspaces": items,
		"total":      total,
	})
}

// Update handles PATCH /api/workspaces/{id}.
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req updateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := workspace.UpdateInput{
		DisplayName: req.DisplayName,
		Tags:        req.Tags,
		TaxYears:    req.TaxYears,
	}
	if req.Contact != nil {
		contact := toContactInfo(*req.Contact)
		input.Contact = &contact
	}

	view, err := h.svc.Update(r.Context(), id, input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkspaceResponse(view))
}

// Archive handles POST /api/workspaces/{id}/archive.
func (h *WorkspaceHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.svc.Archive(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkspaceResponse(view))
}

// UpdateChecklist handles PATCH /api/workspaces/{id}/checklist.
func (h *WorkspaceHandler) UpdateChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var patch workspace.ChecklistPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.svc.UpdateChecklist(r.Context(), id, patch)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkspaceResponse(view))
}

type timelineEventResponse struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Timeline handles GET /api/workspaces/{id}/timeline.
func (h *WorkspaceHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	events, total, err := h.svc.ListTimeline(r.Context(), id, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]timelineEventResponse, len(events))
	for i, ev := range events {
		items[i] = timelineEventResponse{
			ID:          ev.ID.String(),
			Type:        ev.Type.String(),
			Title:       ev.Title,
			Description: ev.Description,
			Metadata:    ev.Metadata,
			CreatedAt:   ev.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": items,
		"total":  total,
	})
}

type intakeResponseResponse struct {
	ID          string         `json:"id"`
	LinkID      *string        `json:"linkId,omitempty"`
	Answers     map[string]any `json:"answers"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

// Responses handles GET /api/workspaces/{id}/responses.
func (h *WorkspaceHandler) Responses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	responses, err := h.svc.ListResponses(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]intakeResponseResponse, len(responses))
	for i, resp := range responses {
		item := intakeResponseResponse{
			ID:          resp.ID.String(),
			Answers:     resp.Answers,
			SubmittedAt: resp.SubmittedAt,
		}
		if resp.LinkID != nil {
			s := resp.LinkID.String()
			item.LinkID = &s
		}
		items[i] = item
	}
	writeJSON(w, http.StatusOK, map[string]any{"responses": items})
}

func toContactInfo(c contactResponse) domain.ContactInfo {
	return domain.ContactInfo{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
	}
}

func toWorkspaceResponse(v *workspace.View) workspaceResponse {
	ws := v.Workspace
	return workspaceResponse{
		ID:          ws.ID.String(),
		DisplayName: ws.DisplayName,
		Status:      ws.Status.String(),
		Badge:       v.Badge.String(),
		Contact: contactResponse{
			Name:    ws.Contact.Name,
			Email:   ws.Contact.Email,
			Phone:   ws.Contact.Phone,
			Address: ws.Contact.Address,
		},
		Tags:           ws.Tags,
		TaxYears:       ws.TaxYears,
		Checklist:      ws.Checklist,
		CreatedAt:      ws.CreatedAt,
		UpdatedAt:      ws.UpdatedAt,
		LastActivityAt: ws.LastActivityAt,
	}
}
