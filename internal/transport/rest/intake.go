package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
	"github.com/rowanledger/taxdesk-backend/internal/service/intake"
)

// intakeService defines the minimal interface needed by IntakeHandler.
type intakeService interface {
	CreateLink(ctx context.Context, input intake.CreateLinkInput) (*intake.CreatedLink, error)
	ListLinks(ctx context.Context, workspaceID uuid.UUID) ([]*domain.IntakeLink, error)
	Inspect(ctx context.Context, rawToken string) (*intake.FormDescriptor, error)
	Redeem(ctx context.Context, input intake.RedeemInput) (*intake.RedeemResult, error)
}

// IntakeHandler serves intake link endpoints, both the staff-facing link
// management and the public token-gated form.
type IntakeHandler struct {
	svc intakeService
	log *slog.Logger
}

// NewIntakeHandler creates an IntakeHandler.
func NewIntakeHandler(svc intakeService, logger *slog.Logger) *IntakeHandler {
	return &IntakeHandler{svc: svc, log: logger.With("handler", "intake")}
}

type createLinkRequest struct {
	WorkspaceID *uuid.UUID `json:"workspaceId"`
	Channels    []string   `json:"channels"`
	TTL         string     `json:"ttl"`
}

type linkResponse struct {
	ID              string     `json:"id"`
	Kind            string     `json:"kind"`
	Status          string     `json:"status"`
	WorkspaceID     *string    `json:"workspaceId,omitempty"`
	TokenLast4      string     `json:"tokenLast4"`
	Channels        []string   `json:"channels"`
	CreatedAt       time.Time  `json:"createdAt"`
	ExpiresAt       time.Time  `json:"expiresAt"`
	UsedAt          *time.Time `json:"usedAt,omitempty"`
	UsedWorkspaceID *string    `json:"usedWorkspaceId,omitempty"`
}

type createdLinkResponse struct {
	Link  linkResponse `json:"link"`
	Token string       `json:"token"`
}

// CreateLink handles POST /api/intake-links.
func (h *IntakeHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := intake.CreateLinkInput{WorkspaceID: req.WorkspaceID}
	for _, c := range req.Channels {
		input.Channels = append(input.Channels, domain.IntakeChannel(c))
	}
	if req.TTL != "" {
		ttl, err := time.ParseDuration(req.TTL)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid ttl")
			return
		}
		input.TTL = &ttl
	}

	created, err := h.svc.CreateLink(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createdLinkResponse{
		Link:  toLinkResponse(created.Link),
		Token: created.RawToken,
	})
}

// ListWorkspaceLinks handles GET /api/workspaces/{id}/links.
func (h *IntakeHandler) ListWorkspaceLinks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	links, err := h.svc.ListLinks(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]linkResponse, len(links))
	for i, l := range links {
		items[i] = toLinkResponse(l)
	}
	writeJSON(w, http.StatusOK, map[string]any{"links": items})
}

type formDescriptorResponse struct {
	Valid             bool      `json:"valid"`
	Kind              string    `json:"kind"`
	Steps             []string  `json:"steps"`
	ClientWorkspaceID *string   `json:"clientWorkspaceId,omitempty"`
	DisplayName       string    `json:"displayName,omitempty"`
	ExpiresAt         time.Time `json:"expiresAt"`
}

// Inspect handles GET /api/intake-links/{token}. Public. Invalid tokens never
// reach the response body; they surface as 404/410, so valid is always true
// here.
func (h *IntakeHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	desc, err := h.svc.Inspect(r.Context(), r.PathValue("token"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := formDescriptorResponse{
		Valid:       true,
		Kind:        desc.Kind.String(),
		Steps:       desc.Steps,
		DisplayName: desc.DisplayName,
		ExpiresAt:   desc.ExpiresAt,
	}
	if desc.WorkspaceID != nil {
		s := desc.WorkspaceID.String()
		resp.ClientWorkspaceID = &s
	}
	writeJSON(w, http.StatusOK, resp)
}

type redeemRequest struct {
	FullName          string         `json:"fullName"`
	Email             string         `json:"email"`
	Phone             string         `json:"phone"`
	Address           string         `json:"address"`
	TaxYears          any            `json:"taxYears"`
	ClientWorkspaceID *uuid.UUID     `json:"clientWorkspaceId"`
	Extra             map[string]any `json:"extra"`
}

type intakeResponseBody struct {
	ID          string         `json:"id"`
	WorkspaceID string         `json:"workspaceId"`
	LinkID      *string        `json:"linkId,omitempty"`
	Answers     map[string]any `json:"answers"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

type redeemResponse struct {
	IntakeResponse intakeResponseBody `json:"intakeResponse"`
	WorkspaceID    string             `json:"workspaceId"`
}

// Redeem handles POST /api/intake-links/{token}. Public.
func (h *IntakeHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Redeem(r.Context(), intake.RedeemInput{
		Token:             r.PathValue("token"),
		FullName:          req.FullName,
		Email:             req.Email,
		Phone:             req.Phone,
		Address:           req.Address,
		TaxYears:          req.TaxYears,
		ClientWorkspaceID: req.ClientWorkspaceID,
		Extra:             req.Extra,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	body := intakeResponseBody{
		ID:          result.Response.ID.String(),
		WorkspaceID: result.Response.WorkspaceID.String(),
		Answers:     result.Response.Answers,
		SubmittedAt: result.Response.SubmittedAt,
	}
	if result.Response.LinkID != nil {
		s := result.Response.LinkID.String()
		body.LinkID = &s
	}
	writeJSON(w, http.StatusOK, redeemResponse{
		IntakeResponse: body,
		WorkspaceID:    result.Workspace.ID.String(),
	})
}

func toLinkResponse(l *domain.IntakeLink) linkResponse {
	channels := make([]string, len(l.Channels))
	for i, c := range l.Channels {
		channels[i] = c.String()
	}

	resp := linkResponse{
		ID:         l.ID.String(),
		Kind:       l.Kind().String(),
		Status:     l.Status.String(),
		TokenLast4: l.TokenLast4,
		Channels:   channels,
		CreatedAt:  l.CreatedAt,
		ExpiresAt:  l.ExpiresAt,
		UsedAt:     l.UsedAt,
	}
	if l.WorkspaceID != nil {
		s := l.WorkspaceID.String()
		resp.WorkspaceID = &s
	}
	if l.UsedWorkspaceID != nil {
		s := l.UsedWorkspaceID.String()
		resp.UsedWorkspaceID = &s
	}
	return resp
}
