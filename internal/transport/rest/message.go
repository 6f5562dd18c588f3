package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rowanledger/taxdesk-backend/internal/domain"
	"github.com/rowanledger/taxdesk-backend/internal/service/message"
)

// messageService defines the minimal interface needed by MessageHandler.
type messageService interface {
	Post(ctx context.Context, input message.PostInput) (*domain.Message, error)
	Inbox(ctx context.Context, limit, offset int) ([]*domain.MessageThreadView, int, error)
	History(ctx context.Context, threadID uuid.UUID, limit, offset int) ([]*domain.Message, int, error)
	MarkRead(ctx context.Context, threadID uuid.UUID) (int, error)
}

// MessageHandler serves workspace conversation endpoints.
type MessageHandler struct {
	svc messageService
	log *slog.Logger
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(svc messageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{svc: svc, log: logger.With("handler", "message")}
}

type postMessageRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

type messageResponse struct {
	ID        string     `json:"id"`
	ThreadID  string     `json:"threadId"`
	Author    string     `json:"author"`
	AuthorID  *string    `json:"authorId,omitempty"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

type threadViewResponse struct {
	ID          string           `json:"id"`
	WorkspaceID string           `json:"workspaceId"`
	Subject     string           `json:"subject"`
	LastMessage *messageResponse `json:"lastMessage,omitempty"`
	UnreadCount int              `json:"unreadCount"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Post handles POST /api/workspaces/{id}/messages.
func (h *MessageHandler) Post(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	author := domain.MessageAuthor(req.Author)
	if author == "" {
		author = domain.AuthorStaff
	}

	msg, err := h.svc.Post(r.Context(), message.PostInput{
		WorkspaceID: id,
		Author:      author,
		Body:        req.Body,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageResponse(msg))
}

// Inbox handles GET /api/inbox.
func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	views, total, err := h.svc.Inbox(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]threadViewResponse, len(views))
	for i, v := range views {
		item := threadViewResponse{
			ID:          v.Thread.ID.String(),
			WorkspaceID: v.Thread.WorkspaceID.String(),
			Subject:     v.Thread.Subject,
			UnreadCount: v.UnreadCount,
			UpdatedAt:   v.Thread.UpdatedAt,
		}
		if v.LastMessage != nil {
			last := toMessageResponse(v.LastMessage)
			item.LastMessage = &last
		}
		items[i] = item
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"threads": items,
		"total":   total,
	})
}

// History handles GET /api/threads/{id}/messages.
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	msgs, total, err := h.svc.History(r.Context(), id, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]messageResponse, len(msgs))
	for i, m := range msgs {
		items[i] = toMessageResponse(m)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": items,
		"total":    total,
	})
}

// MarkRead handles POST /api/threads/{id}/read.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	marked, err := h.svc.MarkRead(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": marked})
}

func toMessageResponse(m *domain.Message) messageResponse {
	resp := messageResponse{
		ID:        m.ID.String(),
		ThreadID:  m.ThreadID.String(),
		Author:    m.Author.String(),
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
		ReadAt:    m.ReadAt,
	}
	if m.AuthorID != nil {
		s := m.AuthorID.String()
		resp.AuthorID = &s
	}
	return resp
}
