package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openroomhq/openroom/internal/metrics"
	"github.com/openroomhq/openroom/internal/models"
	"github.com/openroomhq/openroom/internal/sanitize"
)

// MessageRequest represents the post and edit request bodies.
type MessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// ListMessages handles GET /messages?limit=N. The viewer is the claimed
// User header; limit keeps the last N visible messages.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	viewer := claimedUser(r)

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	messages, err := h.ledger.ListVisible(r.Context(), viewer, limit)
	if err != nil {
		h.coreError(w, r, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	h.JSON(w, http.StatusOK, messages)
}

// PostMessage handles POST /messages.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	from := claimedUser(r)
	msg, err := h.ledger.Post(r.Context(), from, sanitize.Text(req.To), sanitize.Text(req.Text), req.Type)
	if err != nil {
		h.coreError(w, r, err)
		return
	}

	metrics.MessagesPosted.WithLabelValues(msg.Type).Inc()
	h.JSON(w, http.StatusCreated, msg)
}

// EditMessage handles PUT /messages/{id}.
func (h *Handler) EditMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	id := chi.URLParam(r, "id")
	requester := claimedUser(r)

	err := h.ledger.Edit(r.Context(), id, requester, sanitize.Text(req.To), sanitize.Text(req.Text), req.Type)
	if err != nil {
		h.coreError(w, r, err)
		return
	}
	h.Status(w, http.StatusOK)
}

// DeleteMessage handles DELETE /messages/{id}.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	requester := claimedUser(r)

	if err := h.ledger.Delete(r.Context(), id, requester); err != nil {
		h.coreError(w, r, err)
		return
	}

	metrics.MessagesDeleted.Inc()
	h.Status(w, http.StatusOK)
}
