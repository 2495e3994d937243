package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openroomhq/openroom/internal/metrics"
	"github.com/openroomhq/openroom/internal/models"
	"github.com/openroomhq/openroom/internal/sanitize"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Name string `json:"name"`
}

// ListParticipants handles GET /participants.
func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.registry.ListParticipants(r.Context())
	if err != nil {
		h.coreError(w, r, err)
		return
	}
	if participants == nil {
		participants = []models.Participant{}
	}
	h.JSON(w, http.StatusOK, participants)
}

// Register handles POST /participants.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	name := sanitize.Text(req.Name)
	if name == "" {
		h.Error(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	participant, err := h.registry.Register(r.Context(), name)
	if err != nil {
		h.coreError(w, r, err)
		return
	}

	metrics.ParticipantsRegistered.Inc()
	h.JSON(w, http.StatusCreated, participant)
}
