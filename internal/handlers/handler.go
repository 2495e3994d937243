package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/openroomhq/openroom/internal/chat"
	"github.com/openroomhq/openroom/internal/sanitize"
	"github.com/openroomhq/openroom/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	registry *chat.Registry
	ledger   *chat.Ledger
	store    store.RecordStore
	redis    *redis.Client // nil unless rate limiting is configured
	log      zerolog.Logger
}

// NewHandler creates a new Handler with the given core components.
func NewHandler(registry *chat.Registry, ledger *chat.Ledger, st store.RecordStore, redisClient *redis.Client, logger zerolog.Logger) *Handler {
	return &Handler{
		registry: registry,
		ledger:   ledger,
		store:    st,
		redis:    redisClient,
		log:      logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// Status sends a bare status code with no body, matching the original API.
func (h *Handler) Status(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}

// claimedUser returns the claimed identity from the untrusted User header.
// It is a display name, nothing more; no verification happens anywhere.
func claimedUser(r *http.Request) string {
	return sanitize.Text(r.Header.Get("User"))
}

// coreError maps the chat error taxonomy onto HTTP statuses. Forbidden maps
// to 401, matching the original API's non-author responses.
func (h *Handler) coreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, chat.ErrInvalidInput):
		h.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, chat.ErrConflict):
		h.Error(w, http.StatusConflict, "name already registered")
	case errors.Is(err, chat.ErrNotFound):
		h.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, chat.ErrForbidden):
		h.Error(w, http.StatusUnauthorized, "only the author may modify a message")
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("store failure")
		h.Error(w, http.StatusInternalServerError, "internal error")
	}
}
