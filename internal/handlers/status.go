package handlers

import (
	"net/http"
)

// Heartbeat handles POST /status: it refreshes the claimed participant's
// liveness timestamp. A 404 tells the client to re-register.
func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	name := claimedUser(r)
	if name == "" {
		h.Error(w, http.StatusNotFound, "not found")
		return
	}

	if err := h.registry.Heartbeat(r.Context(), name); err != nil {
		h.coreError(w, r, err)
		return
	}
	h.Status(w, http.StatusOK)
}
