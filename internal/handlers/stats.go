package handlers

import "net/http"

// StatsResponse represents the public stats response.
type StatsResponse struct {
	Users           int64 `json:"users"`
	Messages        int64 `json:"messages"`
	LiveConnections int   `json:"live_connections"`
}

// Stats handles the public server statistics endpoint.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.CountUsers(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	messages, err := h.store.CountMessages(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, StatsResponse{
		Users:           users,
		Messages:        messages,
		LiveConnections: h.presence.ConnectionCount(),
	})
}
