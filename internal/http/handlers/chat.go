package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ChatMessage sends a user message to the assistant and returns the updated
// transcript. Assistant failures surface as a canned apology turn, not an
// HTTP error.
func (a *App) ChatMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "text is required")
		return
	}
	a.Studio.ChatTurn(r.Context(), text)
	a.json(w, http.StatusOK, a.Studio.State().Snapshot())
}
