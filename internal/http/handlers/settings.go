package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"thumbstudio/internal/infra/credentials"
)

// APIKeyStatus reports whether a Gemini key is stored without revealing it.
func (a *App) APIKeyStatus(w http.ResponseWriter, r *http.Request) {
	if !a.Credentials.Available() {
		a.json(w, http.StatusOK, map[string]any{"stored": false, "persistent": false})
		return
	}
	key, err := a.Credentials.GeminiAPIKey(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to read stored api key")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read stored key")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"stored": key != "", "persistent": true})
}

// SaveAPIKey stores a user supplied Gemini key. The stored key wins over the
// environment fallback on every subsequent provider call.
func (a *App) SaveAPIKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "api_key is required")
		return
	}
	if err := a.Credentials.SetGeminiAPIKey(r.Context(), key); err != nil {
		if err == credentials.ErrUnavailable {
			a.error(w, http.StatusServiceUnavailable, "no_store", "credential storage is not configured")
			return
		}
		a.Logger.Error().Err(err).Msg("failed to store api key")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store key")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"stored": true, "persistent": true})
}

// DeleteAPIKey removes the stored key so the environment fallback applies
// again.
func (a *App) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := a.Credentials.DeleteGeminiAPIKey(r.Context()); err != nil {
		if err == credentials.ErrUnavailable {
			a.error(w, http.StatusServiceUnavailable, "no_store", "credential storage is not configured")
			return
		}
		a.Logger.Error().Err(err).Msg("failed to delete api key")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete key")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"stored": false, "persistent": true})
}
