package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"thumbstudio/internal/infra/credentials"
	"thumbstudio/internal/storage"
	"thumbstudio/internal/studio"
)

// App bundles the handler dependencies: the single-session studio, the
// credential store, and the filesystem store backing downloads and clips.
type App struct {
	Studio      *studio.Studio
	Credentials *credentials.Store
	Store       *storage.FileStore
	Logger      zerolog.Logger
}

func NewApp(st *studio.Studio, creds *credentials.Store, store *storage.FileStore, logger zerolog.Logger) *App {
	return &App{Studio: st, Credentials: creds, Store: store, Logger: logger}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]errorBody{"error": {Code: errCode, Message: message}})
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
