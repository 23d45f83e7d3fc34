package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ListAssets enumerates saved files: archived downloads and rendered clips.
// An optional prefix query narrows the listing to one subtree.
func (a *App) ListAssets(w http.ResponseWriter, r *http.Request) {
	if a.Store == nil {
		a.json(w, http.StatusOK, map[string]any{"assets": []string{}})
		return
	}
	keys, err := a.Store.List(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if keys == nil {
		keys = []string{}
	}
	a.json(w, http.StatusOK, map[string]any{"assets": keys})
}

// Asset streams a stored file such as a generated video clip.
func (a *App) Asset(w http.ResponseWriter, r *http.Request) {
	if a.Store == nil {
		a.error(w, http.StatusNotFound, "not_found", "asset storage is not configured")
		return
	}
	key := chi.URLParam(r, "*")
	if key == "" {
		a.error(w, http.StatusNotFound, "not_found", "asset not found")
		return
	}
	data, err := a.Store.Read(r.Context(), key)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "asset not found")
		return
	}
	w.Header().Set("Content-Type", contentTypeForKey(key))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func contentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".mp4":
		return "video/mp4"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
