package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"thumbstudio/internal/media"
	"thumbstudio/internal/thumbnail"
)

// Generate runs the full concept plus image pipeline and replaces the session
// result.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	if err := a.Studio.Generate(r.Context()); err != nil {
		a.Logger.Error().Err(err).Msg("thumbnail generation failed")
		a.error(w, http.StatusBadGateway, "generation_failed", err.Error())
		return
	}
	a.json(w, http.StatusOK, a.Studio.State().Snapshot())
}

// Refine edits the current image with a natural language instruction.
func (a *App) Refine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Instruction string `json:"instruction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		instruction = a.Studio.State().Snapshot().PendingInstruction
	}
	if instruction == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "instruction is required")
		return
	}
	if err := a.Studio.Refine(r.Context(), instruction); err != nil {
		a.Logger.Error().Err(err).Msg("thumbnail refinement failed")
		a.error(w, http.StatusBadGateway, "refinement_failed", err.Error())
		return
	}
	a.json(w, http.StatusOK, a.Studio.State().Snapshot())
}

// Animate turns the current image into a short video clip.
func (a *App) Animate(w http.ResponseWriter, r *http.Request) {
	if err := a.Studio.Video(r.Context()); err != nil {
		a.Logger.Error().Err(err).Msg("video generation failed")
		a.error(w, http.StatusBadGateway, "video_failed", err.Error())
		return
	}
	a.json(w, http.StatusOK, a.Studio.State().Snapshot())
}

// RemoveVideo discards the generated clip while keeping the image result.
func (a *App) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	a.Studio.State().ClearVideo()
	a.json(w, http.StatusOK, a.Studio.State().Snapshot())
}

// Download streams the current image as a PNG attachment named after the
// video title.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	current := a.Studio.State().CurrentImage()
	if current == "" {
		a.error(w, http.StatusNotFound, "not_found", "no image to download")
		return
	}
	part, err := media.PartFromDataURL(current)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "stored image is corrupt")
		return
	}
	data, err := part.Bytes()
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "stored image is corrupt")
		return
	}

	cfg := a.Studio.State().Config()
	filename := thumbnail.DownloadFilename(cfg.Title, time.Now())
	if a.Store != nil {
		if _, err := a.Store.Write(r.Context(), "downloads/"+filename, data); err != nil {
			a.Logger.Warn().Err(err).Msg("failed to archive download")
		}
	}

	w.Header().Set("Content-Type", part.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
