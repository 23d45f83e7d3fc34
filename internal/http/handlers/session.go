package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"thumbstudio/internal/media"
	"thumbstudio/internal/thumbnail"
)

// Session returns the current view: config, result, busy flags, error slot,
// and transcript.
func (a *App) Session(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Studio.State().Snapshot())
}

// UpdateConfig replaces the session configuration from the request body.
// Binary attachments already stored on the config survive unless the body
// carries replacements.
func (a *App) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	current := a.Studio.State().Config()
	cfg := current
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.Studio.State().SetConfig(cfg)
	a.json(w, http.StatusOK, a.Studio.State().Snapshot())
}

// ResetSession restores session-start defaults.
func (a *App) ResetSession(w http.ResponseWriter, r *http.Request) {
	a.Studio.State().Reset()
	a.json(w, http.StatusOK, a.Studio.State().Snapshot())
}

// SetInstruction stores the pending refinement instruction.
func (a *App) SetInstruction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Instruction string `json:"instruction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	a.Studio.State().SetPendingInstruction(req.Instruction)
	a.json(w, http.StatusOK, a.Studio.State().Snapshot())
}

const maxAttachmentBytes = 16 << 20

// UploadAttachment attaches a face, logo, or reference image to the config.
// The body is either multipart form data with a "file" field or JSON carrying
// a base64 data URL.
func (a *App) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if !validAttachmentKind(kind) {
		a.error(w, http.StatusBadRequest, "bad_request", "kind must be one of face, logo, reference")
		return
	}

	part, err := a.decodeAttachment(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	cfg := a.Studio.State().Config()
	setAttachment(&cfg, kind, &part)
	a.Studio.State().SetConfig(cfg)
	a.json(w, http.StatusOK, a.Studio.State().Snapshot())
}

// RemoveAttachment detaches a previously uploaded image.
func (a *App) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if !validAttachmentKind(kind) {
		a.error(w, http.StatusBadRequest, "bad_request", "kind must be one of face, logo, reference")
		return
	}
	cfg := a.Studio.State().Config()
	setAttachment(&cfg, kind, nil)
	a.Studio.State().SetConfig(cfg)
	a.json(w, http.StatusOK, a.Studio.State().Snapshot())
}

func (a *App) decodeAttachment(r *http.Request) (media.Part, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxAttachmentBytes); err != nil {
			return media.Part{}, err
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return media.Part{}, err
		}
		defer file.Close()
		return media.PartFromReader(file, header.Header.Get("Content-Type"))
	}

	var req struct {
		DataURL string `json:"data_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return media.Part{}, err
	}
	return media.PartFromDataURL(req.DataURL)
}

func validAttachmentKind(kind string) bool {
	switch kind {
	case "face", "logo", "reference":
		return true
	}
	return false
}

func setAttachment(cfg *thumbnail.Config, kind string, part *media.Part) {
	switch kind {
	case "face":
		cfg.FaceImage = part
	case "logo":
		cfg.LogoImage = part
	case "reference":
		cfg.ReferenceImage = part
	}
}
