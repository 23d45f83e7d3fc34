package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"thumbstudio/internal/infra/credentials"
	"thumbstudio/internal/media"
	"thumbstudio/internal/providers/image"
	"thumbstudio/internal/providers/video"
	"thumbstudio/internal/storage"
	"thumbstudio/internal/studio"
	"thumbstudio/internal/thumbnail"
)

type stubConcepts struct {
	concept *thumbnail.Concept
	err     error
}

func (s *stubConcepts) Generate(ctx context.Context, cfg thumbnail.Config) (*thumbnail.Concept, error) {
	return s.concept, s.err
}

type stubImages struct {
	generated   media.Part
	generateErr error
	edited      media.Part
	editErr     error
	gotEditText string
}

func (s *stubImages) Generate(ctx context.Context, req image.GenerateRequest) (media.Part, error) {
	return s.generated, s.generateErr
}

func (s *stubImages) Edit(ctx context.Context, source media.Part, instruction string) (media.Part, error) {
	s.gotEditText = instruction
	return s.edited, s.editErr
}

type stubVideos struct {
	asset *video.Asset
	err   error
}

func (s *stubVideos) Generate(ctx context.Context, req video.GenerateRequest) (*video.Asset, error) {
	return s.asset, s.err
}

type stubAgent struct {
	reply string
	err   error
}

func (s *stubAgent) Send(ctx context.Context, history []thumbnail.ChatMessage, text string) (string, error) {
	return s.reply, s.err
}

type testApp struct {
	app      *App
	router   chi.Router
	images   *stubImages
	videos   *stubVideos
	agent    *stubAgent
	concepts *stubConcepts
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	concepts := &stubConcepts{concept: &thumbnail.Concept{FinalPrompt: "a boat"}}
	images := &stubImages{
		generated: media.Part{MIMEType: "image/png", Data: "YmFzZQ=="},
		edited:    media.Part{MIMEType: "image/png", Data: "cmVmaW5lZA=="},
	}
	videos := &stubVideos{asset: &video.Asset{Data: []byte("mp4"), MIMEType: "video/mp4"}}
	agent := &stubAgent{reply: "hi there"}
	logger := zerolog.New(io.Discard)
	st := studio.New(studio.NewState(), concepts, images, videos, agent, store, logger)
	app := NewApp(st, credentials.NewStore(nil), store, logger)

	r := chi.NewRouter()
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/session", app.Session)
	r.Put("/v1/session/config", app.UpdateConfig)
	r.Post("/v1/session/reset", app.ResetSession)
	r.Put("/v1/session/instruction", app.SetInstruction)
	r.Post("/v1/session/attachments/{kind}", app.UploadAttachment)
	r.Delete("/v1/session/attachments/{kind}", app.RemoveAttachment)
	r.Post("/v1/thumbnail/generate", app.Generate)
	r.Post("/v1/thumbnail/refine", app.Refine)
	r.Post("/v1/thumbnail/video", app.Animate)
	r.Delete("/v1/thumbnail/video", app.RemoveVideo)
	r.Get("/v1/thumbnail/download", app.Download)
	r.Post("/v1/chat/messages", app.ChatMessage)
	r.Get("/v1/settings/api-key", app.APIKeyStatus)
	r.Put("/v1/settings/api-key", app.SaveAPIKey)
	r.Delete("/v1/settings/api-key", app.DeleteAPIKey)
	r.Get("/v1/assets", app.ListAssets)
	r.Get("/assets/*", app.Asset)

	return testApp{app: app, router: r, images: images, videos: videos, agent: agent, concepts: concepts}
}

func (ta testApp) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ta.router.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) studio.View {
	t.Helper()
	var view studio.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return view
}

func TestSessionSnapshot(t *testing.T) {
	ta := newTestApp(t)
	rec := ta.do(t, http.MethodGet, "/v1/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	view := decodeView(t, rec)
	if view.Config.Platform != thumbnail.PlatformYouTube {
		t.Fatalf("default platform = %q", view.Config.Platform)
	}
	if view.Result != nil {
		t.Fatal("fresh session has a result")
	}
}

func TestUpdateConfig(t *testing.T) {
	ta := newTestApp(t)
	rec := ta.do(t, http.MethodPut, "/v1/session/config", map[string]any{
		"title":        "My Boat",
		"platform":     "shorts",
		"aspect_ratio": "9:16",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	view := decodeView(t, rec)
	if view.Config.Title != "My Boat" || view.Config.Platform != thumbnail.PlatformShorts {
		t.Fatalf("config = %+v", view.Config)
	}
	if view.Config.Style != thumbnail.StyleBold {
		t.Fatalf("omitted style not defaulted: %q", view.Config.Style)
	}
}

func TestUpdateConfigRejectsInvalidEnum(t *testing.T) {
	ta := newTestApp(t)
	rec := ta.do(t, http.MethodPut, "/v1/session/config", map[string]any{"platform": "tiktok"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "platform") {
		t.Fatalf("body = %s", rec.Body)
	}
}

func TestUploadAttachmentFromDataURL(t *testing.T) {
	ta := newTestApp(t)
	rec := ta.do(t, http.MethodPost, "/v1/session/attachments/face", map[string]string{
		"data_url": "data:image/png;base64,ZmFjZQ==",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	view := decodeView(t, rec)
	if view.Config.FaceImage == nil || view.Config.FaceImage.Data != "ZmFjZQ==" {
		t.Fatalf("face image = %+v", view.Config.FaceImage)
	}
}

func TestUploadAttachmentMultipart(t *testing.T) {
	ta := newTestApp(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="logo.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("CreatePart returned error: %v", err)
	}
	if _, err := part.Write([]byte("logo-bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/session/attachments/logo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ta.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	view := decodeView(t, rec)
	if view.Config.LogoImage == nil || view.Config.LogoImage.MIMEType != "image/png" {
		t.Fatalf("logo image = %+v", view.Config.LogoImage)
	}
}

func TestUploadAttachmentRejectsBadKind(t *testing.T) {
	ta := newTestApp(t)
	rec := ta.do(t, http.MethodPost, "/v1/session/attachments/banner", map[string]string{
		"data_url": "data:image/png;base64,eA==",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadAttachmentRejectsBadDataURL(t *testing.T) {
	ta := newTestApp(t)
	rec := ta.do(t, http.MethodPost, "/v1/session/attachments/face", map[string]string{
		"data_url": "https://example.com/face.png",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRemoveAttachment(t *testing.T) {
	ta := newTestApp(t)
	ta.do(t, http.MethodPost, "/v1/session/attachments/face", map[string]string{
		"data_url": "data:image/png;base64,ZmFjZQ==",
	})
	rec := ta.do(t, http.MethodDelete, "/v1/session/attachments/face", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if decodeView(t, rec).Config.FaceImage != nil {
		t.Fatal("face image survived removal")
	}
}

func TestGenerateHappyPath(t *testing.T) {
	ta := newTestApp(t)
	rec := ta.do(t, http.MethodPost, "/v1/thumbnail/generate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	view := decodeView(t, rec)
	if view.Result == nil || view.Result.BaseImage != "data:image/png;base64,YmFzZQ==" {
		t.Fatalf("result = %+v", view.Result)
	}
	if view.Busy.Generate {
		t.Fatal("busy flag still set in response")
	}
}

func TestGenerateFailure(t *testing.T) {
	ta := newTestApp(t)
	ta.concepts.err = errors.New("model overloaded")
	rec := ta.do(t, http.MethodPost, "/v1/thumbnail/generate", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	view := decodeView(t, ta.do(t, http.MethodGet, "/v1/session", nil))
	if !strings.Contains(view.Error, "model overloaded") {
		t.Fatalf("session error = %q", view.Error)
	}
}

func TestRefineUsesPendingInstruction(t *testing.T) {
	ta := newTestApp(t)
	ta.do(t, http.MethodPost, "/v1/thumbnail/generate", nil)
	ta.do(t, http.MethodPut, "/v1/session/instruction", map[string]string{"instruction": "add lens flare"})

	rec := ta.do(t, http.MethodPost, "/v1/thumbnail/refine", map[string]string{})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ta.images.gotEditText != "add lens flare" {
		t.Fatalf("edit instruction = %q", ta.images.gotEditText)
	}
	view := decodeView(t, rec)
	if view.Result.RefinedImage != "data:image/png;base64,cmVmaW5lZA==" {
		t.Fatalf("refined image = %q", view.Result.RefinedImage)
	}
	if view.PendingInstruction != "" {
		t.Fatalf("pending instruction = %q, want cleared", view.PendingInstruction)
	}
}

func TestRefineWithoutInstruction(t *testing.T) {
	ta := newTestApp(t)
	ta.do(t, http.MethodPost, "/v1/thumbnail/generate", nil)
	rec := ta.do(t, http.MethodPost, "/v1/thumbnail/refine", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestVideoRoundTrip(t *testing.T) {
	ta := newTestApp(t)
	ta.do(t, http.MethodPost, "/v1/thumbnail/generate", nil)

	rec := ta.do(t, http.MethodPost, "/v1/thumbnail/video", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	view := decodeView(t, rec)
	if view.Result.VideoURL == "" {
		t.Fatal("video url missing")
	}

	assetRec := ta.do(t, http.MethodGet, view.Result.VideoURL, nil)
	if assetRec.Code != http.StatusOK {
		t.Fatalf("asset status = %d", assetRec.Code)
	}
	if assetRec.Body.String() != "mp4" {
		t.Fatalf("asset body = %q", assetRec.Body)
	}
	if ct := assetRec.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Fatalf("asset content type = %q", ct)
	}

	delRec := ta.do(t, http.MethodDelete, "/v1/thumbnail/video", nil)
	if decodeView(t, delRec).Result.VideoURL != "" {
		t.Fatal("video url survived removal")
	}
}

func TestDownload(t *testing.T) {
	ta := newTestApp(t)
	ta.do(t, http.MethodPut, "/v1/session/config", map[string]any{"title": "My Video!"})
	ta.do(t, http.MethodPost, "/v1/thumbnail/generate", nil)

	rec := ta.do(t, http.MethodGet, "/v1/thumbnail/download", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, `filename="my-video-`) || !strings.Contains(disposition, ".png") {
		t.Fatalf("Content-Disposition = %q", disposition)
	}
	if rec.Body.String() != "base" {
		t.Fatalf("body = %q", rec.Body)
	}
}

func TestDownloadWithoutImage(t *testing.T) {
	ta := newTestApp(t)
	rec := ta.do(t, http.MethodGet, "/v1/thumbnail/download", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestChatMessage(t *testing.T) {
	ta := newTestApp(t)
	rec := ta.do(t, http.MethodPost, "/v1/chat/messages", map[string]string{"text": "hello"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	view := decodeView(t, rec)
	if len(view.Transcript) != 2 {
		t.Fatalf("transcript = %+v", view.Transcript)
	}
	if view.Transcript[1].Text != "hi there" {
		t.Fatalf("assistant turn = %+v", view.Transcript[1])
	}
}

func TestChatMessageFallbackOnAgentFailure(t *testing.T) {
	ta := newTestApp(t)
	ta.agent.err = errors.New("transport down")
	rec := ta.do(t, http.MethodPost, "/v1/chat/messages", map[string]string{"text": "hello"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite agent failure", rec.Code)
	}
	view := decodeView(t, rec)
	if view.Transcript[1].Text != studio.ChatFallbackReply {
		t.Fatalf("assistant turn = %q, want fallback", view.Transcript[1].Text)
	}
}

func TestChatMessageRequiresText(t *testing.T) {
	ta := newTestApp(t)
	rec := ta.do(t, http.MethodPost, "/v1/chat/messages", map[string]string{"text": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestResetSession(t *testing.T) {
	ta := newTestApp(t)
	ta.do(t, http.MethodPut, "/v1/session/config", map[string]any{"title": "My Boat"})
	ta.do(t, http.MethodPost, "/v1/thumbnail/generate", nil)
	ta.do(t, http.MethodPost, "/v1/chat/messages", map[string]string{"text": "hello"})

	rec := ta.do(t, http.MethodPost, "/v1/session/reset", nil)
	view := decodeView(t, rec)
	if view.Config.Title != "" || view.Result != nil || len(view.Transcript) != 0 {
		t.Fatalf("reset left state behind: %+v", view)
	}
}

func TestAPIKeyWithoutBackingStore(t *testing.T) {
	ta := newTestApp(t)
	rec := ta.do(t, http.MethodGet, "/v1/settings/api-key", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"persistent":false`) {
		t.Fatalf("body = %s", rec.Body)
	}
	if rec := ta.do(t, http.MethodPut, "/v1/settings/api-key", map[string]string{"api_key": "k"}); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("save status = %d, want 503", rec.Code)
	}
	if rec := ta.do(t, http.MethodDelete, "/v1/settings/api-key", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("delete status = %d, want 503", rec.Code)
	}
}

func TestListAssets(t *testing.T) {
	ta := newTestApp(t)
	ta.do(t, http.MethodPost, "/v1/thumbnail/generate", nil)
	ta.do(t, http.MethodPost, "/v1/thumbnail/video", nil)

	rec := ta.do(t, http.MethodGet, "/v1/assets", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Assets []string `json:"assets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Assets) != 1 || !strings.HasPrefix(body.Assets[0], "videos/") {
		t.Fatalf("assets = %v, want one stored clip", body.Assets)
	}
}

func TestListAssetsRejectsParentPrefix(t *testing.T) {
	ta := newTestApp(t)
	rec := ta.do(t, http.MethodGet, "/v1/assets?prefix=..", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"assets"`) {
		t.Fatalf("body = %s, want no listing outside the storage root", rec.Body)
	}
}

func TestAssetRejectsTraversal(t *testing.T) {
	ta := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/assets/..%2f..%2fescape.txt", nil)
	rec := httptest.NewRecorder()
	ta.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
