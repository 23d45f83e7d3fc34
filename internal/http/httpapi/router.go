package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"thumbstudio/internal/http/handlers"
	"thumbstudio/internal/infra"
	"thumbstudio/internal/middleware"
)

func NewRouter(app *handlers.App, cfg infra.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(cfg.AllowedOrigins),
	)
	if cfg.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/session", func(r chi.Router) {
		r.Get("/", app.Session)
		r.Put("/config", app.UpdateConfig)
		r.Post("/reset", app.ResetSession)
		r.Put("/instruction", app.SetInstruction)
		r.Post("/attachments/{kind}", app.UploadAttachment)
		r.Delete("/attachments/{kind}", app.RemoveAttachment)
	})

	r.Route("/v1/thumbnail", func(r chi.Router) {
		r.Post("/generate", app.Generate)
		r.Post("/refine", app.Refine)
		r.Post("/video", app.Animate)
		r.Delete("/video", app.RemoveVideo)
		r.Get("/download", app.Download)
	})

	r.Post("/v1/chat/messages", app.ChatMessage)

	r.Route("/v1/settings/api-key", func(r chi.Router) {
		r.Get("/", app.APIKeyStatus)
		r.Put("/", app.SaveAPIKey)
		r.Delete("/", app.DeleteAPIKey)
	})

	r.Get("/v1/assets", app.ListAssets)
	r.Get("/assets/*", app.Asset)

	return r
}
