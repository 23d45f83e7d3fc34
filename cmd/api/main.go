package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"thumbstudio/internal/http/handlers"
	httpapi "thumbstudio/internal/http/httpapi"
	"thumbstudio/internal/infra"
	"thumbstudio/internal/infra/credentials"
	"thumbstudio/internal/keyselect"
	"thumbstudio/internal/providers/chat"
	"thumbstudio/internal/providers/genai"
	"thumbstudio/internal/providers/image"
	"thumbstudio/internal/providers/prompt"
	"thumbstudio/internal/providers/video"
	"thumbstudio/internal/storage"
	"thumbstudio/internal/studio"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// DB pool is optional. Without one the credential store is unavailable
	// and the GEMINI_API_KEY env fallback is the only credential source.
	var sql infra.SQLExecutor
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		sql = infra.NewSQLRunner(dbpool, logger)
	} else {
		logger.Warn().Msg("DATABASE_URL not set, api keys will not be persisted")
	}
	creds := credentials.NewStore(sql)

	httpClient := &http.Client{}
	capability := keyselect.Probe(cfg.KeyBrokerURL, httpClient, logger)
	gate := keyselect.NewGate(creds, capability, logger)

	clients := genai.NewFactory(creds, cfg.GeminiAPIKey, cfg.GeminiBaseURL, httpClient, logger)

	concepts := prompt.NewGenerator(clients, cfg.ConceptModel, cfg.ReasoningModel, logger)
	images := image.NewGemini(clients, gate, cfg.ImageModel, cfg.ImageProModel, cfg.EditModel, logger)
	videos := video.NewVeo(clients, gate, cfg.VideoModel, cfg.VideoPollInterval, cfg.VideoPollTimeout, logger)
	agent := chat.NewSession(clients, cfg.ChatModel, chat.DefaultSystemPrompt, logger)

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare storage")
	}

	st := studio.New(studio.NewState(), concepts, images, videos, agent, store, logger)

	app := handlers.NewApp(st, creds, store, logger)
	router := httpapi.NewRouter(app, *cfg)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
