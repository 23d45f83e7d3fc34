package genai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// SecretSource yields the explicitly stored secret, or "" when none is stored.
type SecretSource interface {
	GeminiAPIKey(ctx context.Context) (string, error)
}

// Factory resolves a fresh client before every capability invocation. The
// stored secret wins over the environment fallback, and is re-read every time
// because it may change between calls within the same session.
type Factory struct {
	secrets     SecretSource
	fallbackKey string
	baseURL     string
	httpClient  *http.Client
	logger      zerolog.Logger
}

func NewFactory(secrets SecretSource, fallbackKey, baseURL string, httpClient *http.Client, logger zerolog.Logger) *Factory {
	return &Factory{
		secrets:     secrets,
		fallbackKey: fallbackKey,
		baseURL:     baseURL,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// Resolve builds a client configured with the currently active credential.
func (f *Factory) Resolve(ctx context.Context) (*Client, error) {
	key := f.fallbackKey
	if f.secrets != nil {
		stored, err := f.secrets.GeminiAPIKey(ctx)
		if err != nil {
			return nil, fmt.Errorf("genai: resolve credential: %w", err)
		}
		if stored != "" {
			key = stored
		}
	}
	return NewClient(Options{
		APIKey:     key,
		BaseURL:    f.baseURL,
		HTTPClient: f.httpClient,
		Logger:     &f.logger,
	}), nil
}
