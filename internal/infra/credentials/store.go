package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"thumbstudio/internal/infra"
	"thumbstudio/internal/sqlinline"
)

// ProviderGemini is the fixed name the studio stores its single secret under.
const ProviderGemini = "gemini"

// ErrUnavailable is returned when no persistence backend was configured.
var ErrUnavailable = errors.New("credentials: store unavailable")

// Store persists the user's provider secret. It is read fresh on every
// provider call so a key changed mid-session takes effect immediately.
type Store struct {
	sql infra.SQLExecutor
}

// NewStore wraps the given executor. A nil executor yields a store that
// reports ErrUnavailable on writes and an empty key on reads, which callers
// treat as "use the environment fallback".
func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Available reports whether a persistence backend is configured.
func (s *Store) Available() bool {
	return s != nil && s.sql != nil
}

// GeminiAPIKey returns the stored secret, or "" when none is stored.
func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGemini)
}

// Token returns the stored secret for a provider, or "" when absent.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	if !s.Available() {
		return "", nil
	}
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// SetGeminiAPIKey overwrites the stored secret.
func (s *Store) SetGeminiAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("credentials: gemini api key is required")
	}
	return s.upsert(ctx, ProviderGemini, key, nil)
}

// DeleteGeminiAPIKey removes the stored secret so the environment fallback
// applies again.
func (s *Store) DeleteGeminiAPIKey(ctx context.Context) error {
	if !s.Available() {
		return ErrUnavailable
	}
	_, err := s.sql.Exec(ctx, sqlinline.QDeleteIntegrationToken, ProviderGemini)
	return err
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	if !s.Available() {
		return ErrUnavailable
	}
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
