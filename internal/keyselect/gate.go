package keyselect

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// SecretSource yields the explicitly stored secret, or "" when none is stored.
type SecretSource interface {
	GeminiAPIKey(ctx context.Context) (string, error)
}

// Gate enforces the premium-access precondition: an explicitly stored secret
// satisfies it outright; otherwise the host selection capability, when
// present, must confirm or establish an active key first.
type Gate struct {
	secrets    SecretSource
	capability Capability
	logger     zerolog.Logger
}

func NewGate(secrets SecretSource, capability Capability, logger zerolog.Logger) *Gate {
	if capability == nil {
		capability = Unavailable{}
	}
	return &Gate{secrets: secrets, capability: capability, logger: logger}
}

// EnsurePremiumAccess runs before every premium capability invocation.
func (g *Gate) EnsurePremiumAccess(ctx context.Context) error {
	if g == nil {
		return nil
	}
	if g.secrets != nil {
		key, err := g.secrets.GeminiAPIKey(ctx)
		if err != nil {
			return fmt.Errorf("keyselect: read stored secret: %w", err)
		}
		if key != "" {
			return nil
		}
	}
	if !g.capability.Available() {
		return nil
	}
	active, err := g.capability.HasActiveKey(ctx)
	if err != nil {
		return err
	}
	if active {
		return nil
	}
	g.logger.Info().Msg("keyselect: no active key, starting interactive selection")
	return g.capability.Select(ctx)
}
