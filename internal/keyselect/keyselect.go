package keyselect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Capability models the host environment's interactive key-selection flow.
// Only a specific hosting setup provides it, so the concrete variant is chosen
// at startup by probing rather than assumed.
type Capability interface {
	// Available reports whether interactive selection can be offered at all.
	Available() bool
	// HasActiveKey reports whether the host already holds a selected key.
	HasActiveKey(ctx context.Context) (bool, error)
	// Select runs the interactive selection flow and blocks until it completes.
	Select(ctx context.Context) error
}

// Unavailable is the no-op variant used when no broker was configured.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) HasActiveKey(context.Context) (bool, error) { return false, nil }
func (Unavailable) Select(context.Context) error {
	return fmt.Errorf("keyselect: no selection capability available")
}

// Broker talks to a host-provided key broker over HTTP.
type Broker struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

const brokerDefaultTimeout = 120 * time.Second

// Probe checks whether a key broker is reachable at baseURL and returns the
// matching variant. An empty URL or a failed probe yields the no-op variant.
func Probe(baseURL string, client *http.Client, logger zerolog.Logger) Capability {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return Unavailable{}
	}
	if client == nil {
		client = &http.Client{Timeout: brokerDefaultTimeout}
	}
	b := &Broker{baseURL: baseURL, client: client, logger: logger}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := b.HasActiveKey(ctx); err != nil {
		logger.Warn().Err(err).Str("broker", baseURL).Msg("keyselect: broker unreachable, selection disabled")
		return Unavailable{}
	}
	logger.Info().Str("broker", baseURL).Msg("keyselect: selection capability detected")
	return b
}

func (b *Broker) Available() bool { return true }

type brokerStatus struct {
	Active bool `json:"active"`
}

func (b *Broker) HasActiveKey(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/v1/key/status", nil)
	if err != nil {
		return false, fmt.Errorf("keyselect: create status request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("keyselect: query status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return false, fmt.Errorf("keyselect: status %d", resp.StatusCode)
	}
	var status brokerStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, fmt.Errorf("keyselect: decode status: %w", err)
	}
	return status.Active, nil
}

// Select asks the broker to run its interactive flow. The broker holds the
// request open until the user finishes selecting a key.
func (b *Broker) Select(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/key/select", nil)
	if err != nil {
		return fmt.Errorf("keyselect: create select request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("keyselect: run selection: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("keyselect: selection failed with status %d", resp.StatusCode)
	}
	b.logger.Info().Msg("keyselect: selection completed")
	return nil
}
