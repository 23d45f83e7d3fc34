package video

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"thumbstudio/internal/keyselect"
	"thumbstudio/internal/media"
	"thumbstudio/internal/providers/genai"
)

// GenerateRequest describes one clip. Source, when present, seeds the
// animation with the current thumbnail; otherwise the job is text-only.
type GenerateRequest struct {
	Prompt      string
	Source      *media.Part
	AspectRatio string
}

// Asset is a completed clip ready for local rendering.
type Asset struct {
	Data     []byte
	MIMEType string
}

// Generator produces short video clips.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Asset, error)
}

// Veo submits a long-running Veo job and polls it to completion on a fixed
// interval. Polling is bounded by pollTimeout; a zero timeout polls until the
// remote operation terminates or the context is cancelled.
type Veo struct {
	clients      *genai.Factory
	gate         *keyselect.Gate
	model        string
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       zerolog.Logger
}

func NewVeo(clients *genai.Factory, gate *keyselect.Gate, model string, pollInterval, pollTimeout time.Duration, logger zerolog.Logger) *Veo {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &Veo{
		clients:      clients,
		gate:         gate,
		model:        model,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		logger:       logger,
	}
}

func (v *Veo) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	if err := v.gate.EnsurePremiumAccess(ctx); err != nil {
		return nil, fmt.Errorf("video generation: %w", err)
	}
	// Resolve after the gate: selection may have rotated the credential.
	client, err := v.clients.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	name, err := client.StartVideo(ctx, genai.VideoRequest{
		Model:       v.model,
		Prompt:      req.Prompt,
		Image:       req.Source,
		AspectRatio: req.AspectRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("video generation: %w", err)
	}

	op, err := v.poll(ctx, client, name)
	if err != nil {
		return nil, err
	}
	if op.Error != "" {
		return nil, fmt.Errorf("video generation failed: %s", op.Error)
	}
	if op.VideoURI == "" {
		return nil, genai.ErrNoVideoReference
	}
	data, mime, err := client.DownloadVideo(ctx, op.VideoURI)
	if err != nil {
		return nil, fmt.Errorf("video generation: %w", err)
	}
	v.logger.Info().Str("operation", name).Int("bytes", len(data)).Msg("video: clip ready")
	return &Asset{Data: data, MIMEType: mime}, nil
}

func (v *Veo) poll(ctx context.Context, client *genai.Client, name string) (genai.VideoOperation, error) {
	if v.pollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.pollTimeout)
		defer cancel()
	}
	ticker := time.NewTicker(v.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return genai.VideoOperation{}, fmt.Errorf("video generation: polling stopped: %w", ctx.Err())
		case <-ticker.C:
		}
		op, err := client.QueryVideoOperation(ctx, name)
		if err != nil {
			return genai.VideoOperation{}, fmt.Errorf("video generation: poll: %w", err)
		}
		if op.Done {
			return op, nil
		}
		v.logger.Debug().Str("operation", name).Msg("video: still rendering")
	}
}

var _ Generator = (*Veo)(nil)
