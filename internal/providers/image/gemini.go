package image

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"thumbstudio/internal/keyselect"
	"thumbstudio/internal/media"
	"thumbstudio/internal/providers/genai"
)

// GenerateRequest describes one thumbnail image rendering.
type GenerateRequest struct {
	Prompt         string
	AspectRatio    string
	Resolution     string
	HighCapability bool
	Seed           *int32
	References     []media.Part
}

// Generator renders and edits thumbnail images.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (media.Part, error)
	Edit(ctx context.Context, source media.Part, instruction string) (media.Part, error)
}

// Gemini renders images through the Gemini image models. The high-capability
// path is premium gated and re-resolves the client afterwards, because the
// selection flow may have just changed the active credential.
type Gemini struct {
	clients   *genai.Factory
	gate      *keyselect.Gate
	model     string
	proModel  string
	editModel string
	logger    zerolog.Logger
}

func NewGemini(clients *genai.Factory, gate *keyselect.Gate, model, proModel, editModel string, logger zerolog.Logger) *Gemini {
	return &Gemini{
		clients:   clients,
		gate:      gate,
		model:     model,
		proModel:  proModel,
		editModel: editModel,
		logger:    logger,
	}
}

func (g *Gemini) Generate(ctx context.Context, req GenerateRequest) (media.Part, error) {
	model := g.model
	imageSize := ""
	if req.HighCapability {
		if err := g.gate.EnsurePremiumAccess(ctx); err != nil {
			return media.Part{}, fmt.Errorf("image generation: %w", err)
		}
		model = g.proModel
		// The standard tier rejects an image size; only the pro model takes it.
		imageSize = req.Resolution
	}
	client, err := g.clients.Resolve(ctx)
	if err != nil {
		return media.Part{}, err
	}
	part, err := client.GenerateImage(ctx, genai.ImageRequest{
		Model:       model,
		Prompt:      req.Prompt,
		References:  req.References,
		AspectRatio: req.AspectRatio,
		ImageSize:   imageSize,
		Seed:        req.Seed,
	})
	if err != nil {
		return media.Part{}, fmt.Errorf("image generation: %w", err)
	}
	g.logger.Debug().Str("model", model).Int("references", len(req.References)).Msg("image: generated")
	return part, nil
}

func (g *Gemini) Edit(ctx context.Context, source media.Part, instruction string) (media.Part, error) {
	client, err := g.clients.Resolve(ctx)
	if err != nil {
		return media.Part{}, err
	}
	part, err := client.EditImage(ctx, genai.EditRequest{
		Model:       g.editModel,
		Source:      source,
		Instruction: instruction,
	})
	if err != nil {
		return media.Part{}, fmt.Errorf("image edit: %w", err)
	}
	g.logger.Debug().Str("model", g.editModel).Msg("image: edited")
	return part, nil
}

var _ Generator = (*Gemini)(nil)
