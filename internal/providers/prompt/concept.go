package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"thumbstudio/internal/media"
	"thumbstudio/internal/providers/genai"
	"thumbstudio/internal/thumbnail"
)

// conceptSchema constrains the concept stage to structured JSON output whose
// final_prompt field is consumed directly by the image stage.
var conceptSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "background": {"type": "STRING"},
    "subject": {"type": "STRING"},
    "overlay_text": {"type": "STRING"},
    "style": {"type": "STRING"},
    "palette": {"type": "STRING"},
    "aspect_ratio": {"type": "STRING"},
    "final_prompt": {"type": "STRING"}
  },
  "required": ["background", "subject", "overlay_text", "style", "palette", "aspect_ratio", "final_prompt"]
}`)

// Generator runs the concept stage of the thumbnail pipeline.
type Generator struct {
	clients        *genai.Factory
	model          string
	reasoningModel string
	logger         zerolog.Logger
}

func NewGenerator(clients *genai.Factory, model, reasoningModel string, logger zerolog.Logger) *Generator {
	return &Generator{
		clients:        clients,
		model:          model,
		reasoningModel: reasoningModel,
		logger:         logger,
	}
}

// Generate produces the structured concept for the given configuration. The
// model tier is selected by the deep-reasoning flag, and an attached reference
// thumbnail redirects the model to imitate its look.
func (g *Generator) Generate(ctx context.Context, cfg thumbnail.Config) (*thumbnail.Concept, error) {
	model := g.model
	if cfg.DeepReasoning {
		model = g.reasoningModel
	}
	instruction := BuildConceptInstruction(cfg)

	var parts []media.Part
	if cfg.ReferenceImage != nil {
		parts = append(parts, *cfg.ReferenceImage)
	}

	client, err := g.clients.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := client.GenerateText(ctx, genai.TextRequest{
		Model:          model,
		Instruction:    instruction,
		Parts:          parts,
		ResponseSchema: conceptSchema,
		Temperature:    0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("concept generation: %w", err)
	}
	concept, err := parseConcept(raw)
	if err != nil {
		return nil, fmt.Errorf("concept generation: %w", err)
	}
	g.logger.Debug().Str("model", model).Msg("prompt: concept generated")
	return concept, nil
}

// BuildConceptInstruction serializes the configuration into one natural
// language instruction. Binary attachments appear as presence markers only,
// never as raw bytes, and the trailing rule set is not user-toggleable.
func BuildConceptInstruction(cfg thumbnail.Config) string {
	titleCaser := cases.Title(language.English)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert thumbnail art director. Design a thumbnail concept for the %s platform.\n\n", titleCaser.String(string(cfg.Platform)))

	fmt.Fprintf(&b, "Video title: %q\n", cfg.Title)
	if strings.TrimSpace(cfg.Hook) != "" {
		fmt.Fprintf(&b, "Hook: %q\n", cfg.Hook)
	}
	fmt.Fprintf(&b, "Style preset: %s\n", cfg.Style)
	fmt.Fprintf(&b, "Color palette: %s\n", cfg.Palette)
	fmt.Fprintf(&b, "Font style: %s\n", cfg.Font)
	fmt.Fprintf(&b, "Subject placement: %s\n", cfg.Placement)
	fmt.Fprintf(&b, "Aspect ratio: %s\n", cfg.AspectRatio)
	fmt.Fprintf(&b, "Face image: %s\n", presence(cfg.FaceImage))
	fmt.Fprintf(&b, "Brand logo: %s\n", presence(cfg.LogoImage))
	fmt.Fprintf(&b, "Reference thumbnail: %s\n", presence(cfg.ReferenceImage))
	if cfg.UseStockAssets {
		b.WriteString("Stock assets: allowed, compose with generic stock-style props where helpful\n")
	}
	if strings.TrimSpace(cfg.BadgeText) != "" {
		fmt.Fprintf(&b, "Call-to-action badge: %q\n", cfg.BadgeText)
	}

	b.WriteString("\nRules, all mandatory:\n")
	if strings.TrimSpace(cfg.OverlayText) == "" && cfg.AutoOverlayText {
		b.WriteString("- Invent a short, catchy overlay title of at most six words and put it in overlay_text.\n")
	} else {
		fmt.Fprintf(&b, "- Use this overlay text verbatim in overlay_text: %q\n", cfg.OverlayText)
	}
	fmt.Fprintf(&b, "- %s\n", paletteTextRule(cfg.Palette))
	b.WriteString("- Overlay text must be bold with a thick outline and a strong drop shadow or glow.\n")
	fmt.Fprintf(&b, "- Place %s behind the overlay text so it stays readable.\n", styleBackingShape(cfg.Style))

	if cfg.ReferenceImage != nil {
		b.WriteString("\nA reference thumbnail image is attached. Imitate its visual style, color palette, and composition, but replace its subject and text with the subject and overlay text described above.\n")
	}

	b.WriteString("\nRespond with JSON only. The final_prompt field must merge everything above into one complete image-generation prompt.")
	return b.String()
}

// paletteTextRule mandates overlay text coloring by inverting the palette's
// brightness: dark palettes demand light text and light palettes dark text.
func paletteTextRule(p thumbnail.Palette) string {
	switch p {
	case thumbnail.PaletteDark, thumbnail.PaletteNeon:
		return "Overlay text color must be light or neon so it pops against the dark palette."
	case thumbnail.PalettePastel, thumbnail.PaletteEarthy:
		return "Overlay text color must be dark or black so it pops against the light palette."
	default:
		return "Overlay text color must be bright white with a heavy dark outline for maximum contrast."
	}
}

func styleBackingShape(s thumbnail.StylePreset) string {
	switch s {
	case thumbnail.StyleMinimal:
		return "a solid color box or clean banner"
	case thumbnail.StyleCinematic:
		return "a vignette or shadow overlay"
	case thumbnail.StyleBold, thumbnail.StyleGaming:
		return "a dynamic brush-stroke or glowing panel"
	default:
		return "a soft shadow box"
	}
}

func presence(p *media.Part) string {
	if p == nil {
		return "none"
	}
	return "attached"
}
