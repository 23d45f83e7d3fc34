package thumbnail

import (
	"fmt"
	"strings"

	"thumbstudio/internal/media"
)

// Platform identifies the destination surface a thumbnail is designed for.
type Platform string

const (
	PlatformYouTube Platform = "youtube"
	PlatformShorts  Platform = "shorts"
	PlatformReels   Platform = "reels"
)

// StylePreset steers the overall art direction of the generated image.
type StylePreset string

const (
	StyleMinimal   StylePreset = "minimal"
	StyleCinematic StylePreset = "cinematic"
	StyleBold      StylePreset = "bold"
	StyleGaming    StylePreset = "gaming"
	StyleRealistic StylePreset = "realistic"
)

// Palette selects the dominant color family of the composition.
type Palette string

const (
	PaletteVibrant Palette = "vibrant"
	PaletteDark    Palette = "dark"
	PalettePastel  Palette = "pastel"
	PaletteNeon    Palette = "neon"
	PaletteEarthy  Palette = "earthy"
)

// FontStyle guides the typography of overlay text.
type FontStyle string

const (
	FontImpact      FontStyle = "impact"
	FontModern      FontStyle = "modern"
	FontHandwritten FontStyle = "handwritten"
	FontFuturistic  FontStyle = "futuristic"
)

// Placement positions the primary subject inside the frame.
type Placement string

const (
	PlacementLeft   Placement = "left"
	PlacementRight  Placement = "right"
	PlacementCenter Placement = "center"
)

// Resolution is the output size tier accepted by the high-capability image model.
type Resolution string

const (
	Resolution1K Resolution = "1K"
	Resolution2K Resolution = "2K"
	Resolution4K Resolution = "4K"
)

const (
	DefaultAspectRatio = "16:9"
	DefaultResolution  = Resolution1K
)

// aspectRatios is the full set accepted by the image models.
var aspectRatios = map[string]struct{}{
	"16:9": {},
	"9:16": {},
	"1:1":  {},
	"4:3":  {},
	"3:4":  {},
	"3:2":  {},
	"2:3":  {},
	"21:9": {},
}

// Config captures every user-tunable parameter for one thumbnail. Binary
// attachments travel as encoded inline parts so the config can be round-tripped
// through the JSON API without touching disk.
type Config struct {
	Title           string      `json:"title"`
	Hook            string      `json:"hook"`
	Platform        Platform    `json:"platform"`
	OverlayText     string      `json:"overlay_text"`
	AutoOverlayText bool        `json:"auto_overlay_text"`
	Style           StylePreset `json:"style"`
	Palette         Palette     `json:"palette"`
	Font            FontStyle   `json:"font"`
	FaceImage       *media.Part `json:"face_image,omitempty"`
	UseStockAssets  bool        `json:"use_stock_assets"`
	Placement       Placement   `json:"placement"`
	AspectRatio     string      `json:"aspect_ratio"`
	LogoImage       *media.Part `json:"logo_image,omitempty"`
	ReferenceImage  *media.Part `json:"reference_image,omitempty"`
	BadgeText       string      `json:"badge_text"`
	Seed            *int32      `json:"seed,omitempty"`
	Resolution      Resolution  `json:"resolution"`
	HighCapability  bool        `json:"high_capability"`
	DeepReasoning   bool        `json:"deep_reasoning"`
}

// DefaultConfig returns the configuration every session starts from.
func DefaultConfig() Config {
	return Config{
		Platform:        PlatformYouTube,
		AutoOverlayText: true,
		Style:           StyleBold,
		Palette:         PaletteVibrant,
		Font:            FontImpact,
		Placement:       PlacementRight,
		AspectRatio:     DefaultAspectRatio,
		Resolution:      DefaultResolution,
	}
}

// Normalize fills omitted enumerated fields with session defaults.
func (c *Config) Normalize() {
	if c == nil {
		return
	}
	def := DefaultConfig()
	if c.Platform == "" {
		c.Platform = def.Platform
	}
	if c.Style == "" {
		c.Style = def.Style
	}
	if c.Palette == "" {
		c.Palette = def.Palette
	}
	if c.Font == "" {
		c.Font = def.Font
	}
	if c.Placement == "" {
		c.Placement = def.Placement
	}
	if strings.TrimSpace(c.AspectRatio) == "" {
		c.AspectRatio = def.AspectRatio
	}
	if c.Resolution == "" {
		c.Resolution = def.Resolution
	}
}

// Validate checks the enumerated fields before the config reaches a provider.
func (c Config) Validate() error {
	switch c.Platform {
	case PlatformYouTube, PlatformShorts, PlatformReels:
	default:
		return fmt.Errorf("platform must be one of youtube, shorts, reels")
	}
	switch c.Style {
	case StyleMinimal, StyleCinematic, StyleBold, StyleGaming, StyleRealistic:
	default:
		return fmt.Errorf("style must be one of minimal, cinematic, bold, gaming, realistic")
	}
	switch c.Palette {
	case PaletteVibrant, PaletteDark, PalettePastel, PaletteNeon, PaletteEarthy:
	default:
		return fmt.Errorf("palette must be one of vibrant, dark, pastel, neon, earthy")
	}
	switch c.Font {
	case FontImpact, FontModern, FontHandwritten, FontFuturistic:
	default:
		return fmt.Errorf("font must be one of impact, modern, handwritten, futuristic")
	}
	switch c.Placement {
	case PlacementLeft, PlacementRight, PlacementCenter:
	default:
		return fmt.Errorf("placement must be one of left, right, center")
	}
	if _, ok := aspectRatios[c.AspectRatio]; !ok {
		return fmt.Errorf("aspect_ratio must be one of 16:9, 9:16, 1:1, 4:3, 3:4, 3:2, 2:3, 21:9")
	}
	switch c.Resolution {
	case Resolution1K, Resolution2K, Resolution4K:
	default:
		return fmt.Errorf("resolution must be one of 1K, 2K, 4K")
	}
	return nil
}

// VideoAspectRatio narrows the configured image aspect ratio onto the two
// ratios the video model accepts. Portrait-leaning ratios collapse to 9:16,
// everything else to 16:9.
func VideoAspectRatio(configured string) string {
	switch strings.TrimSpace(configured) {
	case "9:16", "3:4":
		return "9:16"
	default:
		return "16:9"
	}
}
