package thumbnail

import "strings"

// Concept is the structured intermediate artifact produced before image
// synthesis. FinalPrompt is the single merged instruction consumed verbatim by
// the image stage.
type Concept struct {
	Background  string `json:"background"`
	Subject     string `json:"subject"`
	OverlayText string `json:"overlay_text"`
	Style       string `json:"style"`
	Palette     string `json:"palette"`
	AspectRatio string `json:"aspect_ratio"`
	FinalPrompt string `json:"final_prompt"`
}

// Result holds the media produced during the current generation cycle. Image
// handles are data URLs renderable directly by a client.
type Result struct {
	BaseImage       string   `json:"base_image"`
	RefinedImage    string   `json:"refined_image,omitempty"`
	LastInstruction string   `json:"last_instruction,omitempty"`
	Concept         *Concept `json:"concept,omitempty"`
	VideoURL        string   `json:"video_url,omitempty"`
}

// CurrentImage returns the handle every derived action must operate on: the
// refined image once present, the base image otherwise.
func (r *Result) CurrentImage() string {
	if r == nil {
		return ""
	}
	if strings.TrimSpace(r.RefinedImage) != "" {
		return r.RefinedImage
	}
	return r.BaseImage
}

// Chat roles. The transcript is append-only for the lifetime of a session.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
