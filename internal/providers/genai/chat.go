package genai

import (
	"context"
	"fmt"
	"net/url"
)

// ChatTurn is one prior exchange replayed to keep the remote session stateful.
type ChatTurn struct {
	Role string
	Text string
}

// ChatRequest sends one user turn on top of the accumulated history.
type ChatRequest struct {
	Model   string
	System  string
	History []ChatTurn
	Message string
}

// Chat awaits one assistant turn and returns its text, possibly empty.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	contents := make([]geminiContent, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := "user"
		if turn.Role != "user" {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: turn.Text}}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: req.Message}}})

	payload := geminiGenerateContentRequest{
		Contents:         contents,
		GenerationConfig: &geminiGenerationConfig{CandidateCount: 1},
	}
	if req.System != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(req.Model))
	if err := c.invoke(ctx, path, payload, &response); err != nil {
		return "", err
	}
	return firstText(response), nil
}
