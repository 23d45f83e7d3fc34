package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"thumbstudio/internal/providers/genai"
	"thumbstudio/internal/thumbnail"
)

// DefaultSystemPrompt frames the assistant as the studio helper.
const DefaultSystemPrompt = "You are a friendly creative assistant inside a thumbnail design studio. " +
	"Help the user brainstorm titles, hooks, visual ideas, and platform best practices. Keep answers short and practical."

// Agent answers one conversational turn at a fixed high-capability model,
// replaying the accumulated transcript so the exchange stays stateful.
type Agent interface {
	Send(ctx context.Context, history []thumbnail.ChatMessage, text string) (string, error)
}

type Session struct {
	clients *genai.Factory
	model   string
	system  string
	logger  zerolog.Logger
}

func NewSession(clients *genai.Factory, model, system string, logger zerolog.Logger) *Session {
	if system == "" {
		system = DefaultSystemPrompt
	}
	return &Session{clients: clients, model: model, system: system, logger: logger}
}

func (s *Session) Send(ctx context.Context, history []thumbnail.ChatMessage, text string) (string, error) {
	client, err := s.clients.Resolve(ctx)
	if err != nil {
		return "", err
	}
	turns := make([]genai.ChatTurn, 0, len(history))
	for _, msg := range history {
		turns = append(turns, genai.ChatTurn{Role: msg.Role, Text: msg.Text})
	}
	reply, err := client.Chat(ctx, genai.ChatRequest{
		Model:   s.model,
		System:  s.system,
		History: turns,
		Message: text,
	})
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	s.logger.Debug().Int("history", len(history)).Msg("chat: turn completed")
	return reply, nil
}

var _ Agent = (*Session)(nil)
