package studio

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"thumbstudio/internal/media"
	"thumbstudio/internal/providers/chat"
	"thumbstudio/internal/providers/image"
	"thumbstudio/internal/providers/video"
	"thumbstudio/internal/storage"
	"thumbstudio/internal/thumbnail"
)

// ChatFallbackReply is appended verbatim when the assistant transport fails.
// The optimistic user message is never rolled back.
const ChatFallbackReply = "Sorry, something went wrong while answering. Please try again."

// ConceptGenerator runs the concept stage of the pipeline.
type ConceptGenerator interface {
	Generate(ctx context.Context, cfg thumbnail.Config) (*thumbnail.Concept, error)
}

// Studio sequences the four flows against the provider layer and records
// every outcome in the session state. Flows are strictly sequential inside,
// independent of one another outside.
type Studio struct {
	state    *State
	concepts ConceptGenerator
	images   image.Generator
	videos   video.Generator
	agent    chat.Agent
	store    *storage.FileStore
	logger   zerolog.Logger
}

func New(state *State, concepts ConceptGenerator, images image.Generator, videos video.Generator, agent chat.Agent, store *storage.FileStore, logger zerolog.Logger) *Studio {
	return &Studio{
		state:    state,
		concepts: concepts,
		images:   images,
		videos:   videos,
		agent:    agent,
		store:    store,
		logger:   logger,
	}
}

// State exposes the session container for snapshotting and config updates.
func (s *Studio) State() *State {
	return s.state
}

// Generate runs the two-stage pipeline: concept, then image. Success replaces
// the whole result record; failure preserves the previous one.
func (s *Studio) Generate(ctx context.Context) error {
	s.state.BeginFlow(FlowGenerate)
	defer s.state.EndFlow(FlowGenerate)

	cfg := s.state.Config()
	concept, err := s.concepts.Generate(ctx, cfg)
	if err != nil {
		s.state.Fail(err.Error())
		return err
	}

	var refs []media.Part
	for _, attachment := range []*media.Part{cfg.FaceImage, cfg.LogoImage, cfg.ReferenceImage} {
		if attachment != nil {
			refs = append(refs, *attachment)
		}
	}
	part, err := s.images.Generate(ctx, image.GenerateRequest{
		Prompt:         concept.FinalPrompt,
		AspectRatio:    cfg.AspectRatio,
		Resolution:     string(cfg.Resolution),
		HighCapability: cfg.HighCapability,
		Seed:           cfg.Seed,
		References:     refs,
	})
	if err != nil {
		s.state.Fail(err.Error())
		return err
	}

	s.state.ReplaceResult(&thumbnail.Result{
		BaseImage: part.DataURL(),
		Concept:   concept,
	})
	s.logger.Info().Str("aspect_ratio", cfg.AspectRatio).Bool("high_capability", cfg.HighCapability).Msg("studio: thumbnail generated")
	return nil
}

// Refine applies one instruction to the currently displayed image: the
// refined one when present, the base otherwise.
func (s *Studio) Refine(ctx context.Context, instruction string) error {
	s.state.BeginFlow(FlowRefine)
	defer s.state.EndFlow(FlowRefine)

	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		err := fmt.Errorf("refinement instruction is required")
		s.state.Fail(err.Error())
		return err
	}
	source, err := s.currentImagePart()
	if err != nil {
		s.state.Fail(err.Error())
		return err
	}
	edited, err := s.images.Edit(ctx, source, instruction)
	if err != nil {
		s.state.Fail(err.Error())
		return err
	}
	s.state.ApplyRefinement(edited.DataURL(), instruction)
	s.logger.Info().Msg("studio: thumbnail refined")
	return nil
}

// Video animates the currently displayed image into a short clip and attaches
// it to the existing result without touching the images.
func (s *Studio) Video(ctx context.Context) error {
	s.state.BeginFlow(FlowVideo)
	defer s.state.EndFlow(FlowVideo)

	cfg := s.state.Config()
	source, err := s.currentImagePart()
	if err != nil {
		s.state.Fail(err.Error())
		return err
	}
	asset, err := s.videos.Generate(ctx, video.GenerateRequest{
		Prompt:      buildVideoPrompt(cfg),
		Source:      &source,
		AspectRatio: thumbnail.VideoAspectRatio(cfg.AspectRatio),
	})
	if err != nil {
		s.state.Fail(err.Error())
		return err
	}
	key, err := s.store.Write(ctx, fmt.Sprintf("videos/%s.mp4", uuid.NewString()), asset.Data)
	if err != nil {
		s.state.Fail(err.Error())
		return err
	}
	s.state.AttachVideo("/assets/" + key)
	s.logger.Info().Str("key", key).Msg("studio: video attached")
	return nil
}

// ChatTurn appends the user message optimistically, then the assistant reply
// or the fixed fallback. The transcript only ever grows and a failed send is
// absorbed into the fallback turn, so there is no error to report.
func (s *Studio) ChatTurn(ctx context.Context, text string) {
	s.state.BeginFlow(FlowChat)
	defer s.state.EndFlow(FlowChat)

	history := s.state.Transcript()
	s.state.AppendMessage(thumbnail.RoleUser, text)
	reply, err := s.agent.Send(ctx, history, text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("studio: chat turn failed")
		s.state.AppendMessage(thumbnail.RoleAssistant, ChatFallbackReply)
		return
	}
	s.state.AppendMessage(thumbnail.RoleAssistant, reply)
}

func (s *Studio) currentImagePart() (media.Part, error) {
	handle := s.state.CurrentImage()
	if strings.TrimSpace(handle) == "" {
		return media.Part{}, fmt.Errorf("no generated image yet")
	}
	return media.PartFromDataURL(handle)
}

func buildVideoPrompt(cfg thumbnail.Config) string {
	var b strings.Builder
	b.WriteString("Animate this thumbnail into a short, punchy clip with subtle camera motion and lively energy.")
	if title := strings.TrimSpace(cfg.Title); title != "" {
		fmt.Fprintf(&b, " The video it promotes is titled %q.", title)
	}
	if hook := strings.TrimSpace(cfg.Hook); hook != "" {
		fmt.Fprintf(&b, " Lean into this hook: %s.", hook)
	}
	return b.String()
}
