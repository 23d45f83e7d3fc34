package studio

import (
	"sync"

	"thumbstudio/internal/thumbnail"
)

// Flow names one of the four user-triggered asynchronous operations. Each has
// its own busy flag so flows never block one another.
type Flow string

const (
	FlowGenerate Flow = "generate"
	FlowRefine   Flow = "refine"
	FlowVideo    Flow = "video"
	FlowChat     Flow = "chat"
)

// BusyFlags mirrors the in-flight state of every flow.
type BusyFlags struct {
	Generate bool `json:"generate"`
	Refine   bool `json:"refine"`
	Video    bool `json:"video"`
	Chat     bool `json:"chat"`
}

// View is an immutable snapshot of the session for rendering.
type View struct {
	Config             thumbnail.Config        `json:"config"`
	Result             *thumbnail.Result       `json:"result,omitempty"`
	Busy               BusyFlags               `json:"busy"`
	Error              string                  `json:"error,omitempty"`
	PendingInstruction string                  `json:"pending_instruction,omitempty"`
	Transcript         []thumbnail.ChatMessage `json:"transcript"`
}

// State is the session's single source of truth: configuration, the current
// result record, busy flags, the shared error slot, and the chat transcript.
// All transitions run under one mutex; flows triggered concurrently interleave
// at transition granularity with last-write-wins semantics on the result.
type State struct {
	mu                 sync.Mutex
	config             thumbnail.Config
	result             *thumbnail.Result
	busy               map[Flow]bool
	errText            string
	pendingInstruction string
	transcript         []thumbnail.ChatMessage
}

func NewState() *State {
	return &State{
		config: thumbnail.DefaultConfig(),
		busy:   make(map[Flow]bool),
	}
}

// Snapshot returns a render-ready copy of the session.
func (s *State) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := View{
		Config: s.config,
		Busy: BusyFlags{
			Generate: s.busy[FlowGenerate],
			Refine:   s.busy[FlowRefine],
			Video:    s.busy[FlowVideo],
			Chat:     s.busy[FlowChat],
		},
		Error:              s.errText,
		PendingInstruction: s.pendingInstruction,
		Transcript:         append([]thumbnail.ChatMessage{}, s.transcript...),
	}
	if s.result != nil {
		result := *s.result
		view.Result = &result
	}
	return view
}

// Config returns the current configuration by value.
func (s *State) Config() thumbnail.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// SetConfig replaces the configuration. Caller normalizes and validates first.
func (s *State) SetConfig(cfg thumbnail.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

// BeginFlow marks a flow in-flight and clears the shared error slot.
func (s *State) BeginFlow(f Flow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy[f] = true
	s.errText = ""
}

// EndFlow clears a flow's busy flag. It runs deferred in every flow so the
// busy indicator never sticks, whatever the exit path.
func (s *State) EndFlow(f Flow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy[f] = false
}

// Fail places a human-readable message in the shared error slot.
func (s *State) Fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errText = msg
}

// ReplaceResult swaps in a fresh result record wholesale, discarding any prior
// refinement and video.
func (s *State) ReplaceResult(result *thumbnail.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
}

// ApplyRefinement records a refined image together with the instruction that
// produced it, and clears the pending-instruction input.
func (s *State) ApplyRefinement(handle, instruction string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return
	}
	s.result.RefinedImage = handle
	s.result.LastInstruction = instruction
	s.pendingInstruction = ""
}

// AttachVideo sets the video reference without touching the images.
func (s *State) AttachVideo(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return
	}
	s.result.VideoURL = url
}

// ClearVideo removes the video reference, leaving the images intact.
func (s *State) ClearVideo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		s.result.VideoURL = ""
	}
}

// CurrentImage returns the handle derived actions operate on.
func (s *State) CurrentImage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.CurrentImage()
}

// SetPendingInstruction stores the refine input as the user types it.
func (s *State) SetPendingInstruction(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingInstruction = text
}

// AppendMessage appends one turn to the append-only transcript.
func (s *State) AppendMessage(role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, thumbnail.ChatMessage{Role: role, Text: text})
}

// Transcript returns a copy of the conversation so far.
func (s *State) Transcript() []thumbnail.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]thumbnail.ChatMessage(nil), s.transcript...)
}

// Reset restores session-start defaults: default config, no result, empty
// transcript. Busy flags of in-flight flows are left alone.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = thumbnail.DefaultConfig()
	s.result = nil
	s.errText = ""
	s.pendingInstruction = ""
	s.transcript = nil
}
