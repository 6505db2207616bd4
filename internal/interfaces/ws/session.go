package ws

import (
	"context"
	"strings"
	"sync"

	"github.com/codeforge/backend/internal/application/generation"
	workspaceapp "github.com/codeforge/backend/internal/application/workspace"
	"github.com/codeforge/backend/internal/infrastructure/engine"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session drives generation runs for one WebSocket client. It keeps
// the conversation history for the connection's lifetime, allows a
// single run at a time, and relays pipeline events to every client on
// the project through the hub.
type Session struct {
	projectID uuid.UUID
	sandbox   string
	hub       *Hub
	gen       *generation.Service
	logger    *zap.Logger

	mu      sync.Mutex
	history []engine.Message
	running bool
	closed  bool
	cancel  context.CancelFunc

	// assistant output of the in-flight run, only touched by the run
	// goroutine
	pending strings.Builder
}

// NewSession creates a session for a project connection
func NewSession(projectID uuid.UUID, hub *Hub, gen *generation.Service, logger *zap.Logger) *Session {
	return &Session{
		projectID: projectID,
		sandbox:   projectID.String(),
		hub:       hub,
		gen:       gen,
		logger:    logger,
	}
}

// Chat starts a generation run for the prompt. A second chat while a
// run is in flight is rejected rather than queued.
func (s *Session) Chat(prompt string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.running {
		s.mu.Unlock()
		s.hub.Broadcast(s.projectID, ErrorFrame("A generation is already running"))
		return
	}
	s.running = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	history := make([]engine.Message, len(s.history))
	copy(history, s.history)
	s.mu.Unlock()

	go s.run(ctx, cancel, prompt, history)
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, prompt string, history []engine.Message) {
	defer cancel()

	s.pending.Reset()
	err := s.gen.Generate(ctx, generation.GenerateInput{
		Sandbox: s.sandbox,
		Prompt:  prompt,
		History: history,
	}, s)
	completion := s.pending.String()

	s.mu.Lock()
	s.running = false
	if err == nil {
		s.history = append(s.history,
			engine.Message{Role: engine.RoleUser, Content: prompt},
			engine.Message{Role: engine.RoleAssistant, Content: completion},
		)
	}
	s.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		s.logger.Warn("Generation run failed",
			zap.String("project_id", s.projectID.String()),
			zap.Error(err))
	}

	s.hub.Broadcast(s.projectID, DoneFrame())
}

// Close cancels any in-flight run. Called when the connection drops.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Token implements generation.EventSink
func (s *Session) Token(content string) {
	s.pending.WriteString(content)
	s.hub.Broadcast(s.projectID, TokenFrame(content))
}

// File implements generation.EventSink
func (s *Session) File(path, action string) {
	s.hub.Broadcast(s.projectID, FileFrame(path, action))
}

// Status implements generation.EventSink
func (s *Session) Status(message string) {
	s.hub.Broadcast(s.projectID, StatusFrame(message))
}

// ProjectInfo implements generation.EventSink
func (s *Session) ProjectInfo(files []workspaceapp.FileEntry) {
	s.hub.Broadcast(s.projectID, ProjectInfoFrame(files))
}

// Error implements generation.EventSink
func (s *Session) Error(message string) {
	s.hub.Broadcast(s.projectID, ErrorFrame(message))
}

// Done implements generation.EventSink. The done frame is broadcast
// from the run goroutine after session state settles, so a client that
// sees it may chat again immediately.
func (s *Session) Done() {}
