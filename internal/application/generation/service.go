package generation

import (
	"context"
	"errors"

	workspaceapp "github.com/codeforge/backend/internal/application/workspace"
	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/codeforge/backend/internal/infrastructure/engine"
	"go.uber.org/zap"
)

// systemPrompt instructs the engine to emit file content in the fenced
// block convention the parser understands
const systemPrompt = `You are a code generation assistant working inside a project workspace.
When you create or replace a file, emit a fenced code block whose info line is the language followed by the file path, for example:

` + "```go cmd/server/main.go" + `
package main
` + "```" + `

When you modify an existing file, emit a unified diff in a ` + "```diff" + ` block with --- a/path and +++ b/path headers.
Paths are always relative to the project root. Explain your changes briefly outside the blocks.`

// EventSink receives progress events during a generation run. The
// WebSocket layer implements it by broadcasting frames to the
// project's clients.
type EventSink interface {
	// Token delivers one streamed completion fragment
	Token(content string)

	// File reports a file written or patched in the sandbox
	File(path, action string)

	// Status reports a coarse pipeline state change
	Status(message string)

	// ProjectInfo delivers the sandbox listing after files changed
	ProjectInfo(files []workspaceapp.FileEntry)

	// Error reports a non-fatal or fatal pipeline error
	Error(message string)

	// Done marks the end of the run
	Done()
}

// GenerateInput describes one generation run
type GenerateInput struct {
	// Sandbox is the project's directory name under the workspace root
	Sandbox string

	// Prompt is the user's chat message
	Prompt string

	// History carries prior conversation turns, oldest first
	History []engine.Message
}

// Service runs the chat-to-files pipeline: stream a completion from
// the engine, parse it into file operations and land them in the
// project sandbox, reporting progress along the way.
type Service struct {
	eng    engine.Engine
	files  workspaceapp.FileStore
	logger *zap.Logger
}

// NewService creates a new generation service
func NewService(eng engine.Engine, files workspaceapp.FileStore, logger *zap.Logger) *Service {
	return &Service{
		eng:    eng,
		files:  files,
		logger: logger,
	}
}

// ListFiles returns the current sandbox listing
func (s *Service) ListFiles(sandbox string) ([]workspaceapp.FileEntry, error) {
	return s.files.ListFiles(sandbox)
}

// Generate runs one generation session. Tokens stream to the sink as
// they arrive; file operations apply after the completion finishes so
// a truncated stream never leaves half-written files.
func (s *Service) Generate(ctx context.Context, input GenerateInput, sink EventSink) error {
	messages := make([]engine.Message, 0, len(input.History)+2)
	messages = append(messages, engine.Message{Role: engine.RoleSystem, Content: systemPrompt})
	messages = append(messages, input.History...)
	messages = append(messages, engine.Message{Role: engine.RoleUser, Content: input.Prompt})

	sink.Status("generating")

	completion, err := s.eng.Stream(ctx, messages, func(token string) error {
		sink.Token(token)
		return ctx.Err()
	})
	if err != nil {
		s.logger.Warn("Engine stream failed",
			zap.String("sandbox", input.Sandbox),
			zap.Error(err))
		if errors.Is(err, engine.ErrEngineUnavailable) {
			sink.Error("The generation engine is unavailable")
		} else {
			sink.Error("Generation was interrupted")
		}
		sink.Done()
		return err
	}

	ops := Parse(completion)
	if len(ops) > 0 {
		sink.Status("applying changes")
	}

	applied := 0
	for _, op := range ops {
		if err := s.apply(input.Sandbox, op); err != nil {
			s.logger.Warn("Failed to apply file operation",
				zap.String("sandbox", input.Sandbox),
				zap.String("path", op.Path),
				zap.String("action", string(op.Action)),
				zap.Error(err))
			sink.Error("Failed to apply changes to " + op.Path)
			continue
		}
		applied++
		sink.File(op.Path, string(op.Action))
	}

	if applied > 0 {
		if files, err := s.files.ListFiles(input.Sandbox); err == nil {
			sink.ProjectInfo(files)
		} else {
			s.logger.Warn("Failed to list sandbox after generation",
				zap.String("sandbox", input.Sandbox),
				zap.Error(err))
		}
	}

	s.logger.Info("Generation run finished",
		zap.String("sandbox", input.Sandbox),
		zap.Int("operations", len(ops)),
		zap.Int("applied", applied),
		zap.Int("completion_len", len(completion)))

	sink.Done()
	return nil
}

func (s *Service) apply(sandbox string, op FileOp) error {
	switch op.Action {
	case ActionWrite:
		return s.files.WriteFile(sandbox, op.Path, []byte(op.Content))
	case ActionPatch:
		original, err := s.files.ReadFile(sandbox, op.Path)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// patching a file that does not exist yet: apply
				// against empty content so pure-addition diffs work
				original = nil
			} else {
				return err
			}
		}
		patched, err := ApplyDiff(string(original), op.Content)
		if err != nil {
			return err
		}
		return s.files.WriteFile(sandbox, op.Path, []byte(patched))
	default:
		return errors.New("unknown file operation")
	}
}
