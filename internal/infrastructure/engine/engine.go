// Package engine provides clients for the code-generation model backend.
package engine

import (
	"context"

	"github.com/codeforge/backend/internal/domain/shared"
)

// ErrEngineUnavailable is returned when the model backend cannot be reached.
var ErrEngineUnavailable = shared.NewDomainError("ENGINE_UNAVAILABLE", "Code generation engine is unavailable")

// Role constants for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn of the conversation sent to the engine.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Engine streams a completion for a conversation. onToken is invoked for
// every token as it arrives; the full completion is returned once the
// stream ends. Returning an error from onToken aborts the stream.
type Engine interface {
	Stream(ctx context.Context, messages []Message, onToken func(token string) error) (string, error)
}
