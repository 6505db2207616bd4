package engine

import (
	"context"
	"sync"
)

// Ensure ScriptedEngine implements Engine
var _ Engine = (*ScriptedEngine)(nil)

// ScriptedEngine replays canned completions, for tests and local
// development without a model backend. Each call to Stream consumes the
// next scripted completion; the last one is repeated when the script
// runs out.
type ScriptedEngine struct {
	mu          sync.Mutex
	completions []string
	calls       int
	err         error

	// Messages records the conversation of every Stream call.
	Messages [][]Message
}

// NewScriptedEngine creates a ScriptedEngine that replays the given
// completions in order.
func NewScriptedEngine(completions ...string) *ScriptedEngine {
	return &ScriptedEngine{completions: completions}
}

// Fail makes every subsequent Stream call return err.
func (e *ScriptedEngine) Fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

// Calls returns how many times Stream was invoked.
func (e *ScriptedEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// Stream emits the scripted completion one line at a time.
func (e *ScriptedEngine) Stream(ctx context.Context, messages []Message, onToken func(token string) error) (string, error) {
	e.mu.Lock()
	e.calls++
	e.Messages = append(e.Messages, messages)
	err := e.err
	var completion string
	if len(e.completions) > 0 {
		idx := e.calls - 1
		if idx >= len(e.completions) {
			idx = len(e.completions) - 1
		}
		completion = e.completions[idx]
	}
	e.mu.Unlock()

	if err != nil {
		return "", err
	}

	if onToken != nil {
		// feed in small chunks to exercise streaming consumers
		const chunkSize = 8
		for i := 0; i < len(completion); i += chunkSize {
			if ctx.Err() != nil {
				return completion[:i], ctx.Err()
			}
			end := i + chunkSize
			if end > len(completion) {
				end = len(completion)
			}
			if err := onToken(completion[i:end]); err != nil {
				return completion[:end], err
			}
		}
	}
	return completion, nil
}
