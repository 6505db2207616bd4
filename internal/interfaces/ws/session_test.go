package ws

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codeforge/backend/internal/application/generation"
	"github.com/codeforge/backend/internal/infrastructure/config"
	"github.com/codeforge/backend/internal/infrastructure/engine"
	"github.com/codeforge/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSessionFixture(t *testing.T, completion string) (*Session, *Client, string) {
	t.Helper()

	root := t.TempDir()
	files, err := storage.NewSandboxStore(&config.WorkspaceConfig{Root: root})
	require.NoError(t, err)

	gen := generation.NewService(engine.NewScriptedEngine(completion), files, zap.NewNop())

	hub := NewHub(zap.NewNop())
	projectID := uuid.New()
	client := newTestClient(hub, projectID, 256)
	hub.Register(client)

	session := NewSession(projectID, hub, gen, zap.NewNop())
	return session, client, filepath.Join(root, projectID.String())
}

// collectFrames drains the client's channel until a done frame arrives
func collectFrames(t *testing.T, c *Client) []Frame {
	t.Helper()
	var frames []Frame
	deadline := time.After(5 * time.Second)
	for {
		select {
		case payload := <-c.send:
			var frame Frame
			require.NoError(t, json.Unmarshal(payload, &frame))
			frames = append(frames, frame)
			if frame.Type == FrameDone {
				return frames
			}
		case <-deadline:
			t.Fatalf("timed out waiting for done frame, got %d frames", len(frames))
		}
	}
}

func frameTypes(frames []Frame) []string {
	types := make([]string, len(frames))
	for i, f := range frames {
		types[i] = f.Type
	}
	return types
}

func TestSessionChatStreamsAndWritesFiles(t *testing.T) {
	completion := "Here is the file:\n```go main.go\npackage main\n```\nDone."
	session, client, sandboxDir := newSessionFixture(t, completion)

	session.Chat("write a main package")
	frames := collectFrames(t, client)

	types := frameTypes(frames)
	assert.Contains(t, types, FrameStatus)
	assert.Contains(t, types, FrameToken)
	assert.Contains(t, types, FrameFile)
	assert.Contains(t, types, FrameProjectInfo)
	assert.Equal(t, FrameDone, types[len(types)-1])

	// streamed tokens reassemble into the completion
	var streamed string
	for _, f := range frames {
		if f.Type == FrameToken {
			streamed += f.Content
		}
	}
	assert.Equal(t, completion, streamed)

	// the fenced block landed on disk
	content, err := os.ReadFile(filepath.Join(sandboxDir, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main", string(content))

	// the listing frame names the new file
	var info Frame
	for _, f := range frames {
		if f.Type == FrameProjectInfo {
			info = f
		}
	}
	require.Len(t, info.Files, 1)
	assert.Equal(t, "main.go", info.Files[0].Path)
}

func TestSessionKeepsConversationHistory(t *testing.T) {
	root := t.TempDir()
	files, err := storage.NewSandboxStore(&config.WorkspaceConfig{Root: root})
	require.NoError(t, err)

	eng := engine.NewScriptedEngine("first answer", "second answer")
	gen := generation.NewService(eng, files, zap.NewNop())

	hub := NewHub(zap.NewNop())
	projectID := uuid.New()
	client := newTestClient(hub, projectID, 256)
	hub.Register(client)

	session := NewSession(projectID, hub, gen, zap.NewNop())

	session.Chat("first question")
	collectFrames(t, client)
	session.Chat("second question")
	collectFrames(t, client)

	require.Equal(t, 2, eng.Calls())
	secondRun := eng.Messages[1]

	// system prompt + first exchange + new prompt
	require.Len(t, secondRun, 4)
	assert.Equal(t, engine.RoleUser, secondRun[1].Role)
	assert.Equal(t, "first question", secondRun[1].Content)
	assert.Equal(t, engine.RoleAssistant, secondRun[2].Role)
	assert.Equal(t, "first answer", secondRun[2].Content)
	assert.Equal(t, "second question", secondRun[3].Content)
}

func TestSessionEngineFailureReportsError(t *testing.T) {
	session, client, _ := newSessionFixture(t, "unused")
	eng := engine.NewScriptedEngine()
	eng.Fail(engine.ErrEngineUnavailable)
	session.gen = generation.NewService(eng, nil, zap.NewNop())

	session.Chat("anything")
	frames := collectFrames(t, client)

	types := frameTypes(frames)
	assert.Contains(t, types, FrameError)
	assert.Equal(t, FrameDone, types[len(types)-1])
}

func TestSessionChatAfterCloseIgnored(t *testing.T) {
	session, client, _ := newSessionFixture(t, "unused")

	session.Close()
	session.Chat("too late")

	select {
	case payload := <-client.send:
		t.Fatalf("unexpected frame after close: %s", payload)
	case <-time.After(100 * time.Millisecond):
	}
}
