package ws

import (
	"testing"

	"github.com/codeforge/backend/internal/application/generation"
	"github.com/codeforge/backend/internal/infrastructure/config"
	"github.com/codeforge/backend/internal/infrastructure/engine"
	"github.com/codeforge/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandlerWelcomeSendsStatusThenListing(t *testing.T) {
	root := t.TempDir()
	files, err := storage.NewSandboxStore(&config.WorkspaceConfig{Root: root})
	require.NoError(t, err)
	gen := generation.NewService(engine.NewScriptedEngine(), files, zap.NewNop())

	hub := NewHub(zap.NewNop())
	projectID := uuid.New()

	// an existing sandbox file must show up in the connect listing
	require.NoError(t, files.WriteFile(projectID.String(), "main.go", []byte("package main")))

	client := newTestClient(hub, projectID, 16)
	session := NewSession(projectID, hub, gen, zap.NewNop())
	handler := NewHandler(hub, nil, gen, zap.NewNop())

	handler.welcome(client, session)

	status := receiveFrame(t, client)
	assert.Equal(t, FrameStatus, status.Type)
	assert.Equal(t, "connected", status.Message)

	info := receiveFrame(t, client)
	assert.Equal(t, FrameProjectInfo, info.Type)
	require.Len(t, info.Files, 1)
	assert.Equal(t, "main.go", info.Files[0].Path)
}

func TestHandlerWelcomeEmptySandbox(t *testing.T) {
	root := t.TempDir()
	files, err := storage.NewSandboxStore(&config.WorkspaceConfig{Root: root})
	require.NoError(t, err)
	gen := generation.NewService(engine.NewScriptedEngine(), files, zap.NewNop())

	hub := NewHub(zap.NewNop())
	projectID := uuid.New()

	client := newTestClient(hub, projectID, 16)
	session := NewSession(projectID, hub, gen, zap.NewNop())
	handler := NewHandler(hub, nil, gen, zap.NewNop())

	handler.welcome(client, session)

	status := receiveFrame(t, client)
	assert.Equal(t, FrameStatus, status.Type)
	assert.Equal(t, "connected", status.Message)

	info := receiveFrame(t, client)
	assert.Equal(t, FrameProjectInfo, info.Type)
	assert.Empty(t, info.Files)
}
