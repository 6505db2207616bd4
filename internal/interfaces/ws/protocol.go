package ws

import (
	workspaceapp "github.com/codeforge/backend/internal/application/workspace"
)

// Frame types exchanged over the generation channel. The client only
// ever sends chat frames; everything else flows server to client.
const (
	FrameChat        = "chat"
	FrameToken       = "token"
	FrameFile        = "file"
	FrameStatus      = "status"
	FrameProjectInfo = "project_info"
	FrameError       = "error"
	FrameDone        = "done"
)

// Frame is the JSON envelope for every message on the channel. Fields
// beyond Type are populated per frame type.
type Frame struct {
	Type    string                   `json:"type"`
	Content string                   `json:"content,omitempty"`
	Path    string                   `json:"path,omitempty"`
	Action  string                   `json:"action,omitempty"`
	Message string                   `json:"message,omitempty"`
	Files   []workspaceapp.FileEntry `json:"files,omitempty"`
}

// TokenFrame carries one streamed completion fragment
func TokenFrame(content string) Frame {
	return Frame{Type: FrameToken, Content: content}
}

// FileFrame reports a file written or patched in the sandbox
func FileFrame(path, action string) Frame {
	return Frame{Type: FrameFile, Path: path, Action: action}
}

// StatusFrame reports a coarse pipeline state change
func StatusFrame(message string) Frame {
	return Frame{Type: FrameStatus, Message: message}
}

// ProjectInfoFrame carries the sandbox listing after files changed
func ProjectInfoFrame(files []workspaceapp.FileEntry) Frame {
	return Frame{Type: FrameProjectInfo, Files: files}
}

// ErrorFrame reports a pipeline or protocol error
func ErrorFrame(message string) Frame {
	return Frame{Type: FrameError, Message: message}
}

// DoneFrame marks the end of a generation run
func DoneFrame() Frame {
	return Frame{Type: FrameDone}
}
