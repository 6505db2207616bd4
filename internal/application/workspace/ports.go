package workspace

import (
	"context"
	"time"
)

// FileEntry describes a single file inside a project sandbox
type FileEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// FileStore abstracts the per-project sandbox holding generated files.
// The sandbox argument is the project's directory name under the
// workspace root, never a caller-supplied path.
type FileStore interface {
	// ProjectDir ensures the project directory exists and returns its
	// absolute path
	ProjectDir(sandbox string) (string, error)

	// ReadFile returns the content of a file inside the sandbox
	ReadFile(sandbox, relPath string) ([]byte, error)

	// WriteFile writes a file inside the sandbox, creating parent
	// directories as needed
	WriteFile(sandbox, relPath string, data []byte) error

	// DeleteFile removes a file from the sandbox
	DeleteFile(sandbox, relPath string) error

	// DeleteProject removes the whole sandbox directory
	DeleteProject(sandbox string) error

	// ListFiles returns every file in the sandbox, recursively
	ListFiles(sandbox string) ([]FileEntry, error)

	// Archive returns the sandbox content as a zip archive
	Archive(sandbox string) ([]byte, error)
}

// ArchiveStore abstracts object storage for exported project archives
type ArchiveStore interface {
	// Upload stores an archive under the given key
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// GenerateDownloadURL returns a presigned download URL and its expiry
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject removes an archive from storage
	DeleteObject(ctx context.Context, key string) error

	// ObjectExists checks whether an archive is present
	ObjectExists(ctx context.Context, key string) (bool, error)
}
