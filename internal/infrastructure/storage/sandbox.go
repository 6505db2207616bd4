package storage

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	workspaceapp "github.com/codeforge/backend/internal/application/workspace"
	"github.com/codeforge/backend/internal/domain/shared"
	infraconfig "github.com/codeforge/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure SandboxStore implements FileStore
var _ workspaceapp.FileStore = (*SandboxStore)(nil)

// SandboxStore stores project files on the local filesystem, one directory
// per project under a single workspace root. Every path supplied by a caller
// is resolved relative to the project directory and rejected if it escapes it.
type SandboxStore struct {
	root        string
	maxFileSize int64
	logger      *zap.Logger
}

// SandboxStoreOption is a functional option for configuring SandboxStore
type SandboxStoreOption func(*SandboxStore)

// WithSandboxLogger sets a custom logger for SandboxStore
func WithSandboxLogger(logger *zap.Logger) SandboxStoreOption {
	return func(s *SandboxStore) {
		s.logger = logger
	}
}

// NewSandboxStore creates a SandboxStore rooted at the configured workspace
// directory, creating it if necessary.
func NewSandboxStore(cfg *infraconfig.WorkspaceConfig, opts ...SandboxStoreOption) (*SandboxStore, error) {
	if cfg == nil {
		return nil, errors.New("workspace configuration is required")
	}
	if cfg.Root == "" {
		return nil, errors.New("workspace root is required")
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace root: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace root: %w", err)
	}

	store := &SandboxStore{
		root:        root,
		maxFileSize: cfg.MaxFileSize,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Root returns the absolute workspace root directory.
func (s *SandboxStore) Root() string {
	return s.root
}

// ProjectDir returns the sandbox directory of a project, creating it on
// first use.
func (s *SandboxStore) ProjectDir(sandbox string) (string, error) {
	dir, err := s.resolve(sandbox, ".")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}
	return dir, nil
}

// resolve maps a project-relative path to an absolute one and rejects any
// path that would land outside the project's sandbox directory.
func (s *SandboxStore) resolve(sandbox, relPath string) (string, error) {
	if sandbox == "" || strings.ContainsAny(sandbox, `/\`) {
		return "", shared.ErrPathOutsideRoot
	}

	projectDir := filepath.Join(s.root, sandbox)
	cleaned := filepath.Clean("/" + filepath.FromSlash(relPath))
	abs := filepath.Join(projectDir, cleaned)

	// Clean("/"+path) strips any leading "..", but keep the containment
	// check as the actual invariant.
	if abs != projectDir && !strings.HasPrefix(abs, projectDir+string(filepath.Separator)) {
		return "", shared.ErrPathOutsideRoot
	}
	// The lexical check cannot see symlinks, which can point anywhere on
	// the host filesystem.
	if err := s.rejectSymlinks(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// rejectSymlinks walks the existing path components between the workspace
// root and abs and fails if any of them is a symbolic link. Components that
// do not exist yet are fine, writes create them.
func (s *SandboxStore) rejectSymlinks(abs string) error {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return shared.ErrPathOutsideRoot
	}
	if rel == "." {
		return nil
	}

	path := s.root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		path = filepath.Join(path, part)
		info, err := os.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to stat path component: %w", err)
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return shared.ErrPathOutsideRoot
		}
	}
	return nil
}

// ReadFile returns the contents of a file inside the project sandbox.
func (s *SandboxStore) ReadFile(sandbox, relPath string) ([]byte, error) {
	abs, err := s.resolve(sandbox, relPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// WriteFile writes a file inside the project sandbox, creating parent
// directories as needed. Writes above the configured size limit are refused.
func (s *SandboxStore) WriteFile(sandbox, relPath string, data []byte) error {
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return shared.ErrFileTooLarge
	}

	abs, err := s.resolve(sandbox, relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directories: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Wrote sandbox file",
		zap.String("sandbox", sandbox),
		zap.String("path", relPath),
		zap.Int("bytes", len(data)))
	return nil
}

// DeleteFile removes a file from the project sandbox.
func (s *SandboxStore) DeleteFile(sandbox, relPath string) error {
	abs, err := s.resolve(sandbox, relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return shared.ErrNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// DeleteProject removes a project's entire sandbox directory.
func (s *SandboxStore) DeleteProject(sandbox string) error {
	dir, err := s.resolve(sandbox, ".")
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete project directory: %w", err)
	}
	return nil
}

// ListFiles returns the relative paths of all regular files in the project
// sandbox, sorted and using forward slashes.
func (s *SandboxStore) ListFiles(sandbox string) ([]workspaceapp.FileEntry, error) {
	dir, err := s.ProjectDir(sandbox)
	if err != nil {
		return nil, err
	}

	var entries []workspaceapp.FileEntry
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, workspaceapp.FileEntry{
			Path: filepath.ToSlash(rel),
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Archive builds a zip archive of the project sandbox's files.
func (s *SandboxStore) Archive(sandbox string) ([]byte, error) {
	dir, err := s.ProjectDir(sandbox)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		return nil, fmt.Errorf("failed to archive project: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
