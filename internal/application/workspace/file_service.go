package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/codeforge/backend/internal/domain/workspace"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileService exposes the per-project sandbox to authorized members
type FileService struct {
	projectRepo workspace.ProjectRepository
	collabRepo  workspace.CollaborationRepository
	files       FileStore
	archives    ArchiveStore
	logger      *zap.Logger
}

// NewFileService creates a new file service. The archive store may be
// nil, in which case export is unavailable.
func NewFileService(
	projectRepo workspace.ProjectRepository,
	collabRepo workspace.CollaborationRepository,
	files FileStore,
	archives ArchiveStore,
	logger *zap.Logger,
) *FileService {
	return &FileService{
		projectRepo: projectRepo,
		collabRepo:  collabRepo,
		files:       files,
		archives:    archives,
		logger:      logger,
	}
}

// List returns every file in the project sandbox
func (s *FileService) List(ctx context.Context, input ListFilesInput) ([]FileEntry, error) {
	project, err := s.authorize(ctx, input.ProjectID, input.UserID, false)
	if err != nil {
		return nil, err
	}

	entries, err := s.files.ListFiles(project.SandboxDir())
	if err != nil {
		s.logger.Error("Failed to list sandbox files",
			zap.String("project_id", project.ID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list files")
	}
	return entries, nil
}

// Read returns the content of a sandbox file
func (s *FileService) Read(ctx context.Context, input ReadFileInput) (*FileContent, error) {
	project, err := s.authorize(ctx, input.ProjectID, input.UserID, false)
	if err != nil {
		return nil, err
	}

	data, err := s.files.ReadFile(project.SandboxDir(), input.Path)
	if err != nil {
		return nil, s.mapFileError(err, project.ID, input.Path, "read")
	}

	return &FileContent{
		Path:    input.Path,
		Size:    int64(len(data)),
		Content: data,
	}, nil
}

// Write creates or replaces a sandbox file. Requires write access.
func (s *FileService) Write(ctx context.Context, input WriteFileInput) error {
	project, err := s.authorize(ctx, input.ProjectID, input.UserID, true)
	if err != nil {
		return err
	}

	if err := s.files.WriteFile(project.SandboxDir(), input.Path, input.Content); err != nil {
		return s.mapFileError(err, project.ID, input.Path, "write")
	}

	s.logger.Info("File written",
		zap.String("project_id", project.ID.String()),
		zap.String("path", input.Path),
		zap.Int("size", len(input.Content)))

	return nil
}

// Delete removes a sandbox file. Requires write access.
func (s *FileService) Delete(ctx context.Context, input DeleteFileInput) error {
	project, err := s.authorize(ctx, input.ProjectID, input.UserID, true)
	if err != nil {
		return err
	}

	if err := s.files.DeleteFile(project.SandboxDir(), input.Path); err != nil {
		return s.mapFileError(err, project.ID, input.Path, "delete")
	}

	s.logger.Info("File deleted",
		zap.String("project_id", project.ID.String()),
		zap.String("path", input.Path))

	return nil
}

// Export zips the sandbox, uploads the archive to object storage and
// returns a presigned download URL
func (s *FileService) Export(ctx context.Context, input ExportProjectInput) (*ExportResult, error) {
	if s.archives == nil {
		return nil, shared.NewDomainError("EXPORT_UNAVAILABLE", "Archive storage is not configured")
	}

	project, err := s.authorize(ctx, input.ProjectID, input.UserID, false)
	if err != nil {
		return nil, err
	}

	archive, err := s.files.Archive(project.SandboxDir())
	if err != nil {
		s.logger.Error("Failed to archive sandbox",
			zap.String("project_id", project.ID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to archive project files")
	}

	key := fmt.Sprintf("exports/%s/%d.zip", project.ID, time.Now().Unix())
	if err := s.archives.Upload(ctx, key, archive, "application/zip"); err != nil {
		s.logger.Error("Failed to upload archive",
			zap.String("project_id", project.ID.String()),
			zap.String("key", key),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to upload project archive")
	}

	url, expiresAt, err := s.archives.GenerateDownloadURL(ctx, key, 0)
	if err != nil {
		s.logger.Error("Failed to presign archive URL",
			zap.String("key", key),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate download URL")
	}

	s.logger.Info("Project exported",
		zap.String("project_id", project.ID.String()),
		zap.String("key", key),
		zap.Int("size", len(archive)))

	return &ExportResult{
		Key:       key,
		URL:       url,
		ExpiresAt: expiresAt,
		Size:      int64(len(archive)),
	}, nil
}

// authorize checks project access. write additionally requires an
// editor or owner role and an unarchived project.
func (s *FileService) authorize(ctx context.Context, projectID, userID uuid.UUID, write bool) (*workspace.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PROJECT_NOT_FOUND", "Project not found")
		}
		s.logger.Error("Failed to find project", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find project")
	}

	collab, err := s.collabRepo.FindByProjectAndUser(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ACCESS_DENIED", "You do not have access to this project")
		}
		s.logger.Error("Failed to find membership", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check project access")
	}

	if write {
		if !collab.CanWrite() {
			return nil, shared.NewDomainError("ACCESS_DENIED", "Viewers cannot modify project files")
		}
		if !project.IsWritable() {
			return nil, shared.NewDomainError("PROJECT_ARCHIVED", "Archived projects are read-only")
		}
	}

	return project, nil
}

func (s *FileService) mapFileError(err error, projectID uuid.UUID, path, op string) error {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return shared.NewDomainError("FILE_NOT_FOUND", "File not found")
	case errors.Is(err, shared.ErrPathOutsideRoot):
		return shared.NewDomainError("INVALID_PATH", "Path escapes the project directory")
	case errors.Is(err, shared.ErrFileTooLarge):
		return shared.NewDomainError("FILE_TOO_LARGE", "File exceeds the allowed size")
	default:
		s.logger.Error("Sandbox operation failed",
			zap.String("project_id", projectID.String()),
			zap.String("path", path),
			zap.String("op", op),
			zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "File operation failed")
	}
}
