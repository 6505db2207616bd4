package workspace

import (
	"context"
	"errors"

	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/codeforge/backend/internal/domain/workspace"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProjectService handles project lifecycle and access checks
type ProjectService struct {
	projectRepo workspace.ProjectRepository
	collabRepo  workspace.CollaborationRepository
	files       FileStore
	logger      *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo workspace.ProjectRepository,
	collabRepo workspace.CollaborationRepository,
	files FileStore,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		collabRepo:  collabRepo,
		files:       files,
		logger:      logger,
	}
}

// Create creates a project and its owner membership
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*ProjectDTO, error) {
	taken, err := s.projectRepo.ExistsByOwnerAndName(ctx, input.OwnerID, input.Name)
	if err != nil {
		s.logger.Error("Failed to check project name", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check project name availability")
	}
	if taken {
		return nil, shared.NewDomainError("PROJECT_NAME_TAKEN", "You already have a project with this name")
	}

	project, err := workspace.NewProject(input.OwnerID, input.Name, input.Description)
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		s.logger.Error("Failed to create project", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create project")
	}

	owner := workspace.NewOwnerCollaboration(project.ID, input.OwnerID)
	if err := s.collabRepo.Create(ctx, owner); err != nil {
		s.logger.Error("Failed to create owner membership", zap.Error(err))
		_ = s.projectRepo.Delete(ctx, project.ID)
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create project")
	}

	if _, err := s.files.ProjectDir(project.SandboxDir()); err != nil {
		s.logger.Warn("Failed to provision sandbox directory",
			zap.String("project_id", project.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("Project created",
		zap.String("project_id", project.ID.String()),
		zap.String("owner_id", input.OwnerID.String()),
		zap.String("name", project.Name))

	dto := toProjectDTO(project)
	dto.Role = string(workspace.RoleOwner)
	return dto, nil
}

// Get retrieves a project the caller has access to
func (s *ProjectService) Get(ctx context.Context, projectID, userID uuid.UUID) (*ProjectDTO, error) {
	project, collab, err := s.authorize(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	dto := toProjectDTO(project)
	dto.Role = string(collab.Role)
	return dto, nil
}

// Access returns the caller's standing on a project. Transport layers
// use it to gate file and generation operations.
func (s *ProjectService) Access(ctx context.Context, projectID, userID uuid.UUID) (*ProjectAccess, error) {
	project, collab, err := s.authorize(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	return &ProjectAccess{
		Project:   *toProjectDTO(project),
		Role:      collab.Role,
		CanWrite:  collab.CanWrite() && project.IsWritable(),
		CanManage: collab.CanManageMembers(),
	}, nil
}

// List returns projects the caller owns or collaborates on
func (s *ProjectService) List(ctx context.Context, userID uuid.UUID, filter workspace.ProjectFilter) (*ProjectListResult, error) {
	projects, total, err := s.projectRepo.FindAccessible(ctx, userID, filter)
	if err != nil {
		s.logger.Error("Failed to list projects", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list projects")
	}
	return s.listResult(projects, total, filter), nil
}

// ListOwned returns only projects the caller owns
func (s *ProjectService) ListOwned(ctx context.Context, userID uuid.UUID, filter workspace.ProjectFilter) (*ProjectListResult, error) {
	projects, total, err := s.projectRepo.FindByOwner(ctx, userID, filter)
	if err != nil {
		s.logger.Error("Failed to list owned projects", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list projects")
	}
	return s.listResult(projects, total, filter), nil
}

// Update changes project name or description. Owner only.
func (s *ProjectService) Update(ctx context.Context, input UpdateProjectInput) (*ProjectDTO, error) {
	project, collab, err := s.authorize(ctx, input.ProjectID, input.UserID)
	if err != nil {
		return nil, err
	}
	if !collab.CanManageMembers() {
		return nil, shared.NewDomainError("ACCESS_DENIED", "Only the project owner can update the project")
	}

	if input.Name != nil && *input.Name != project.Name {
		taken, err := s.projectRepo.ExistsByOwnerAndName(ctx, project.OwnerID, *input.Name)
		if err != nil {
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check project name availability")
		}
		if taken {
			return nil, shared.NewDomainError("PROJECT_NAME_TAKEN", "You already have a project with this name")
		}
		if err := project.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		if err := project.SetDescription(*input.Description); err != nil {
			return nil, err
		}
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		s.logger.Error("Failed to update project", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update project")
	}

	s.logger.Info("Project updated", zap.String("project_id", project.ID.String()))

	dto := toProjectDTO(project)
	dto.Role = string(collab.Role)
	return dto, nil
}

// Archive makes a project read-only. Owner only.
func (s *ProjectService) Archive(ctx context.Context, projectID, userID uuid.UUID) (*ProjectDTO, error) {
	return s.transition(ctx, projectID, userID, (*workspace.Project).Archive, "archived")
}

// Unarchive returns an archived project to active status. Owner only.
func (s *ProjectService) Unarchive(ctx context.Context, projectID, userID uuid.UUID) (*ProjectDTO, error) {
	return s.transition(ctx, projectID, userID, (*workspace.Project).Unarchive, "unarchived")
}

// Delete removes a project, its memberships and its sandbox. Owner only.
func (s *ProjectService) Delete(ctx context.Context, projectID, userID uuid.UUID) error {
	project, collab, err := s.authorize(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !collab.CanManageMembers() {
		return shared.NewDomainError("ACCESS_DENIED", "Only the project owner can delete the project")
	}

	if err := s.projectRepo.Delete(ctx, project.ID); err != nil {
		s.logger.Error("Failed to delete project", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete project")
	}

	// the database row is gone; sandbox cleanup failure leaves only
	// orphaned files on disk
	if err := s.files.DeleteProject(project.SandboxDir()); err != nil {
		s.logger.Warn("Failed to remove sandbox directory",
			zap.String("project_id", project.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("Project deleted",
		zap.String("project_id", project.ID.String()),
		zap.String("owner_id", project.OwnerID.String()))

	return nil
}

func (s *ProjectService) transition(
	ctx context.Context,
	projectID, userID uuid.UUID,
	apply func(*workspace.Project) error,
	action string,
) (*ProjectDTO, error) {
	project, collab, err := s.authorize(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if !collab.CanManageMembers() {
		return nil, shared.NewDomainError("ACCESS_DENIED", "Only the project owner can change project status")
	}

	if err := apply(project); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		s.logger.Error("Failed to update project status", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update project")
	}

	s.logger.Info("Project "+action, zap.String("project_id", project.ID.String()))

	dto := toProjectDTO(project)
	dto.Role = string(collab.Role)
	return dto, nil
}

// authorize loads the project and the caller's membership on it
func (s *ProjectService) authorize(ctx context.Context, projectID, userID uuid.UUID) (*workspace.Project, *workspace.Collaboration, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, shared.NewDomainError("PROJECT_NOT_FOUND", "Project not found")
		}
		s.logger.Error("Failed to find project", zap.Error(err))
		return nil, nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find project")
	}

	collab, err := s.collabRepo.FindByProjectAndUser(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, shared.NewDomainError("ACCESS_DENIED", "You do not have access to this project")
		}
		s.logger.Error("Failed to find membership", zap.Error(err))
		return nil, nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check project access")
	}

	return project, collab, nil
}

func (s *ProjectService) listResult(projects []*workspace.Project, total int64, filter workspace.ProjectFilter) *ProjectListResult {
	pageSize := filter.Limit()
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	dtos := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = *toProjectDTO(project)
	}

	return &ProjectListResult{
		Projects:   dtos,
		Total:      total,
		Page:       filter.Page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
