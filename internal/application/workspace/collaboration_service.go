package workspace

import (
	"context"
	"errors"

	"github.com/codeforge/backend/internal/domain/identity"
	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/codeforge/backend/internal/domain/workspace"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CollaborationService manages project memberships
type CollaborationService struct {
	projectRepo workspace.ProjectRepository
	collabRepo  workspace.CollaborationRepository
	userRepo    identity.UserRepository
	logger      *zap.Logger
}

// NewCollaborationService creates a new collaboration service
func NewCollaborationService(
	projectRepo workspace.ProjectRepository,
	collabRepo workspace.CollaborationRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *CollaborationService {
	return &CollaborationService{
		projectRepo: projectRepo,
		collabRepo:  collabRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// List returns all members of a project. Any member may list.
func (s *CollaborationService) List(ctx context.Context, projectID, callerID uuid.UUID) ([]CollaboratorDTO, error) {
	if _, err := s.membership(ctx, projectID, callerID); err != nil {
		return nil, err
	}

	collabs, err := s.collabRepo.FindByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("Failed to list memberships", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list collaborators")
	}

	dtos := make([]CollaboratorDTO, len(collabs))
	for i, collab := range collabs {
		dto := toCollaboratorDTO(collab)
		// member display data is best-effort; a deleted user leaves
		// the row with an empty email
		if user, err := s.userRepo.FindByID(ctx, collab.UserID); err == nil {
			dto.Email = user.Email
			dto.Name = user.Name
		}
		dtos[i] = *dto
	}
	return dtos, nil
}

// Add grants a user access to a project by email. Owner only.
func (s *CollaborationService) Add(ctx context.Context, input AddCollaboratorInput) (*CollaboratorDTO, error) {
	caller, err := s.membership(ctx, input.ProjectID, input.CallerID)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageMembers() {
		return nil, shared.NewDomainError("ACCESS_DENIED", "Only the project owner can manage collaborators")
	}

	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "No user with this email")
		}
		s.logger.Error("Failed to look up user by email", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to look up user")
	}

	if _, err := s.collabRepo.FindByProjectAndUser(ctx, input.ProjectID, user.ID); err == nil {
		return nil, shared.NewDomainError("ALREADY_COLLABORATOR", "User is already a member of this project")
	} else if !errors.Is(err, shared.ErrNotFound) {
		s.logger.Error("Failed to check existing membership", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check existing membership")
	}

	collab, err := workspace.NewCollaboration(input.ProjectID, user.ID, input.Role)
	if err != nil {
		return nil, err
	}

	if err := s.collabRepo.Create(ctx, collab); err != nil {
		s.logger.Error("Failed to create membership", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to add collaborator")
	}

	s.logger.Info("Collaborator added",
		zap.String("project_id", input.ProjectID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(input.Role)))

	dto := toCollaboratorDTO(collab)
	dto.Email = user.Email
	dto.Name = user.Name
	return dto, nil
}

// ChangeRole updates a member's role. Owner only; the owner row is
// immutable.
func (s *CollaborationService) ChangeRole(ctx context.Context, input ChangeCollaboratorRoleInput) (*CollaboratorDTO, error) {
	caller, err := s.membership(ctx, input.ProjectID, input.CallerID)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageMembers() {
		return nil, shared.NewDomainError("ACCESS_DENIED", "Only the project owner can manage collaborators")
	}

	collab, err := s.collabRepo.FindByProjectAndUser(ctx, input.ProjectID, input.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("COLLABORATOR_NOT_FOUND", "User is not a member of this project")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find membership")
	}

	if err := collab.ChangeRole(input.Role); err != nil {
		return nil, err
	}

	if err := s.collabRepo.Update(ctx, collab); err != nil {
		s.logger.Error("Failed to update membership", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to change role")
	}

	s.logger.Info("Collaborator role changed",
		zap.String("project_id", input.ProjectID.String()),
		zap.String("user_id", input.UserID.String()),
		zap.String("role", string(input.Role)))

	return toCollaboratorDTO(collab), nil
}

// Remove revokes a member's access. The owner can remove anyone but
// themselves; a member can leave on their own.
func (s *CollaborationService) Remove(ctx context.Context, input RemoveCollaboratorInput) error {
	caller, err := s.membership(ctx, input.ProjectID, input.CallerID)
	if err != nil {
		return err
	}
	if !caller.CanManageMembers() && input.CallerID != input.UserID {
		return shared.NewDomainError("ACCESS_DENIED", "Only the project owner can remove other collaborators")
	}

	collab, err := s.collabRepo.FindByProjectAndUser(ctx, input.ProjectID, input.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("COLLABORATOR_NOT_FOUND", "User is not a member of this project")
		}
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find membership")
	}

	if collab.Role == workspace.RoleOwner {
		return shared.NewDomainError("OWNER_IMMUTABLE", "The project owner cannot be removed")
	}

	if err := s.collabRepo.Delete(ctx, collab.ID); err != nil {
		s.logger.Error("Failed to delete membership", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to remove collaborator")
	}

	s.logger.Info("Collaborator removed",
		zap.String("project_id", input.ProjectID.String()),
		zap.String("user_id", input.UserID.String()))

	return nil
}

func (s *CollaborationService) membership(ctx context.Context, projectID, userID uuid.UUID) (*workspace.Collaboration, error) {
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
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
	return collab, nil
}
