package workspace

import (
	"time"

	"github.com/codeforge/backend/internal/domain/workspace"
	"github.com/google/uuid"
)

// ProjectDTO represents project data transfer object
type ProjectDTO struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Role        string    `json:"role,omitempty"` // caller's role, when known
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectListResult represents paginated project list result
type ProjectListResult struct {
	Projects   []ProjectDTO `json:"projects"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// CreateProjectInput contains input for creating a project
type CreateProjectInput struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
}

// UpdateProjectInput contains input for updating project metadata
type UpdateProjectInput struct {
	ProjectID   uuid.UUID
	UserID      uuid.UUID
	Name        *string
	Description *string
}

// ProjectAccess describes the caller's standing on a project. Used by
// transport layers to gate file and generation operations.
type ProjectAccess struct {
	Project   ProjectDTO
	Role      workspace.CollaborationRole
	CanWrite  bool
	CanManage bool
}

// CollaboratorDTO represents a project member
type CollaboratorDTO struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AddCollaboratorInput contains input for adding a project member
type AddCollaboratorInput struct {
	ProjectID uuid.UUID
	CallerID  uuid.UUID
	Email     string
	Role      workspace.CollaborationRole
}

// ChangeCollaboratorRoleInput contains input for changing a member's role
type ChangeCollaboratorRoleInput struct {
	ProjectID uuid.UUID
	CallerID  uuid.UUID
	UserID    uuid.UUID
	Role      workspace.CollaborationRole
}

// RemoveCollaboratorInput contains input for removing a project member
type RemoveCollaboratorInput struct {
	ProjectID uuid.UUID
	CallerID  uuid.UUID
	UserID    uuid.UUID
}

// ListFilesInput contains input for listing sandbox files
type ListFilesInput struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
}

// ReadFileInput contains input for reading a sandbox file
type ReadFileInput struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
	Path      string
}

// FileContent contains a sandbox file's content
type FileContent struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	Content []byte `json:"content"`
}

// WriteFileInput contains input for writing a sandbox file
type WriteFileInput struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
	Path      string
	Content   []byte
}

// DeleteFileInput contains input for deleting a sandbox file
type DeleteFileInput struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
	Path      string
}

// ExportProjectInput contains input for exporting a project archive
type ExportProjectInput struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
}

// ExportResult describes an uploaded project archive
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Size      int64     `json:"size"`
}

func toProjectDTO(project *workspace.Project) *ProjectDTO {
	return &ProjectDTO{
		ID:          project.ID,
		OwnerID:     project.OwnerID,
		Name:        project.Name,
		Description: project.Description,
		Status:      string(project.Status),
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

func toCollaboratorDTO(collab *workspace.Collaboration) *CollaboratorDTO {
	return &CollaboratorDTO{
		ID:        collab.ID,
		ProjectID: collab.ProjectID,
		UserID:    collab.UserID,
		Role:      string(collab.Role),
		CreatedAt: collab.CreatedAt,
	}
}
