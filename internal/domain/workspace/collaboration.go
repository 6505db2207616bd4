package workspace

import (
	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CollaborationRole represents a member's permission level on a project
type CollaborationRole string

const (
	RoleOwner  CollaborationRole = "owner"
	RoleEditor CollaborationRole = "editor"
	RoleViewer CollaborationRole = "viewer"
)

// ValidRole reports whether the value is a known role
func ValidRole(role CollaborationRole) bool {
	switch role {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Collaboration grants a user access to a project. At most one row
// exists per (project, user) pair; the owner row is created together
// with the project.
type Collaboration struct {
	shared.BaseEntity
	ProjectID uuid.UUID
	UserID    uuid.UUID
	Role      CollaborationRole
}

// NewCollaboration creates an editor or viewer membership. Owner rows
// are created through NewOwnerCollaboration only.
func NewCollaboration(projectID, userID uuid.UUID, role CollaborationRole) (*Collaboration, error) {
	if projectID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Project and user are required")
	}
	if role == RoleOwner {
		return nil, shared.NewDomainError("INVALID_ROLE", "Owner role cannot be granted directly")
	}
	if !ValidRole(role) {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown collaboration role")
	}

	return &Collaboration{
		BaseEntity: shared.NewBaseEntity(),
		ProjectID:  projectID,
		UserID:     userID,
		Role:       role,
	}, nil
}

// NewOwnerCollaboration creates the owner membership for a new project
func NewOwnerCollaboration(projectID, ownerID uuid.UUID) *Collaboration {
	return &Collaboration{
		BaseEntity: shared.NewBaseEntity(),
		ProjectID:  projectID,
		UserID:     ownerID,
		Role:       RoleOwner,
	}
}

// ChangeRole updates the member's role. The owner cannot be demoted;
// ownership transfer is not supported.
func (c *Collaboration) ChangeRole(role CollaborationRole) error {
	if c.Role == RoleOwner {
		return shared.NewDomainError("OWNER_IMMUTABLE", "The project owner's role cannot be changed")
	}
	if role == RoleOwner {
		return shared.NewDomainError("INVALID_ROLE", "Owner role cannot be granted directly")
	}
	if !ValidRole(role) {
		return shared.NewDomainError("INVALID_ROLE", "Unknown collaboration role")
	}
	c.Role = role
	c.Touch()
	return nil
}

// CanWrite reports whether the member may modify project files and run
// generation sessions
func (c *Collaboration) CanWrite() bool {
	return c.Role == RoleOwner || c.Role == RoleEditor
}

// CanManageMembers reports whether the member may add or remove
// collaborators
func (c *Collaboration) CanManageMembers() bool {
	return c.Role == RoleOwner
}
