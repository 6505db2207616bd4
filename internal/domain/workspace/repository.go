package workspace

import (
	"context"

	"github.com/google/uuid"
)

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *Project) error

	// Update updates an existing project
	Update(ctx context.Context, project *Project) error

	// Delete deletes a project by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// FindByOwner returns projects owned by the user
	FindByOwner(ctx context.Context, ownerID uuid.UUID, filter ProjectFilter) ([]*Project, int64, error)

	// FindAccessible returns projects the user owns or collaborates on
	FindAccessible(ctx context.Context, userID uuid.UUID, filter ProjectFilter) ([]*Project, int64, error)

	// ExistsByOwnerAndName checks the (owner, name) uniqueness constraint
	ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (bool, error)
}

// CollaborationRepository defines the interface for membership persistence
type CollaborationRepository interface {
	// Create creates a new membership
	Create(ctx context.Context, collab *Collaboration) error

	// Update updates an existing membership
	Update(ctx context.Context, collab *Collaboration) error

	// Delete deletes a membership by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByProject removes all memberships of a project
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error

	// FindByID finds a membership by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Collaboration, error)

	// FindByProjectAndUser finds the membership of a user on a project
	FindByProjectAndUser(ctx context.Context, projectID, userID uuid.UUID) (*Collaboration, error)

	// FindByProject lists all memberships of a project
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]*Collaboration, error)
}

// ProjectFilter contains filter options for querying projects
type ProjectFilter struct {
	Keyword  string
	Status   *ProjectStatus
	Page     int
	PageSize int
}

// NewProjectFilter creates a filter with default pagination
func NewProjectFilter() ProjectFilter {
	return ProjectFilter{Page: 1, PageSize: 20}
}

// Offset returns the offset for pagination
func (f ProjectFilter) Offset() int {
	if f.Page <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Limit returns the limit for pagination
func (f ProjectFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
