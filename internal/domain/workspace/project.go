package workspace

import (
	"strings"

	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
)

// Project is a code-generation workspace owned by a user. Generated
// files live in a per-project sandbox directory derived from the
// project ID.
type Project struct {
	shared.BaseEntity
	OwnerID     uuid.UUID
	Name        string
	Description string
	Status      ProjectStatus
}

// NewProject creates an active project
func NewProject(ownerID uuid.UUID, name, description string) (*Project, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Project name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Project name cannot exceed 100 characters")
	}
	if len(description) > 2000 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 2000 characters")
	}

	return &Project{
		BaseEntity:  shared.NewBaseEntity(),
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Status:      ProjectStatusActive,
	}, nil
}

// Rename changes the project name
func (p *Project) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot exceed 100 characters")
	}
	p.Name = name
	p.Touch()
	return nil
}

// SetDescription updates the description
func (p *Project) SetDescription(description string) error {
	if len(description) > 2000 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 2000 characters")
	}
	p.Description = strings.TrimSpace(description)
	p.Touch()
	return nil
}

// Archive makes the project read-only
func (p *Project) Archive() error {
	if p.Status == ProjectStatusArchived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Project is already archived")
	}
	p.Status = ProjectStatusArchived
	p.Touch()
	return nil
}

// Unarchive returns an archived project to active status
func (p *Project) Unarchive() error {
	if p.Status == ProjectStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Project is already active")
	}
	p.Status = ProjectStatusActive
	p.Touch()
	return nil
}

// IsWritable reports whether files and generation runs may modify the
// project. Archived projects stay readable.
func (p *Project) IsWritable() bool {
	return p.Status == ProjectStatusActive
}

// SandboxDir returns the directory name for the project sandbox,
// relative to the workspace root.
func (p *Project) SandboxDir() string {
	return p.ID.String()
}
