package models

import (
	"github.com/codeforge/backend/internal/domain/workspace"
	"github.com/google/uuid"
)

// ProjectModel is the persistence model for the Project domain entity.
type ProjectModel struct {
	BaseModel
	OwnerID     uuid.UUID               `gorm:"type:uuid;not null;index;uniqueIndex:idx_projects_owner_name,priority:1"`
	Name        string                  `gorm:"type:varchar(100);not null;uniqueIndex:idx_projects_owner_name,priority:2"`
	Description string                  `gorm:"type:text"`
	Status      workspace.ProjectStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project entity.
func (m *ProjectModel) ToDomain() *workspace.Project {
	return &workspace.Project{
		BaseEntity:  m.BaseModel.ToDomain(),
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Description: m.Description,
		Status:      m.Status,
	}
}

// FromDomain populates the persistence model from a domain Project entity.
func (m *ProjectModel) FromDomain(p *workspace.Project) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.OwnerID = p.OwnerID
	m.Name = p.Name
	m.Description = p.Description
	m.Status = p.Status
}

// ProjectModelFromDomain creates a new persistence model from a domain Project entity.
func ProjectModelFromDomain(p *workspace.Project) *ProjectModel {
	m := &ProjectModel{}
	m.FromDomain(p)
	return m
}

// CollaborationModel is the persistence model for the Collaboration domain entity.
type CollaborationModel struct {
	BaseModel
	ProjectID uuid.UUID                   `gorm:"type:uuid;not null;index;uniqueIndex:idx_collab_project_user,priority:1"`
	UserID    uuid.UUID                   `gorm:"type:uuid;not null;index;uniqueIndex:idx_collab_project_user,priority:2"`
	Role      workspace.CollaborationRole `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (CollaborationModel) TableName() string {
	return "project_collaborations"
}

// ToDomain converts the persistence model to a domain Collaboration entity.
func (m *CollaborationModel) ToDomain() *workspace.Collaboration {
	return &workspace.Collaboration{
		BaseEntity: m.BaseModel.ToDomain(),
		ProjectID:  m.ProjectID,
		UserID:     m.UserID,
		Role:       m.Role,
	}
}

// FromDomain populates the persistence model from a domain Collaboration entity.
func (m *CollaborationModel) FromDomain(c *workspace.Collaboration) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.ProjectID = c.ProjectID
	m.UserID = c.UserID
	m.Role = c.Role
}

// CollaborationModelFromDomain creates a new persistence model from a domain Collaboration entity.
func CollaborationModelFromDomain(c *workspace.Collaboration) *CollaborationModel {
	m := &CollaborationModel{}
	m.FromDomain(c)
	return m
}
