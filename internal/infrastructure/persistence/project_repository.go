package persistence

import (
	"context"
	"errors"

	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/codeforge/backend/internal/domain/workspace"
	"github.com/codeforge/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProjectRepository implements ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *workspace.Project) error {
	model := models.ProjectModelFromDomain(project)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update updates an existing project
func (r *GormProjectRepository) Update(ctx context.Context, project *workspace.Project) error {
	model := models.ProjectModelFromDomain(project)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a project by ID. Memberships are removed in the same
// transaction so a project never leaves orphaned collaborator rows.
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).
			Delete(&models.CollaborationModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ProjectModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*workspace.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOwner returns projects owned by the user with pagination
func (r *GormProjectRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter workspace.ProjectFilter) ([]*workspace.Project, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProjectModel{}).
		Where("owner_id = ?", ownerID)
	return r.findPage(query, filter)
}

// FindAccessible returns projects the user owns or collaborates on
func (r *GormProjectRepository) FindAccessible(ctx context.Context, userID uuid.UUID, filter workspace.ProjectFilter) ([]*workspace.Project, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProjectModel{}).
		Joins("JOIN project_collaborations ON projects.id = project_collaborations.project_id").
		Where("project_collaborations.user_id = ?", userID)
	return r.findPage(query, filter)
}

// ExistsByOwnerAndName checks the (owner, name) uniqueness constraint
func (r *GormProjectRepository) ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProjectModel{}).
		Where("owner_id = ? AND name = ?", ownerID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// findPage applies the filter, sorting and pagination to a prepared query
func (r *GormProjectRepository) findPage(query *gorm.DB, filter workspace.ProjectFilter) ([]*workspace.Project, int64, error) {
	var projectModels []*models.ProjectModel
	var total int64

	if filter.Keyword != "" {
		searchPattern := "%" + filter.Keyword + "%"
		query = query.Where("projects.name ILIKE ? OR projects.description ILIKE ?", searchPattern, searchPattern)
	}
	if filter.Status != nil {
		query = query.Where("projects.status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("projects.created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&projectModels).Error; err != nil {
		return nil, 0, err
	}

	projects := make([]*workspace.Project, len(projectModels))
	for i, model := range projectModels {
		projects[i] = model.ToDomain()
	}

	return projects, total, nil
}

// Ensure GormProjectRepository implements ProjectRepository
var _ workspace.ProjectRepository = (*GormProjectRepository)(nil)
