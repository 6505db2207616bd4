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

// GormCollaborationRepository implements CollaborationRepository using GORM
type GormCollaborationRepository struct {
	db *gorm.DB
}

// NewGormCollaborationRepository creates a new GormCollaborationRepository
func NewGormCollaborationRepository(db *gorm.DB) *GormCollaborationRepository {
	return &GormCollaborationRepository{db: db}
}

// Create creates a new membership
func (r *GormCollaborationRepository) Create(ctx context.Context, collab *workspace.Collaboration) error {
	model := models.CollaborationModelFromDomain(collab)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update updates an existing membership
func (r *GormCollaborationRepository) Update(ctx context.Context, collab *workspace.Collaboration) error {
	model := models.CollaborationModelFromDomain(collab)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a membership by ID
func (r *GormCollaborationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CollaborationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByProject removes all memberships of a project
func (r *GormCollaborationRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&models.CollaborationModel{}).Error
}

// FindByID finds a membership by ID
func (r *GormCollaborationRepository) FindByID(ctx context.Context, id uuid.UUID) (*workspace.Collaboration, error) {
	var model models.CollaborationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProjectAndUser finds the membership of a user on a project
func (r *GormCollaborationRepository) FindByProjectAndUser(ctx context.Context, projectID, userID uuid.UUID) (*workspace.Collaboration, error) {
	var model models.CollaborationModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProject lists all memberships of a project
func (r *GormCollaborationRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]*workspace.Collaboration, error) {
	var collabModels []*models.CollaborationModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&collabModels).Error; err != nil {
		return nil, err
	}

	collabs := make([]*workspace.Collaboration, len(collabModels))
	for i, model := range collabModels {
		collabs[i] = model.ToDomain()
	}

	return collabs, nil
}

// Ensure GormCollaborationRepository implements CollaborationRepository
var _ workspace.CollaborationRepository = (*GormCollaborationRepository)(nil)
