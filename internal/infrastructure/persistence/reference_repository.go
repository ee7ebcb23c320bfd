package persistence

import (
	"context"
	"errors"

	"github.com/farmops/backend/internal/domain/operations"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReferenceRepository implements ReferenceRepository using GORM.
// Reference data is read-only from the invoice engine's point of view.
type GormReferenceRepository struct {
	db *gorm.DB
}

// NewGormReferenceRepository creates a new GormReferenceRepository
func NewGormReferenceRepository(db *gorm.DB) *GormReferenceRepository {
	return &GormReferenceRepository{db: db}
}

// FindFarm finds a farm by its ID
func (r *GormReferenceRepository) FindFarm(ctx context.Context, id uuid.UUID) (*operations.Farm, error) {
	var model models.FarmModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindCycle finds a rearing cycle by its ID
func (r *GormReferenceRepository) FindCycle(ctx context.Context, id uuid.UUID) (*operations.Cycle, error) {
	var model models.CycleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindHenhouse finds a henhouse by its ID
func (r *GormReferenceRepository) FindHenhouse(ctx context.Context, id uuid.UUID) (*operations.Henhouse, error) {
	var model models.HenhouseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindFeedItem finds a feed item by its ID
func (r *GormReferenceRepository) FindFeedItem(ctx context.Context, id uuid.UUID) (*operations.FeedItem, error) {
	var model models.FeedItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
