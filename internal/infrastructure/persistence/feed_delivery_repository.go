package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/farmops/backend/internal/domain/operations"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFeedDeliveryRepository implements FeedDeliveryRepository using GORM
type GormFeedDeliveryRepository struct {
	db *gorm.DB
}

// NewGormFeedDeliveryRepository creates a new GormFeedDeliveryRepository
func NewGormFeedDeliveryRepository(db *gorm.DB) *GormFeedDeliveryRepository {
	return &GormFeedDeliveryRepository{db: db}
}

// FindByID finds a feed delivery by its ID
func (r *GormFeedDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*operations.FeedDelivery, error) {
	var model models.FeedDeliveryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByInvoiceNumber checks if a delivery exists for the invoice number
func (r *GormFeedDeliveryRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.FeedDeliveryModel{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a feed delivery
func (r *GormFeedDeliveryRepository) Save(ctx context.Context, delivery *operations.FeedDelivery) error {
	model := models.FeedDeliveryModelFromDomain(delivery)
	return r.db.WithContext(ctx).Save(model).Error
}

// SoftDelete hides the delivery but keeps the row and its source file
func (r *GormFeedDeliveryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.FeedDeliveryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// HardDelete removes the delivery permanently
func (r *GormFeedDeliveryRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Unscoped().Delete(&models.FeedDeliveryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// PriceStats aggregates historical unit prices for a feed item on a farm
// within the date range
func (r *GormFeedDeliveryRepository) PriceStats(ctx context.Context, feedItemID, farmID uuid.UUID, from, to time.Time) (operations.PriceStats, error) {
	var stats operations.PriceStats
	if err := r.db.WithContext(ctx).Model(&models.FeedDeliveryModel{}).
		Select("COUNT(*) as samples, COALESCE(MIN(unit_price), 0) as min, COALESCE(MAX(unit_price), 0) as max, COALESCE(AVG(unit_price), 0) as average").
		Where("feed_item_id = ? AND farm_id = ? AND delivery_date >= ? AND delivery_date <= ?", feedItemID, farmID, from, to).
		Scan(&stats).Error; err != nil {
		return operations.PriceStats{}, err
	}
	return stats, nil
}
