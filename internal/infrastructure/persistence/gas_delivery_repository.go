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

// GormGasDeliveryRepository implements GasDeliveryRepository using GORM
type GormGasDeliveryRepository struct {
	db *gorm.DB
}

// NewGormGasDeliveryRepository creates a new GormGasDeliveryRepository
func NewGormGasDeliveryRepository(db *gorm.DB) *GormGasDeliveryRepository {
	return &GormGasDeliveryRepository{db: db}
}

// FindByID finds a gas delivery by its ID
func (r *GormGasDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*operations.GasDelivery, error) {
	var model models.GasDeliveryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByInvoiceNumber checks if a delivery exists for the invoice number
func (r *GormGasDeliveryRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.GasDeliveryModel{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a gas delivery
func (r *GormGasDeliveryRepository) Save(ctx context.Context, delivery *operations.GasDelivery) error {
	model := models.GasDeliveryModelFromDomain(delivery)
	return r.db.WithContext(ctx).Save(model).Error
}

// SoftDelete hides the delivery but keeps the row and its source file
func (r *GormGasDeliveryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.GasDeliveryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// HardDelete removes the delivery permanently
func (r *GormGasDeliveryRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Unscoped().Delete(&models.GasDeliveryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
