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

// GormSaleInvoiceRepository implements SaleInvoiceRepository using GORM
type GormSaleInvoiceRepository struct {
	db *gorm.DB
}

// NewGormSaleInvoiceRepository creates a new GormSaleInvoiceRepository
func NewGormSaleInvoiceRepository(db *gorm.DB) *GormSaleInvoiceRepository {
	return &GormSaleInvoiceRepository{db: db}
}

// FindByID finds a sale invoice by its ID
func (r *GormSaleInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*operations.SaleInvoice, error) {
	var model models.SaleInvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByInvoiceNumber checks if a sale exists for the invoice number
func (r *GormSaleInvoiceRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SaleInvoiceModel{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a sale invoice
func (r *GormSaleInvoiceRepository) Save(ctx context.Context, sale *operations.SaleInvoice) error {
	model := models.SaleInvoiceModelFromDomain(sale)
	return r.db.WithContext(ctx).Save(model).Error
}

// SoftDelete hides the sale but keeps the row and its source file
func (r *GormSaleInvoiceRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SaleInvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// HardDelete removes the sale permanently
func (r *GormSaleInvoiceRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Unscoped().Delete(&models.SaleInvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
