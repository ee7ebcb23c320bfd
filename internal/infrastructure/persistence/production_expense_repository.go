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

// GormProductionExpenseRepository implements ProductionExpenseRepository using GORM
type GormProductionExpenseRepository struct {
	db *gorm.DB
}

// NewGormProductionExpenseRepository creates a new GormProductionExpenseRepository
func NewGormProductionExpenseRepository(db *gorm.DB) *GormProductionExpenseRepository {
	return &GormProductionExpenseRepository{db: db}
}

// FindByID finds a production expense by its ID
func (r *GormProductionExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*operations.ProductionExpense, error) {
	var model models.ProductionExpenseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByInvoiceNumber checks if an expense exists for the invoice number
func (r *GormProductionExpenseRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductionExpenseModel{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a production expense
func (r *GormProductionExpenseRepository) Save(ctx context.Context, expense *operations.ProductionExpense) error {
	model := models.ProductionExpenseModelFromDomain(expense)
	return r.db.WithContext(ctx).Save(model).Error
}

// SoftDelete hides the expense but keeps the row and its source file
func (r *GormProductionExpenseRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductionExpenseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// HardDelete removes the expense permanently
func (r *GormProductionExpenseRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Unscoped().Delete(&models.ProductionExpenseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
