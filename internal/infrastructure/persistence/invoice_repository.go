package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/farmops/backend/internal/domain/accounting"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds invoices by their IDs; missing ids are silently omitted
func (r *GormInvoiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]accounting.Invoice, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]accounting.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// FindByExternalRef finds an invoice by its exchange reference number
func (r *GormInvoiceRepository) FindByExternalRef(ctx context.Context, externalRef string) (*accounting.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("external_ref = ?", externalRef).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByExternalRef checks if an exchange reference was already imported
func (r *GormInvoiceRepository) ExistsByExternalRef(ctx context.Context, externalRef string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("external_ref = ?", externalRef).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll finds invoices with filtering and pagination
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter accounting.InvoiceFilter) ([]accounting.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	query = r.applyFilter(query, filter)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]accounting.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter accounting.InvoiceFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *accounting.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves the invoice with optimistic locking
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *accounting.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Get current version
		var current models.InvoiceModel
		if err := tx.Select("version").Where("id = ?", invoice.GetID()).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// New record, just save
				model := models.InvoiceModelFromDomain(invoice)
				return tx.Create(model).Error
			}
			return err
		}

		// Check version matches (domain model already incremented version)
		expectedVersion := invoice.GetVersion() - 1
		if current.Version != expectedVersion {
			return shared.NewDomainError("VERSION_CONFLICT", "Invoice has been modified by another user")
		}

		// Update with version check
		model := models.InvoiceModelFromDomain(invoice)
		result := tx.Model(model).
			Where("id = ? AND version = ?", invoice.GetID(), expectedVersion).
			Save(model)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("VERSION_CONFLICT", "Invoice has been modified by another user")
		}
		return nil
	})
}

// Delete soft deletes an invoice
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter conditions to query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter accounting.InvoiceFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	// Apply pagination
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		offset := (filter.Page - 1) * filter.PageSize
		if offset > 0 {
			query = query.Offset(offset)
		}
	}

	return query
}

// applyFilterWithoutPagination applies filter conditions without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter accounting.InvoiceFilter) *gorm.DB {
	// Search in number and counterparty names
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"(LOWER(number) LIKE ? OR LOWER(seller_name) LIKE ? OR LOWER(buyer_name) LIKE ?)",
			searchPattern, searchPattern, searchPattern,
		)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.ModuleType != nil {
		query = query.Where("module_type = ?", *filter.ModuleType)
	}
	if filter.AssignedUserID != nil {
		query = query.Where("assigned_user_id = ?", *filter.AssignedUserID)
	}
	if filter.FarmID != nil {
		query = query.Where("farm_id = ?", *filter.FarmID)
	}
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}

	// Issue date range filter
	if filter.IssuedFrom != nil {
		query = query.Where("issue_date >= ?", filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		query = query.Where("issue_date <= ?", filter.IssuedTo)
	}

	return query
}
