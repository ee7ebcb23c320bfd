package persistence

import (
	"context"

	"github.com/farmops/backend/internal/domain/accounting"
	"github.com/farmops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements AuditLogRepository using GORM.
// The table is append-only; entries are never updated or removed.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Append inserts a new audit entry
func (r *GormAuditLogRepository) Append(ctx context.Context, entry *accounting.AuditLogEntry) error {
	model := models.AuditLogModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByInvoice returns the audit trail for an invoice in chronological order
func (r *GormAuditLogRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]accounting.AuditLogEntry, error) {
	var logModels []models.AuditLogModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&logModels).Error; err != nil {
		return nil, err
	}
	entries := make([]accounting.AuditLogEntry, len(logModels))
	for i, model := range logModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}
