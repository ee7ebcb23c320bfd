package persistence

import (
	"context"

	"github.com/farmops/backend/internal/domain/accounting"
	"github.com/farmops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRelationRepository implements InvoiceRelationRepository using GORM
type GormInvoiceRelationRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRelationRepository creates a new GormInvoiceRelationRepository
func NewGormInvoiceRelationRepository(db *gorm.DB) *GormInvoiceRelationRepository {
	return &GormInvoiceRelationRepository{db: db}
}

// Save creates an invoice relation
func (r *GormInvoiceRelationRepository) Save(ctx context.Context, relation *accounting.InvoiceRelation) error {
	model := models.InvoiceRelationModelFromDomain(relation)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindBySource returns all relations originating from the source invoice
func (r *GormInvoiceRelationRepository) FindBySource(ctx context.Context, sourceID uuid.UUID) ([]accounting.InvoiceRelation, error) {
	var relationModels []models.InvoiceRelationModel
	if err := r.db.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Order("created_at ASC").
		Find(&relationModels).Error; err != nil {
		return nil, err
	}
	relations := make([]accounting.InvoiceRelation, len(relationModels))
	for i, model := range relationModels {
		relations[i] = *model.ToDomain()
	}
	return relations, nil
}
