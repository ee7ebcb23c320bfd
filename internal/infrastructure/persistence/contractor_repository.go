package persistence

import (
	"context"
	"errors"

	"github.com/farmops/backend/internal/domain/contractor"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormContractorRepository implements contractor.Repository using GORM
type GormContractorRepository struct {
	db *gorm.DB
}

// NewGormContractorRepository creates a new GormContractorRepository
func NewGormContractorRepository(db *gorm.DB) *GormContractorRepository {
	return &GormContractorRepository{db: db}
}

// FindByID finds a contractor by its ID
func (r *GormContractorRepository) FindByID(ctx context.Context, id uuid.UUID) (*contractor.Contractor, error) {
	var model models.ContractorModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTaxID finds a contractor by exact normalized tax id within a kind
func (r *GormContractorRepository) FindByTaxID(ctx context.Context, kind contractor.Kind, normalizedTaxID string) (*contractor.Contractor, error) {
	var model models.ContractorModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND tax_id = ?", kind, normalizedTaxID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName finds a contractor by case-insensitive name within a kind
func (r *GormContractorRepository) FindByName(ctx context.Context, kind contractor.Kind, name string) (*contractor.Contractor, error) {
	var model models.ContractorModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND LOWER(name) = LOWER(?)", kind, name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllByKind lists contractors of a kind ordered by name
func (r *GormContractorRepository) FindAllByKind(ctx context.Context, kind contractor.Kind) ([]contractor.Contractor, error) {
	var contractorModels []models.ContractorModel
	if err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("name ASC").
		Find(&contractorModels).Error; err != nil {
		return nil, err
	}
	contractors := make([]contractor.Contractor, len(contractorModels))
	for i, model := range contractorModels {
		contractors[i] = *model.ToDomain()
	}
	return contractors, nil
}

// Save creates or updates a contractor
func (r *GormContractorRepository) Save(ctx context.Context, c *contractor.Contractor) error {
	model := models.ContractorModelFromDomain(c)
	return r.db.WithContext(ctx).Save(model).Error
}
