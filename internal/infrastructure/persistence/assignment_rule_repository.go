package persistence

import (
	"context"
	"errors"

	"github.com/farmops/backend/internal/domain/accounting"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAssignmentRuleRepository implements AssignmentRuleRepository using GORM
type GormAssignmentRuleRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRuleRepository creates a new GormAssignmentRuleRepository
func NewGormAssignmentRuleRepository(db *gorm.DB) *GormAssignmentRuleRepository {
	return &GormAssignmentRuleRepository{db: db}
}

// FindActiveByKind returns active rules of the kind ordered by ascending priority
func (r *GormAssignmentRuleRepository) FindActiveByKind(ctx context.Context, kind accounting.RuleKind) ([]accounting.AssignmentRule, error) {
	var ruleModels []models.AssignmentRuleModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND active = ?", kind, true).
		Order("priority ASC").
		Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	rules := make([]accounting.AssignmentRule, len(ruleModels))
	for i, model := range ruleModels {
		rules[i] = *model.ToDomain()
	}
	return rules, nil
}

// FindByID finds a rule by its ID
func (r *GormAssignmentRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.AssignmentRule, error) {
	var model models.AssignmentRuleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists rules, optionally restricted to one kind
func (r *GormAssignmentRuleRepository) FindAll(ctx context.Context, kind *accounting.RuleKind) ([]accounting.AssignmentRule, error) {
	var ruleModels []models.AssignmentRuleModel
	query := r.db.WithContext(ctx).Model(&models.AssignmentRuleModel{})
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	if err := query.Order("kind ASC, priority ASC").Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	rules := make([]accounting.AssignmentRule, len(ruleModels))
	for i, model := range ruleModels {
		rules[i] = *model.ToDomain()
	}
	return rules, nil
}

// Save creates or updates a rule
func (r *GormAssignmentRuleRepository) Save(ctx context.Context, rule *accounting.AssignmentRule) error {
	model := models.AssignmentRuleModelFromDomain(rule)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a rule permanently
func (r *GormAssignmentRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AssignmentRuleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
