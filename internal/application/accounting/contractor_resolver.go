package accounting

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmops/backend/internal/domain/contractor"
	"github.com/farmops/backend/internal/domain/shared"
)

// ContractorResolver finds or creates the contractor a module record
// should point at. Lookup order is tax id first, then case-insensitive
// name; a miss with a tax id creates a new contractor, a miss without
// one resolves to no contractor at all. Contractors are never modified
// destructively here: expense types only accumulate and an empty tax id
// may be filled in, nothing is overwritten.
type ContractorResolver struct {
	logger *zap.Logger
}

func NewContractorResolver(logger *zap.Logger) *ContractorResolver {
	return &ContractorResolver{logger: logger}
}

// ResolveContractorRequest identifies the counterparty of an invoice.
// ExpenseType is only meaningful for expense contractors.
type ResolveContractorRequest struct {
	Kind        contractor.Kind
	Name        string
	TaxID       string
	Address     string
	ExpenseType string
}

// Ensure returns the id of a matching contractor, creating one when no
// match exists and a tax id identifies the new record. Without a tax id
// only the name lookup runs; a miss then returns uuid.Nil so the module
// record is created without a counterparty instead of accumulating
// unidentifiable placeholder contractors.
func (r *ContractorResolver) Ensure(ctx context.Context, repo contractor.Repository, req ResolveContractorRequest) (uuid.UUID, error) {
	normalized := contractor.NormalizeTaxID(req.TaxID)

	if normalized != "" {
		existing, err := repo.FindByTaxID(ctx, req.Kind, normalized)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return uuid.Nil, err
		}
		if existing != nil {
			return r.enrich(ctx, repo, existing, normalized, req)
		}
	}

	if req.Name != "" {
		existing, err := repo.FindByName(ctx, req.Kind, req.Name)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return uuid.Nil, err
		}
		if existing != nil {
			return r.enrich(ctx, repo, existing, normalized, req)
		}
	}

	if normalized == "" {
		return uuid.Nil, nil
	}

	created, err := contractor.NewContractor(req.Kind, req.Name, normalized, req.Address)
	if err != nil {
		return uuid.Nil, err
	}
	if req.ExpenseType != "" {
		created.AddExpenseType(req.ExpenseType)
	}
	if err := repo.Save(ctx, created); err != nil {
		return uuid.Nil, err
	}
	r.logger.Info("contractor created",
		zap.String("contractor_id", created.ID.String()),
		zap.String("kind", string(req.Kind)),
		zap.String("name", created.Name))
	return created.ID, nil
}

func (r *ContractorResolver) enrich(ctx context.Context, repo contractor.Repository, c *contractor.Contractor, normalizedTaxID string, req ResolveContractorRequest) (uuid.UUID, error) {
	changed := false
	if c.TaxID == "" && normalizedTaxID != "" {
		c.TaxID = normalizedTaxID
		changed = true
	}
	if req.ExpenseType != "" && c.AddExpenseType(req.ExpenseType) {
		changed = true
	}
	if changed {
		if err := repo.Save(ctx, c); err != nil {
			return uuid.Nil, err
		}
	}
	return c.ID, nil
}
