package accounting

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/farmops/backend/internal/domain/contractor"
	"github.com/farmops/backend/internal/domain/shared"
)

func TestContractorResolver_Ensure_FindsByNormalizedTaxID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContractorRepository)
	resolver := NewContractorResolver(zap.NewNop())

	existing := createTestFeedContractor()
	repo.On("FindByTaxID", mock.Anything, contractor.KindFeed, "5260250995").Return(existing, nil)

	// Country prefix and dashes are stripped before lookup.
	id, err := resolver.Ensure(ctx, repo, ResolveContractorRequest{
		Kind:  contractor.KindFeed,
		Name:  "Pasze Krajowe",
		TaxID: "PL 526-025-09-95",
	})

	assert.NoError(t, err)
	assert.Equal(t, existing.ID, id)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestContractorResolver_Ensure_FallsBackToNameMatch(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContractorRepository)
	resolver := NewContractorResolver(zap.NewNop())

	existing, _ := contractor.NewContractor(contractor.KindGas, "GazTrade SA", "", "")
	repo.On("FindByTaxID", mock.Anything, contractor.KindGas, "5260250995").Return(nil, shared.ErrNotFound)
	repo.On("FindByName", mock.Anything, contractor.KindGas, "GazTrade SA").Return(existing, nil)
	// The matched contractor had no tax id recorded; it is filled in.
	repo.On("Save", mock.Anything, existing).Return(nil)

	id, err := resolver.Ensure(ctx, repo, ResolveContractorRequest{
		Kind:  contractor.KindGas,
		Name:  "GazTrade SA",
		TaxID: "PL5260250995",
	})

	assert.NoError(t, err)
	assert.Equal(t, existing.ID, id)
	assert.Equal(t, "5260250995", existing.TaxID)
}

func TestContractorResolver_Ensure_CreatesWhenUnknown(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContractorRepository)
	resolver := NewContractorResolver(zap.NewNop())

	repo.On("FindByTaxID", mock.Anything, contractor.KindExpense, "1132191233").Return(nil, shared.ErrNotFound)
	repo.On("FindByName", mock.Anything, contractor.KindExpense, "Weterynarz Kowalski").Return(nil, shared.ErrNotFound)

	var created *contractor.Contractor
	repo.On("Save", mock.Anything, mock.AnythingOfType("*contractor.Contractor")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*contractor.Contractor)
	}).Return(nil)

	id, err := resolver.Ensure(ctx, repo, ResolveContractorRequest{
		Kind:        contractor.KindExpense,
		Name:        "Weterynarz Kowalski",
		TaxID:       "1132191233",
		ExpenseType: "Veterinary",
	})

	assert.NoError(t, err)
	assert.Equal(t, created.ID, id)
	assert.Equal(t, "Weterynarz Kowalski", created.Name)
	assert.True(t, created.HasExpenseType("Veterinary"))
}

func TestContractorResolver_Ensure_AccumulatesExpenseTypes(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContractorRepository)
	resolver := NewContractorResolver(zap.NewNop())

	existing, _ := contractor.NewContractor(contractor.KindExpense, "Serwis Maszyn", "1132191233", "")
	existing.AddExpenseType("Repairs")
	repo.On("FindByTaxID", mock.Anything, contractor.KindExpense, "1132191233").Return(existing, nil)
	repo.On("Save", mock.Anything, existing).Return(nil)

	_, err := resolver.Ensure(ctx, repo, ResolveContractorRequest{
		Kind:        contractor.KindExpense,
		TaxID:       "1132191233",
		ExpenseType: "Spare parts",
	})

	assert.NoError(t, err)
	assert.True(t, existing.HasExpenseType("Repairs"))
	assert.True(t, existing.HasExpenseType("Spare parts"))
}

func TestContractorResolver_Ensure_KnownExpenseTypeNotSavedAgain(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContractorRepository)
	resolver := NewContractorResolver(zap.NewNop())

	existing, _ := contractor.NewContractor(contractor.KindExpense, "Serwis Maszyn", "1132191233", "")
	existing.AddExpenseType("Repairs")
	repo.On("FindByTaxID", mock.Anything, contractor.KindExpense, "1132191233").Return(existing, nil)

	_, err := resolver.Ensure(ctx, repo, ResolveContractorRequest{
		Kind:        contractor.KindExpense,
		TaxID:       "1132191233",
		ExpenseType: "repairs",
	})

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestContractorResolver_Ensure_NoTaxIDMatchesByNameOnly(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContractorRepository)
	resolver := NewContractorResolver(zap.NewNop())

	existing, _ := contractor.NewContractor(contractor.KindFeed, "Pasze Polne", "", "")
	repo.On("FindByName", mock.Anything, contractor.KindFeed, "Pasze Polne").Return(existing, nil)

	id, err := resolver.Ensure(ctx, repo, ResolveContractorRequest{
		Kind: contractor.KindFeed,
		Name: "Pasze Polne",
	})

	assert.NoError(t, err)
	assert.Equal(t, existing.ID, id)
	repo.AssertNotCalled(t, "FindByTaxID", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestContractorResolver_Ensure_NoTaxIDAndNoMatchResolvesToNone(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContractorRepository)
	resolver := NewContractorResolver(zap.NewNop())

	repo.On("FindByName", mock.Anything, contractor.KindFeed, "Nieznany Dostawca").Return(nil, shared.ErrNotFound)

	id, err := resolver.Ensure(ctx, repo, ResolveContractorRequest{
		Kind: contractor.KindFeed,
		Name: "Nieznany Dostawca",
	})

	assert.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestContractorResolver_Ensure_NoIdentityResolvesToNone(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContractorRepository)
	resolver := NewContractorResolver(zap.NewNop())

	id, err := resolver.Ensure(ctx, repo, ResolveContractorRequest{Kind: contractor.KindFeed})

	assert.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
