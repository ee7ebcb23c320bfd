package contractor

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for contractor persistence.
// Lookups are always scoped to one contractor kind.
type Repository interface {
	// FindByID finds a contractor by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Contractor, error)

	// FindByTaxID finds a contractor by exact normalized tax id within a kind
	FindByTaxID(ctx context.Context, kind Kind, normalizedTaxID string) (*Contractor, error)

	// FindByName finds a contractor by case-insensitive name within a kind
	FindByName(ctx context.Context, kind Kind, name string) (*Contractor, error)

	// FindAllByKind lists contractors of a kind
	FindAllByKind(ctx context.Context, kind Kind) ([]Contractor, error)

	// Save creates or updates a contractor
	Save(ctx context.Context, c *Contractor) error
}
