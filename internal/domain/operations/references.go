package operations

import (
	"context"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Farm is a production site owning module records
type Farm struct {
	shared.BaseEntity
	Name string
	Code string
}

// Cycle is one operating (rearing) cycle of a farm
type Cycle struct {
	shared.BaseEntity
	FarmID uuid.UUID
	Number string
	Closed bool
}

// Henhouse is a building within a farm
type Henhouse struct {
	shared.BaseEntity
	FarmID uuid.UUID
	Name   string
}

// FeedItem is a purchasable feed product
type FeedItem struct {
	shared.BaseEntity
	Name string
	Code string
}

// ReferenceRepository resolves the reference data a module record points at.
// Resolution failures surface as NotFound so the synchronizer can name the
// missing reference in its error.
type ReferenceRepository interface {
	FindFarm(ctx context.Context, id uuid.UUID) (*Farm, error)
	FindCycle(ctx context.Context, id uuid.UUID) (*Cycle, error)
	FindHenhouse(ctx context.Context, id uuid.UUID) (*Henhouse, error)
	FindFeedItem(ctx context.Context, id uuid.UUID) (*FeedItem, error)
}
