package operations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceStats summarizes the historical unit price band for a feed item
type PriceStats struct {
	Samples int64
	Min     decimal.Decimal
	Max     decimal.Decimal
	Average decimal.Decimal
}

// FeedDeliveryRepository defines the interface for feed delivery persistence
type FeedDeliveryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FeedDelivery, error)
	ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error)
	Save(ctx context.Context, delivery *FeedDelivery) error
	// SoftDelete hides the record but preserves it and its source file
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// HardDelete removes the record permanently
	HardDelete(ctx context.Context, id uuid.UUID) error
	// PriceStats aggregates historical unit prices for the feed item on the
	// farm within [from, to]; used for the anomaly band check
	PriceStats(ctx context.Context, feedItemID, farmID uuid.UUID, from, to time.Time) (PriceStats, error)
}

// GasDeliveryRepository defines the interface for gas delivery persistence
type GasDeliveryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*GasDelivery, error)
	ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error)
	Save(ctx context.Context, delivery *GasDelivery) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}

// ProductionExpenseRepository defines the interface for expense persistence
type ProductionExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductionExpense, error)
	ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error)
	Save(ctx context.Context, expense *ProductionExpense) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}

// SaleInvoiceRepository defines the interface for sale invoice persistence
type SaleInvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SaleInvoice, error)
	ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error)
	Save(ctx context.Context, sale *SaleInvoice) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}
