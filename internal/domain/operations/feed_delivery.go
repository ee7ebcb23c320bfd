package operations

import (
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeedDelivery is a feed invoice materialized from an accounting invoice.
// It knows nothing about the invoice that spawned it; the linkage is owned
// entirely by the invoice record.
type FeedDelivery struct {
	shared.BaseAggregateRoot
	InvoiceNumber string
	FarmID        uuid.UUID
	CycleID       uuid.UUID
	HenhouseID    *uuid.UUID
	ContractorID  uuid.UUID
	FeedItemID    uuid.UUID
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	NetAmount     decimal.Decimal
	GrossAmount   decimal.Decimal
	DeliveryDate  time.Time
	// PaymentReference is the paid marker: a non-nil reference means the
	// delivery has been settled.
	PaymentReference *string
	PriceAnomaly     bool
	PriceAnomalyNote string
	SourceFilePath   string
}

// NewFeedDelivery creates a feed delivery record
func NewFeedDelivery(
	invoiceNumber string,
	farmID, cycleID, contractorID, feedItemID uuid.UUID,
	quantity, unitPrice, net, gross decimal.Decimal,
	deliveryDate time.Time,
) (*FeedDelivery, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Feed delivery requires an invoice number")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Feed quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Feed unit price cannot be negative")
	}
	return &FeedDelivery{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		FarmID:            farmID,
		CycleID:           cycleID,
		ContractorID:      contractorID,
		FeedItemID:        feedItemID,
		Quantity:          quantity,
		UnitPrice:         unitPrice,
		NetAmount:         net,
		GrossAmount:       gross,
		DeliveryDate:      deliveryDate,
	}, nil
}

// IsPaid reports whether a payment reference is recorded
func (f *FeedDelivery) IsPaid() bool {
	return f.PaymentReference != nil && *f.PaymentReference != ""
}

// MarkPaid records the settlement reference
func (f *FeedDelivery) MarkPaid(reference string) {
	f.PaymentReference = &reference
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// ClearPayment removes the settlement reference
func (f *FeedDelivery) ClearPayment() {
	f.PaymentReference = nil
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// FlagPriceAnomaly annotates the delivery with an out-of-band price note.
// The annotation never blocks creation.
func (f *FeedDelivery) FlagPriceAnomaly(note string) {
	f.PriceAnomaly = true
	f.PriceAnomalyNote = note
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// AttachSourceFile records where the copied invoice file lives
func (f *FeedDelivery) AttachSourceFile(path string) {
	f.SourceFilePath = path
	f.UpdatedAt = time.Now()
}
