package operations

import (
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GasDelivery is a gas (heating fuel) delivery materialized from an
// accounting invoice.
type GasDelivery struct {
	shared.BaseAggregateRoot
	InvoiceNumber  string
	FarmID         uuid.UUID
	CycleID        uuid.UUID
	ContractorID   uuid.UUID
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	Amount         decimal.Decimal
	DeliveryDate   time.Time
	SourceFilePath string
}

// NewGasDelivery creates a gas delivery record
func NewGasDelivery(
	invoiceNumber string,
	farmID, cycleID, contractorID uuid.UUID,
	quantity, unitPrice, amount decimal.Decimal,
	deliveryDate time.Time,
) (*GasDelivery, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Gas delivery requires an invoice number")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Gas quantity must be positive")
	}
	return &GasDelivery{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		FarmID:            farmID,
		CycleID:           cycleID,
		ContractorID:      contractorID,
		Quantity:          quantity,
		UnitPrice:         unitPrice,
		Amount:            amount,
		DeliveryDate:      deliveryDate,
	}, nil
}

// AttachSourceFile records where the copied invoice file lives
func (g *GasDelivery) AttachSourceFile(path string) {
	g.SourceFilePath = path
	g.UpdatedAt = time.Now()
}
