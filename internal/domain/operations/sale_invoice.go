package operations

import (
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleInvoice is a livestock sale record materialized from an accounting
// invoice issued to a slaughterhouse.
type SaleInvoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber    string
	FarmID           uuid.UUID
	CycleID          uuid.UUID
	SlaughterhouseID uuid.UUID
	NetAmount        decimal.Decimal
	GrossAmount      decimal.Decimal
	IssueDate        time.Time
	// PaymentDate is the paid marker: a non-nil date means the sale has
	// been settled.
	PaymentDate    *time.Time
	SourceFilePath string
}

// NewSaleInvoice creates a sale invoice record
func NewSaleInvoice(
	invoiceNumber string,
	farmID, cycleID, slaughterhouseID uuid.UUID,
	net, gross decimal.Decimal,
	issueDate time.Time,
) (*SaleInvoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Sale invoice requires an invoice number")
	}
	if slaughterhouseID == uuid.Nil {
		return nil, shared.NewDomainError("MISSING_SLAUGHTERHOUSE", "Sale invoice requires a slaughterhouse counterparty")
	}
	if gross.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Sale amount cannot be negative")
	}
	return &SaleInvoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		FarmID:            farmID,
		CycleID:           cycleID,
		SlaughterhouseID:  slaughterhouseID,
		NetAmount:         net,
		GrossAmount:       gross,
		IssueDate:         issueDate,
	}, nil
}

// IsPaid reports whether a payment date is recorded
func (s *SaleInvoice) IsPaid() bool {
	return s.PaymentDate != nil
}

// MarkPaid records the settlement date
func (s *SaleInvoice) MarkPaid(date time.Time) {
	s.PaymentDate = &date
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// ClearPayment removes the settlement date
func (s *SaleInvoice) ClearPayment() {
	s.PaymentDate = nil
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// AttachSourceFile records where the copied invoice file lives
func (s *SaleInvoice) AttachSourceFile(path string) {
	s.SourceFilePath = path
	s.UpdatedAt = time.Now()
}
