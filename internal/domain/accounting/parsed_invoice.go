package accounting

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedParty is a seller or buyer extracted from an invoice XML body
type ParsedParty struct {
	Name    string
	TaxID   string
	Address string
}

// ParsedLine is one line item extracted from an invoice XML body
type ParsedLine struct {
	Name               string
	ClassificationCode string
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal
	NetAmount          decimal.Decimal
	VATRate            string
}

// ParsedPayment is the payment block extracted from an invoice XML body
type ParsedPayment struct {
	DueDate       *time.Time
	AccountNumber string
}

// ParsedInvoice is the structured form of a raw invoice XML body.
// Callers must tolerate a nil ParsedInvoice wherever parsing happens:
// unparseable input yields nil, never an error.
type ParsedInvoice struct {
	Number      string
	IssueDate   *time.Time
	GrossAmount decimal.Decimal
	NetAmount   decimal.Decimal
	VATAmount   decimal.Decimal
	Seller      ParsedParty
	Buyer       ParsedParty
	Lines       []ParsedLine
	Payment     ParsedPayment
	FooterText  string
}
