package accounting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmops/backend/internal/domain/accounting"
)

// FeedDeliveryPayload carries the module-specific fields required to
// materialize a feed delivery from an invoice.
type FeedDeliveryPayload struct {
	FarmID          uuid.UUID
	CycleID         uuid.UUID
	HenhouseID      *uuid.UUID
	ContractorID    *uuid.UUID
	ContractorName  string
	ContractorTaxID string
	FeedItemID      uuid.UUID
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DeliveryDate    time.Time
}

type GasDeliveryPayload struct {
	FarmID          uuid.UUID
	CycleID         uuid.UUID
	ContractorID    *uuid.UUID
	ContractorName  string
	ContractorTaxID string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DeliveryDate    time.Time
}

type ProductionExpensePayload struct {
	FarmID          uuid.UUID
	CycleID         uuid.UUID
	ContractorID    *uuid.UUID
	ContractorName  string
	ContractorTaxID string
	ExpenseType     string
}

type SaleInvoicePayload struct {
	FarmID           uuid.UUID
	CycleID          uuid.UUID
	SlaughterhouseID uuid.UUID
}

// ModulePayload holds at most one module-specific payload; the one
// matching the target module type must be set.
type ModulePayload struct {
	Feed    *FeedDeliveryPayload
	Gas     *GasDeliveryPayload
	Expense *ProductionExpensePayload
	Sale    *SaleInvoicePayload
}

// AcceptInvoiceRequest carries everything the accept operation applies
// to the invoice before the status flips to accepted.
type AcceptInvoiceRequest struct {
	InvoiceID    uuid.UUID
	ModuleType   accounting.ModuleType
	Payload      ModulePayload
	DueDate      *time.Time
	PaymentType  *accounting.PaymentType
	VATDeduction *accounting.VATDeduction
	Comment      *string
	FarmID       *uuid.UUID
	CycleID      *uuid.UUID
}

// UpdateInvoiceRequest is a partial patch; nil fields are left
// untouched.
type UpdateInvoiceRequest struct {
	Status               *accounting.InvoiceStatus
	ModuleType           *accounting.ModuleType
	PaymentStatus        *accounting.PaymentStatus
	PaymentType          *accounting.PaymentType
	VATDeduction         *accounting.VATDeduction
	DueDate              *time.Time
	Comment              *string
	AssignedUserID       *uuid.UUID
	RelatedInvoiceNumber *string
	FarmID               *uuid.UUID
	CycleID              *uuid.UUID
}

// HoldRequest reassigns an invoice to another user. ExpectedUserID is
// the assignee the caller last saw; a mismatch means somebody else took
// the invoice in the meantime and the hold is refused.
type HoldRequest struct {
	InvoiceID      uuid.UUID
	NewUserID      uuid.UUID
	ExpectedUserID *uuid.UUID
}

// TransferResult reports the outcome of a bulk transfer-to-office run.
// Items that fail are skipped and reported; the rest go through.
type TransferResult struct {
	Transferred int
	Errors      []string
}

// SyncResult reports the outcome of an exchange sync run.
type SyncResult struct {
	Fetched  int
	Imported int
	Skipped  int
	Errors   []string
}

// CreateManualInvoiceRequest carries the fields of a hand-entered
// invoice.
type CreateManualInvoiceRequest struct {
	Number        string
	IssueDate     time.Time
	DueDate       *time.Time
	SellerName    string
	SellerTaxID   string
	BuyerName     string
	BuyerTaxID    string
	GrossAmount   decimal.Decimal
	NetAmount     decimal.Decimal
	VATAmount     decimal.Decimal
	Direction     accounting.InvoiceDirection
	PaymentStatus *accounting.PaymentStatus
	Comment       string
}

// CreateRuleRequest carries the fields of a new assignment rule.
type CreateRuleRequest struct {
	Kind         accounting.RuleKind
	Priority     int
	Phrase       string
	ContractorID *uuid.UUID
	FarmID       *uuid.UUID
	Direction    *accounting.InvoiceDirection
	AssignUserID *uuid.UUID
	AssignModule *accounting.ModuleType
}
