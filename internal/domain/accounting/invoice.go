package accounting

import (
	"fmt"
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an accounting invoice
type InvoiceStatus string

const (
	InvoiceStatusNew          InvoiceStatus = "NEW"
	InvoiceStatusAccepted     InvoiceStatus = "ACCEPTED"
	InvoiceStatusRejected     InvoiceStatus = "REJECTED"
	InvoiceStatusSentToOffice InvoiceStatus = "SENT_TO_OFFICE"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusNew, InvoiceStatusAccepted, InvoiceStatusRejected, InvoiceStatusSentToOffice:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// PaymentStatus represents the settlement state of an invoice
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "UNPAID"
	PaymentStatusPaidCash      PaymentStatus = "PAID_CASH"
	PaymentStatusPaidTransfer  PaymentStatus = "PAID_TRANSFER"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusSuspended     PaymentStatus = "SUSPENDED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaidCash, PaymentStatusPaidTransfer,
		PaymentStatusPartiallyPaid, PaymentStatusSuspended:
		return true
	}
	return false
}

// IsPaid returns true for the fully settled payment statuses
func (s PaymentStatus) IsPaid() bool {
	return s == PaymentStatusPaidCash || s == PaymentStatusPaidTransfer
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentType represents how an invoice is expected to be settled
type PaymentType string

const (
	PaymentTypeNone     PaymentType = ""
	PaymentTypeCash     PaymentType = "CASH"
	PaymentTypeTransfer PaymentType = "TRANSFER"
)

// VATDeduction represents how much VAT may be deducted for an invoice
type VATDeduction string

const (
	VATDeductionNone VATDeduction = ""
	VATDeductionFull VATDeduction = "FULL"
	VATDeductionHalf VATDeduction = "HALF"
	VATDeductionZero VATDeduction = "ZERO"
)

// ModuleType identifies the business module an invoice materializes into
type ModuleType string

const (
	ModuleTypeNone               ModuleType = "NONE"
	ModuleTypeFeeds              ModuleType = "FEEDS"
	ModuleTypeGas                ModuleType = "GAS"
	ModuleTypeProductionExpenses ModuleType = "PRODUCTION_EXPENSES"
	ModuleTypeSales              ModuleType = "SALES"
	ModuleTypeFarmstead          ModuleType = "FARMSTEAD"
	ModuleTypeOther              ModuleType = "OTHER"
)

// IsValid checks if the module type is valid
func (m ModuleType) IsValid() bool {
	switch m {
	case ModuleTypeNone, ModuleTypeFeeds, ModuleTypeGas, ModuleTypeProductionExpenses,
		ModuleTypeSales, ModuleTypeFarmstead, ModuleTypeOther:
		return true
	}
	return false
}

// IsMaterializing returns true for module types that own a concrete module record
func (m ModuleType) IsMaterializing() bool {
	switch m {
	case ModuleTypeFeeds, ModuleTypeGas, ModuleTypeProductionExpenses, ModuleTypeSales:
		return true
	}
	return false
}

// String returns the string representation of ModuleType
func (m ModuleType) String() string {
	return string(m)
}

// InvoiceSource indicates where the invoice record came from
type InvoiceSource string

const (
	InvoiceSourceExchange InvoiceSource = "EXCHANGE"
	InvoiceSourceManual   InvoiceSource = "MANUAL"
)

// IsValid checks if the source is valid
func (s InvoiceSource) IsValid() bool {
	return s == InvoiceSourceExchange || s == InvoiceSourceManual
}

// InvoiceDirection distinguishes purchase invoices from sales invoices
type InvoiceDirection string

const (
	DirectionPurchase InvoiceDirection = "PURCHASE"
	DirectionSales    InvoiceDirection = "SALES"
)

// IsValid checks if the direction is valid
func (d InvoiceDirection) IsValid() bool {
	return d == DirectionPurchase || d == DirectionSales
}

// Invoice is the central aggregate of the reconciliation engine.
// It owns the linkage to whichever module record currently represents it;
// module records know nothing about the invoice that spawned them.
type Invoice struct {
	shared.BaseAggregateRoot
	ExternalRef          string
	Number               string
	IssueDate            time.Time
	DueDate              *time.Time
	SellerName           string
	SellerTaxID          string
	BuyerName            string
	BuyerTaxID           string
	GrossAmount          decimal.Decimal
	NetAmount            decimal.Decimal
	VATAmount            decimal.Decimal
	XMLBody              string
	AttachmentPath       string
	Status               InvoiceStatus
	PaymentStatus        PaymentStatus
	PaymentType          PaymentType
	VATDeduction         VATDeduction
	ModuleType           ModuleType
	ModuleEntityID       *uuid.UUID
	AssignedUserID       *uuid.UUID
	RelatedInvoiceNumber string
	FarmID               *uuid.UUID
	CycleID              *uuid.UUID
	Comment              string
	Source               InvoiceSource
	Direction            InvoiceDirection
	Linked               bool
	NoLinking            bool
	LinkingReminderAt    *time.Time
}

// NewInvoice creates a new invoice in status New
func NewInvoice(
	externalRef string,
	number string,
	issueDate time.Time,
	sellerName, sellerTaxID string,
	buyerName, buyerTaxID string,
	gross, net, vat decimal.Decimal,
	source InvoiceSource,
	direction InvoiceDirection,
) (*Invoice, error) {
	if externalRef == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_REF", "External reference cannot be empty")
	}
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Invoice source is not valid")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Invoice direction is not valid")
	}
	if gross.IsNegative() || net.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amounts cannot be negative")
	}

	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ExternalRef:       externalRef,
		Number:            number,
		IssueDate:         issueDate,
		SellerName:        sellerName,
		SellerTaxID:       sellerTaxID,
		BuyerName:         buyerName,
		BuyerTaxID:        buyerTaxID,
		GrossAmount:       gross,
		NetAmount:         net,
		VATAmount:         vat,
		Status:            InvoiceStatusNew,
		PaymentStatus:     PaymentStatusUnpaid,
		ModuleType:        ModuleTypeNone,
		Source:            source,
		Direction:         direction,
	}, nil
}

// CanAccept returns nil when an accept transition is allowed from the current status
func (i *Invoice) CanAccept() error {
	switch i.Status {
	case InvoiceStatusAccepted:
		return shared.NewDomainError("ALREADY_ACCEPTED", fmt.Sprintf("Invoice %s has already been accepted", i.Number))
	case InvoiceStatusSentToOffice:
		return shared.NewDomainError("ALREADY_SENT", fmt.Sprintf("Invoice %s has already been sent to the office", i.Number))
	}
	return nil
}

// Accept transitions the invoice to Accepted with the given module selection.
// entityID must be set exactly when moduleType materializes a module record.
func (i *Invoice) Accept(moduleType ModuleType, entityID *uuid.UUID) error {
	if err := i.CanAccept(); err != nil {
		return err
	}
	if !moduleType.IsValid() {
		return shared.NewDomainError("INVALID_MODULE", fmt.Sprintf("Unknown module type %q", moduleType))
	}
	if moduleType.IsMaterializing() && entityID == nil {
		return shared.NewDomainError("MISSING_ENTITY", "Materializing module selection requires a module entity")
	}
	if !moduleType.IsMaterializing() && entityID != nil {
		return shared.NewDomainError("UNEXPECTED_ENTITY", "Non-materializing module selection cannot carry a module entity")
	}

	i.Status = InvoiceStatusAccepted
	i.ModuleType = moduleType
	i.ModuleEntityID = entityID
	i.touch()
	return nil
}

// Reject resets the invoice to Rejected and clears every accept-time field.
// Rejection is a full reset, not a partial edit.
func (i *Invoice) Reject() error {
	if i.Status == InvoiceStatusSentToOffice {
		return shared.NewDomainError("ALREADY_SENT", fmt.Sprintf("Invoice %s has already been sent to the office", i.Number))
	}

	i.Status = InvoiceStatusRejected
	i.PaymentStatus = PaymentStatusUnpaid
	i.PaymentType = PaymentTypeNone
	i.DueDate = nil
	i.ModuleType = ModuleTypeNone
	i.ModuleEntityID = nil
	i.VATDeduction = VATDeductionNone
	i.Comment = ""
	i.FarmID = nil
	i.CycleID = nil
	i.AssignedUserID = nil
	i.RelatedInvoiceNumber = ""
	i.touch()
	return nil
}

// MarkSentToOffice moves an Accepted invoice to SentToOffice
func (i *Invoice) MarkSentToOffice() error {
	if i.Status != InvoiceStatusAccepted {
		return shared.NewDomainError("NOT_ACCEPTED",
			fmt.Sprintf("Invoice %s is in status %s and cannot be sent to the office", i.Number, i.Status))
	}
	i.Status = InvoiceStatusSentToOffice
	i.touch()
	return nil
}

// Reassign changes the assigned user without touching the status.
// The caller supplies the assigned user it last observed; a mismatch means
// somebody else reassigned the invoice first and the operation is rejected.
func (i *Invoice) Reassign(newUserID uuid.UUID, expectedCurrentUserID *uuid.UUID) error {
	if !uuidPtrEqual(i.AssignedUserID, expectedCurrentUserID) {
		return shared.NewDomainError("ASSIGNMENT_CONFLICT",
			fmt.Sprintf("Invoice %s was reassigned by another user", i.Number))
	}
	i.AssignedUserID = &newUserID
	i.touch()
	return nil
}

// MarkNoLinking marks the invoice as deliberately left unlinked to any module
func (i *Invoice) MarkNoLinking() error {
	if i.ModuleEntityID != nil {
		return shared.NewDomainError("ALREADY_LINKED",
			fmt.Sprintf("Invoice %s is linked to a module record", i.Number))
	}
	i.NoLinking = true
	i.touch()
	return nil
}

// MarkLinked records that the invoice is the source of at least one relation
func (i *Invoice) MarkLinked() {
	i.Linked = true
	i.touch()
}

// PostponeReminder shifts the linking reminder by the given number of days.
// An unset reminder is postponed relative to now.
func (i *Invoice) PostponeReminder(days int) error {
	if days <= 0 {
		return shared.NewDomainError("INVALID_POSTPONE", "Postpone days must be positive")
	}
	base := time.Now()
	if i.LinkingReminderAt != nil {
		base = *i.LinkingReminderAt
	}
	due := base.AddDate(0, 0, days)
	i.LinkingReminderAt = &due
	i.touch()
	return nil
}

// SetStatus applies a status change directly (generic Update path)
func (i *Invoice) SetStatus(status InvoiceStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", status))
	}
	i.Status = status
	i.touch()
	return nil
}

// SetPaymentStatus applies a payment status change
func (i *Invoice) SetPaymentStatus(status PaymentStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATUS", fmt.Sprintf("Unknown payment status %q", status))
	}
	i.PaymentStatus = status
	i.touch()
	return nil
}

// SetVATDeduction sets the VAT deduction type
func (i *Invoice) SetVATDeduction(v VATDeduction) {
	i.VATDeduction = v
	i.touch()
}

// SetDueDate sets the payment due date
func (i *Invoice) SetDueDate(due *time.Time) {
	i.DueDate = due
	i.touch()
}

// SetComment sets the free-text comment
func (i *Invoice) SetComment(comment string) {
	i.Comment = comment
	i.touch()
}

// SetFarmCycle sets the owning farm and cycle references
func (i *Invoice) SetFarmCycle(farmID, cycleID *uuid.UUID) {
	i.FarmID = farmID
	i.CycleID = cycleID
	i.touch()
}

// SetAssignedUser overwrites the assigned user without a conflict check
func (i *Invoice) SetAssignedUser(userID *uuid.UUID) {
	i.AssignedUserID = userID
	i.touch()
}

// SetRelatedInvoiceNumber sets the free-text cross reference
func (i *Invoice) SetRelatedInvoiceNumber(number string) {
	i.RelatedInvoiceNumber = number
	i.touch()
}

// SetPaymentType sets the expected settlement method
func (i *Invoice) SetPaymentType(t PaymentType) {
	i.PaymentType = t
	i.touch()
}

// SetXMLBody attaches the raw exchange XML body
func (i *Invoice) SetXMLBody(body string) {
	i.XMLBody = body
	i.touch()
}

// SetAttachment records the storage path of the original invoice file.
func (i *Invoice) SetAttachment(path string) {
	i.AttachmentPath = path
	i.touch()
}

// SetDefaultModule records a suggested module on a not yet accepted
// invoice. Accept is the only way to set the module once a record may
// be materialized.
func (i *Invoice) SetDefaultModule(moduleType ModuleType) error {
	if i.Status != InvoiceStatusNew {
		return shared.NewDomainError("NOT_NEW",
			fmt.Sprintf("Invoice %s is in status %s and cannot take a default module", i.Number, i.Status))
	}
	if !moduleType.IsValid() {
		return shared.NewDomainError("INVALID_MODULE", fmt.Sprintf("Unknown module type %q", moduleType))
	}
	i.ModuleType = moduleType
	i.touch()
	return nil
}

// ChangeModule reclassifies the invoice outside of accept. Materializing
// modules need a payload and can only be selected through Accept, so a
// patch may only switch to a non-materializing classification; any
// previously linked module entity must be removed by the caller first.
func (i *Invoice) ChangeModule(moduleType ModuleType) error {
	if !moduleType.IsValid() {
		return shared.NewDomainError("INVALID_MODULE", fmt.Sprintf("Unknown module type %q", moduleType))
	}
	if moduleType.IsMaterializing() {
		return shared.NewDomainError("MODULE_NEEDS_PAYLOAD",
			fmt.Sprintf("Module %s materializes a record and can only be selected through accept", moduleType))
	}
	i.ModuleType = moduleType
	i.ModuleEntityID = nil
	i.touch()
	return nil
}

// IsManual returns true for manually entered invoices.
// Only manual invoices may be deleted by a user; exchange-sourced
// invoices can only change status.
func (i *Invoice) IsManual() bool {
	return i.Source == InvoiceSourceManual
}

// HasModuleEntity returns true when a module record currently represents this invoice
func (i *Invoice) HasModuleEntity() bool {
	return i.ModuleEntityID != nil
}

func (i *Invoice) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
