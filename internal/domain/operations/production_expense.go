package operations

import (
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductionExpense is a production cost record materialized from an
// accounting invoice.
type ProductionExpense struct {
	shared.BaseAggregateRoot
	InvoiceNumber  string
	FarmID         uuid.UUID
	CycleID        uuid.UUID
	ContractorID   uuid.UUID
	ExpenseType    string
	NetAmount      decimal.Decimal
	GrossAmount    decimal.Decimal
	IssueDate      time.Time
	SourceFilePath string
}

// NewProductionExpense creates a production expense record
func NewProductionExpense(
	invoiceNumber string,
	farmID, cycleID, contractorID uuid.UUID,
	expenseType string,
	net, gross decimal.Decimal,
	issueDate time.Time,
) (*ProductionExpense, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Expense requires an invoice number")
	}
	if expenseType == "" {
		return nil, shared.NewDomainError("INVALID_EXPENSE_TYPE", "Expense requires an expense type")
	}
	if gross.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount cannot be negative")
	}
	return &ProductionExpense{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		FarmID:            farmID,
		CycleID:           cycleID,
		ContractorID:      contractorID,
		ExpenseType:       expenseType,
		NetAmount:         net,
		GrossAmount:       gross,
		IssueDate:         issueDate,
	}, nil
}

// AttachSourceFile records where the copied invoice file lives
func (e *ProductionExpense) AttachSourceFile(path string) {
	e.SourceFilePath = path
	e.UpdatedAt = time.Now()
}
