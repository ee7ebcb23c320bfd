package accounting

import (
	"context"
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter defines filtering options for invoice list queries
type InvoiceFilter struct {
	shared.Filter
	Status         *InvoiceStatus
	PaymentStatus  *PaymentStatus
	ModuleType     *ModuleType
	AssignedUserID *uuid.UUID
	FarmID         *uuid.UUID
	Source         *InvoiceSource
	Direction      *InvoiceDirection
	IssuedFrom     *time.Time
	IssuedTo       *time.Time
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID; soft-deleted invoices are not found
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDs finds invoices for the given ids, preserving only existing ones
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Invoice, error)

	// FindByExternalRef finds an invoice by its exchange reference number
	FindByExternalRef(ctx context.Context, externalRef string) (*Invoice, error)

	// ExistsByExternalRef checks whether an exchange reference was already ingested
	ExistsByExternalRef(ctx context.Context, externalRef string) (bool, error)

	// FindAll lists invoices with filtering and pagination
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// Delete soft deletes an invoice
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuditLogRepository appends and reads invoice audit entries.
// There is deliberately no update or delete.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *AuditLogEntry) error
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]AuditLogEntry, error)
}

// AssignmentRuleRepository defines the interface for rule persistence
type AssignmentRuleRepository interface {
	// FindActiveByKind returns active rules of the kind ordered by ascending priority
	FindActiveByKind(ctx context.Context, kind RuleKind) ([]AssignmentRule, error)
	FindByID(ctx context.Context, id uuid.UUID) (*AssignmentRule, error)
	FindAll(ctx context.Context, kind *RuleKind) ([]AssignmentRule, error)
	Save(ctx context.Context, rule *AssignmentRule) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceRelationRepository persists directed invoice relations
type InvoiceRelationRepository interface {
	Save(ctx context.Context, relation *InvoiceRelation) error
	FindBySource(ctx context.Context, sourceID uuid.UUID) ([]InvoiceRelation, error)
}
