package accounting

import (
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditAction tags an audit log entry with the operation that produced it
type AuditAction string

const (
	AuditActionCreated              AuditAction = "CREATED"
	AuditActionAccepted             AuditAction = "ACCEPTED"
	AuditActionRejected             AuditAction = "REJECTED"
	AuditActionTransferredToOffice  AuditAction = "TRANSFERRED_TO_OFFICE"
	AuditActionPaymentStatusChanged AuditAction = "PAYMENT_STATUS_CHANGED"
	AuditActionDeleted              AuditAction = "DELETED"
)

// IsValid checks if the action is a known AuditAction
func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreated, AuditActionAccepted, AuditActionRejected,
		AuditActionTransferredToOffice, AuditActionPaymentStatusChanged, AuditActionDeleted:
		return true
	}
	return false
}

// AuditActionForStatus maps a status transition target to its audit action
func AuditActionForStatus(status InvoiceStatus) AuditAction {
	switch status {
	case InvoiceStatusAccepted:
		return AuditActionAccepted
	case InvoiceStatusRejected:
		return AuditActionRejected
	case InvoiceStatusSentToOffice:
		return AuditActionTransferredToOffice
	default:
		return AuditActionCreated
	}
}

// AuditLogEntry records one invoice state transition. Entries are append-only
// and never updated or deleted by normal flows.
type AuditLogEntry struct {
	shared.BaseEntity
	InvoiceID  uuid.UUID
	Action     AuditAction
	FromStatus InvoiceStatus
	ToStatus   InvoiceStatus
	ActorID    uuid.UUID
	Note       string
}

// NewAuditLogEntry creates an audit entry for an invoice transition
func NewAuditLogEntry(invoiceID uuid.UUID, action AuditAction, from, to InvoiceStatus, actorID uuid.UUID, note string) (*AuditLogEntry, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Audit entry requires an invoice")
	}
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_AUDIT_ACTION", "Unknown audit action")
	}
	if actorID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	return &AuditLogEntry{
		BaseEntity: shared.NewBaseEntity(),
		InvoiceID:  invoiceID,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		Note:       note,
	}, nil
}
