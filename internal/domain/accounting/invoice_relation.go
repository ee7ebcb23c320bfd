package accounting

import (
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RelationType classifies a directed link between two invoices
type RelationType string

const (
	RelationCorrection RelationType = "CORRECTION"
	RelationDuplicate  RelationType = "DUPLICATE"
	RelationRelated    RelationType = "RELATED"
)

// IsValid checks if the relation type is known
func (t RelationType) IsValid() bool {
	switch t {
	case RelationCorrection, RelationDuplicate, RelationRelated:
		return true
	}
	return false
}

// InvoiceRelation is a directed, informational link from one invoice to
// another (e.g. "this invoice corrects that invoice"). It is independent of
// the module-assignment linkage.
type InvoiceRelation struct {
	shared.BaseEntity
	SourceID uuid.UUID
	TargetID uuid.UUID
	Type     RelationType
}

// NewInvoiceRelation creates a relation between two distinct invoices
func NewInvoiceRelation(sourceID, targetID uuid.UUID, relationType RelationType) (*InvoiceRelation, error) {
	if sourceID == uuid.Nil || targetID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RELATION", "Relation requires both invoices")
	}
	if sourceID == targetID {
		return nil, shared.NewDomainError("SELF_RELATION", "An invoice cannot be related to itself")
	}
	if !relationType.IsValid() {
		return nil, shared.NewDomainError("INVALID_RELATION_TYPE", "Unknown relation type")
	}
	return &InvoiceRelation{
		BaseEntity: shared.NewBaseEntity(),
		SourceID:   sourceID,
		TargetID:   targetID,
		Type:       relationType,
	}, nil
}
