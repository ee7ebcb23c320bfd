package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/farmops/backend/internal/domain/accounting"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	ExternalRef          string                      `gorm:"type:varchar(100);not null;uniqueIndex"`
	Number               string                      `gorm:"type:varchar(100);not null;index"`
	IssueDate            time.Time                   `gorm:"not null;index"`
	DueDate              *time.Time                  `gorm:"index"`
	SellerName           string                      `gorm:"type:varchar(200);not null"`
	SellerTaxID          string                      `gorm:"type:varchar(30);index"`
	BuyerName            string                      `gorm:"type:varchar(200)"`
	BuyerTaxID           string                      `gorm:"type:varchar(30)"`
	GrossAmount          decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	NetAmount            decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	VATAmount            decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	XMLBody              string                      `gorm:"type:text"`
	AttachmentPath       string                      `gorm:"type:varchar(500)"`
	Status               accounting.InvoiceStatus    `gorm:"type:varchar(20);not null;default:'NEW';index"`
	PaymentStatus        accounting.PaymentStatus    `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
	PaymentType          accounting.PaymentType      `gorm:"type:varchar(20)"`
	VATDeduction         accounting.VATDeduction     `gorm:"type:varchar(10)"`
	ModuleType           accounting.ModuleType       `gorm:"type:varchar(30);not null;default:'NONE';index"`
	ModuleEntityID       *uuid.UUID                  `gorm:"type:uuid;index"`
	AssignedUserID       *uuid.UUID                  `gorm:"type:uuid;index"`
	RelatedInvoiceNumber string                      `gorm:"type:varchar(100)"`
	FarmID               *uuid.UUID                  `gorm:"type:uuid;index"`
	CycleID              *uuid.UUID                  `gorm:"type:uuid;index"`
	Comment              string                      `gorm:"type:text"`
	Source               accounting.InvoiceSource    `gorm:"type:varchar(20);not null;index"`
	Direction            accounting.InvoiceDirection `gorm:"type:varchar(20);not null;index"`
	Linked               bool                        `gorm:"not null;default:false"`
	NoLinking            bool                        `gorm:"not null;default:false"`
	LinkingReminderAt    *time.Time                  `gorm:"index"`
	DeletedAt            gorm.DeletedAt              `gorm:"index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *accounting.Invoice {
	return &accounting.Invoice{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		ExternalRef:          m.ExternalRef,
		Number:               m.Number,
		IssueDate:            m.IssueDate,
		DueDate:              m.DueDate,
		SellerName:           m.SellerName,
		SellerTaxID:          m.SellerTaxID,
		BuyerName:            m.BuyerName,
		BuyerTaxID:           m.BuyerTaxID,
		GrossAmount:          m.GrossAmount,
		NetAmount:            m.NetAmount,
		VATAmount:            m.VATAmount,
		XMLBody:              m.XMLBody,
		AttachmentPath:       m.AttachmentPath,
		Status:               m.Status,
		PaymentStatus:        m.PaymentStatus,
		PaymentType:          m.PaymentType,
		VATDeduction:         m.VATDeduction,
		ModuleType:           m.ModuleType,
		ModuleEntityID:       m.ModuleEntityID,
		AssignedUserID:       m.AssignedUserID,
		RelatedInvoiceNumber: m.RelatedInvoiceNumber,
		FarmID:               m.FarmID,
		CycleID:              m.CycleID,
		Comment:              m.Comment,
		Source:               m.Source,
		Direction:            m.Direction,
		Linked:               m.Linked,
		NoLinking:            m.NoLinking,
		LinkingReminderAt:    m.LinkingReminderAt,
	}
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *accounting.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.ExternalRef = inv.ExternalRef
	m.Number = inv.Number
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.SellerName = inv.SellerName
	m.SellerTaxID = inv.SellerTaxID
	m.BuyerName = inv.BuyerName
	m.BuyerTaxID = inv.BuyerTaxID
	m.GrossAmount = inv.GrossAmount
	m.NetAmount = inv.NetAmount
	m.VATAmount = inv.VATAmount
	m.XMLBody = inv.XMLBody
	m.AttachmentPath = inv.AttachmentPath
	m.Status = inv.Status
	m.PaymentStatus = inv.PaymentStatus
	m.PaymentType = inv.PaymentType
	m.VATDeduction = inv.VATDeduction
	m.ModuleType = inv.ModuleType
	m.ModuleEntityID = inv.ModuleEntityID
	m.AssignedUserID = inv.AssignedUserID
	m.RelatedInvoiceNumber = inv.RelatedInvoiceNumber
	m.FarmID = inv.FarmID
	m.CycleID = inv.CycleID
	m.Comment = inv.Comment
	m.Source = inv.Source
	m.Direction = inv.Direction
	m.Linked = inv.Linked
	m.NoLinking = inv.NoLinking
	m.LinkingReminderAt = inv.LinkingReminderAt
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *accounting.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// AuditLogModel is the persistence model for invoice audit entries.
// Rows are only ever inserted.
type AuditLogModel struct {
	BaseModel
	InvoiceID  uuid.UUID                `gorm:"type:uuid;not null;index"`
	Action     accounting.AuditAction   `gorm:"type:varchar(30);not null"`
	FromStatus accounting.InvoiceStatus `gorm:"type:varchar(20)"`
	ToStatus   accounting.InvoiceStatus `gorm:"type:varchar(20)"`
	ActorID    uuid.UUID                `gorm:"type:uuid;not null"`
	Note       string                   `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "invoice_audit_logs"
}

// ToDomain converts the persistence model to a domain AuditLogEntry.
func (m *AuditLogModel) ToDomain() *accounting.AuditLogEntry {
	return &accounting.AuditLogEntry{
		BaseEntity: m.BaseModel.ToDomain(),
		InvoiceID:  m.InvoiceID,
		Action:     m.Action,
		FromStatus: m.FromStatus,
		ToStatus:   m.ToStatus,
		ActorID:    m.ActorID,
		Note:       m.Note,
	}
}

// AuditLogModelFromDomain creates a new persistence model from a domain AuditLogEntry.
func AuditLogModelFromDomain(e *accounting.AuditLogEntry) *AuditLogModel {
	m := &AuditLogModel{
		InvoiceID:  e.InvoiceID,
		Action:     e.Action,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		ActorID:    e.ActorID,
		Note:       e.Note,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// AssignmentRuleModel is the persistence model for assignment rules.
type AssignmentRuleModel struct {
	AggregateModel
	Kind         accounting.RuleKind          `gorm:"type:varchar(10);not null;index:idx_rules_kind_priority,priority:1"`
	Priority     int                          `gorm:"not null;index:idx_rules_kind_priority,priority:2"`
	Phrase       string                       `gorm:"type:varchar(200)"`
	ContractorID *uuid.UUID                   `gorm:"type:uuid;index"`
	FarmID       *uuid.UUID                   `gorm:"type:uuid;index"`
	Direction    *accounting.InvoiceDirection `gorm:"type:varchar(20)"`
	AssignUserID *uuid.UUID                   `gorm:"type:uuid"`
	AssignModule *accounting.ModuleType       `gorm:"type:varchar(30)"`
	Active       bool                         `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (AssignmentRuleModel) TableName() string {
	return "assignment_rules"
}

// ToDomain converts the persistence model to a domain AssignmentRule.
func (m *AssignmentRuleModel) ToDomain() *accounting.AssignmentRule {
	return &accounting.AssignmentRule{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Kind:              m.Kind,
		Priority:          m.Priority,
		Phrase:            m.Phrase,
		ContractorID:      m.ContractorID,
		FarmID:            m.FarmID,
		Direction:         m.Direction,
		AssignUserID:      m.AssignUserID,
		AssignModule:      m.AssignModule,
		Active:            m.Active,
	}
}

// AssignmentRuleModelFromDomain creates a new persistence model from a domain AssignmentRule.
func AssignmentRuleModelFromDomain(r *accounting.AssignmentRule) *AssignmentRuleModel {
	m := &AssignmentRuleModel{
		Kind:         r.Kind,
		Priority:     r.Priority,
		Phrase:       r.Phrase,
		ContractorID: r.ContractorID,
		FarmID:       r.FarmID,
		Direction:    r.Direction,
		AssignUserID: r.AssignUserID,
		AssignModule: r.AssignModule,
		Active:       r.Active,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// InvoiceRelationModel is the persistence model for directed invoice relations.
type InvoiceRelationModel struct {
	BaseModel
	SourceID uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_relations_source_target,priority:1"`
	TargetID uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_relations_source_target,priority:2"`
	Type     accounting.RelationType `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (InvoiceRelationModel) TableName() string {
	return "invoice_relations"
}

// ToDomain converts the persistence model to a domain InvoiceRelation.
func (m *InvoiceRelationModel) ToDomain() *accounting.InvoiceRelation {
	return &accounting.InvoiceRelation{
		BaseEntity: m.BaseModel.ToDomain(),
		SourceID:   m.SourceID,
		TargetID:   m.TargetID,
		Type:       m.Type,
	}
}

// InvoiceRelationModelFromDomain creates a new persistence model from a domain InvoiceRelation.
func InvoiceRelationModelFromDomain(r *accounting.InvoiceRelation) *InvoiceRelationModel {
	m := &InvoiceRelationModel{
		SourceID: r.SourceID,
		TargetID: r.TargetID,
		Type:     r.Type,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
