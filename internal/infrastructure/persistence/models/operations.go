package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/farmops/backend/internal/domain/operations"
)

// Contractor columns are nullable: an invoice whose counterparty had no
// tax id resolves to no contractor at all. Domain entities carry
// uuid.Nil for that case.
func contractorColumn(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func contractorFromColumn(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

// FeedDeliveryModel is the persistence model for feed deliveries.
type FeedDeliveryModel struct {
	AggregateModel
	InvoiceNumber    string          `gorm:"type:varchar(100);not null;index"`
	FarmID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	CycleID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	HenhouseID       *uuid.UUID      `gorm:"type:uuid"`
	ContractorID     *uuid.UUID      `gorm:"type:uuid;index"`
	FeedItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	NetAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	GrossAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DeliveryDate     time.Time       `gorm:"not null;index"`
	PaymentReference *string         `gorm:"type:varchar(100)"`
	PriceAnomaly     bool            `gorm:"not null;default:false"`
	PriceAnomalyNote string          `gorm:"type:varchar(500)"`
	SourceFilePath   string          `gorm:"type:varchar(500)"`
	DeletedAt        gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (FeedDeliveryModel) TableName() string {
	return "feed_deliveries"
}

// ToDomain converts the persistence model to a domain FeedDelivery.
func (m *FeedDeliveryModel) ToDomain() *operations.FeedDelivery {
	return &operations.FeedDelivery{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		FarmID:            m.FarmID,
		CycleID:           m.CycleID,
		HenhouseID:        m.HenhouseID,
		ContractorID:      contractorFromColumn(m.ContractorID),
		FeedItemID:        m.FeedItemID,
		Quantity:          m.Quantity,
		UnitPrice:         m.UnitPrice,
		NetAmount:         m.NetAmount,
		GrossAmount:       m.GrossAmount,
		DeliveryDate:      m.DeliveryDate,
		PaymentReference:  m.PaymentReference,
		PriceAnomaly:      m.PriceAnomaly,
		PriceAnomalyNote:  m.PriceAnomalyNote,
		SourceFilePath:    m.SourceFilePath,
	}
}

// FeedDeliveryModelFromDomain creates a new persistence model from a domain FeedDelivery.
func FeedDeliveryModelFromDomain(d *operations.FeedDelivery) *FeedDeliveryModel {
	m := &FeedDeliveryModel{
		InvoiceNumber:    d.InvoiceNumber,
		FarmID:           d.FarmID,
		CycleID:          d.CycleID,
		HenhouseID:       d.HenhouseID,
		ContractorID:     contractorColumn(d.ContractorID),
		FeedItemID:       d.FeedItemID,
		Quantity:         d.Quantity,
		UnitPrice:        d.UnitPrice,
		NetAmount:        d.NetAmount,
		GrossAmount:      d.GrossAmount,
		DeliveryDate:     d.DeliveryDate,
		PaymentReference: d.PaymentReference,
		PriceAnomaly:     d.PriceAnomaly,
		PriceAnomalyNote: d.PriceAnomalyNote,
		SourceFilePath:   d.SourceFilePath,
	}
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	return m
}

// GasDeliveryModel is the persistence model for gas deliveries.
type GasDeliveryModel struct {
	AggregateModel
	InvoiceNumber  string          `gorm:"type:varchar(100);not null;index"`
	FarmID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CycleID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ContractorID   *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DeliveryDate   time.Time       `gorm:"not null;index"`
	SourceFilePath string          `gorm:"type:varchar(500)"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (GasDeliveryModel) TableName() string {
	return "gas_deliveries"
}

// ToDomain converts the persistence model to a domain GasDelivery.
func (m *GasDeliveryModel) ToDomain() *operations.GasDelivery {
	return &operations.GasDelivery{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		FarmID:            m.FarmID,
		CycleID:           m.CycleID,
		ContractorID:      contractorFromColumn(m.ContractorID),
		Quantity:          m.Quantity,
		UnitPrice:         m.UnitPrice,
		Amount:            m.Amount,
		DeliveryDate:      m.DeliveryDate,
		SourceFilePath:    m.SourceFilePath,
	}
}

// GasDeliveryModelFromDomain creates a new persistence model from a domain GasDelivery.
func GasDeliveryModelFromDomain(d *operations.GasDelivery) *GasDeliveryModel {
	m := &GasDeliveryModel{
		InvoiceNumber:  d.InvoiceNumber,
		FarmID:         d.FarmID,
		CycleID:        d.CycleID,
		ContractorID:   contractorColumn(d.ContractorID),
		Quantity:       d.Quantity,
		UnitPrice:      d.UnitPrice,
		Amount:         d.Amount,
		DeliveryDate:   d.DeliveryDate,
		SourceFilePath: d.SourceFilePath,
	}
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	return m
}

// ProductionExpenseModel is the persistence model for production expenses.
type ProductionExpenseModel struct {
	AggregateModel
	InvoiceNumber  string          `gorm:"type:varchar(100);not null;index"`
	FarmID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CycleID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ContractorID   *uuid.UUID      `gorm:"type:uuid;index"`
	ExpenseType    string          `gorm:"type:varchar(100);not null;index"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	GrossAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	IssueDate      time.Time       `gorm:"not null;index"`
	SourceFilePath string          `gorm:"type:varchar(500)"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (ProductionExpenseModel) TableName() string {
	return "production_expenses"
}

// ToDomain converts the persistence model to a domain ProductionExpense.
func (m *ProductionExpenseModel) ToDomain() *operations.ProductionExpense {
	return &operations.ProductionExpense{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		FarmID:            m.FarmID,
		CycleID:           m.CycleID,
		ContractorID:      contractorFromColumn(m.ContractorID),
		ExpenseType:       m.ExpenseType,
		NetAmount:         m.NetAmount,
		GrossAmount:       m.GrossAmount,
		IssueDate:         m.IssueDate,
		SourceFilePath:    m.SourceFilePath,
	}
}

// ProductionExpenseModelFromDomain creates a new persistence model from a domain ProductionExpense.
func ProductionExpenseModelFromDomain(e *operations.ProductionExpense) *ProductionExpenseModel {
	m := &ProductionExpenseModel{
		InvoiceNumber:  e.InvoiceNumber,
		FarmID:         e.FarmID,
		CycleID:        e.CycleID,
		ContractorID:   contractorColumn(e.ContractorID),
		ExpenseType:    e.ExpenseType,
		NetAmount:      e.NetAmount,
		GrossAmount:    e.GrossAmount,
		IssueDate:      e.IssueDate,
		SourceFilePath: e.SourceFilePath,
	}
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	return m
}

// SaleInvoiceModel is the persistence model for sale invoices.
type SaleInvoiceModel struct {
	AggregateModel
	InvoiceNumber    string          `gorm:"type:varchar(100);not null;index"`
	FarmID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	CycleID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	SlaughterhouseID uuid.UUID       `gorm:"type:uuid;not null;index"`
	NetAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	GrossAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	IssueDate        time.Time       `gorm:"not null;index"`
	PaymentDate      *time.Time
	SourceFilePath   string         `gorm:"type:varchar(500)"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (SaleInvoiceModel) TableName() string {
	return "sale_invoices"
}

// ToDomain converts the persistence model to a domain SaleInvoice.
func (m *SaleInvoiceModel) ToDomain() *operations.SaleInvoice {
	return &operations.SaleInvoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		FarmID:            m.FarmID,
		CycleID:           m.CycleID,
		SlaughterhouseID:  m.SlaughterhouseID,
		NetAmount:         m.NetAmount,
		GrossAmount:       m.GrossAmount,
		IssueDate:         m.IssueDate,
		PaymentDate:       m.PaymentDate,
		SourceFilePath:    m.SourceFilePath,
	}
}

// SaleInvoiceModelFromDomain creates a new persistence model from a domain SaleInvoice.
func SaleInvoiceModelFromDomain(s *operations.SaleInvoice) *SaleInvoiceModel {
	m := &SaleInvoiceModel{
		InvoiceNumber:    s.InvoiceNumber,
		FarmID:           s.FarmID,
		CycleID:          s.CycleID,
		SlaughterhouseID: s.SlaughterhouseID,
		NetAmount:        s.NetAmount,
		GrossAmount:      s.GrossAmount,
		IssueDate:        s.IssueDate,
		PaymentDate:      s.PaymentDate,
		SourceFilePath:   s.SourceFilePath,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// FarmModel is the persistence model for farms.
type FarmModel struct {
	BaseModel
	Name string `gorm:"type:varchar(200);not null"`
	Code string `gorm:"type:varchar(50);uniqueIndex"`
}

// TableName returns the table name for GORM
func (FarmModel) TableName() string {
	return "farms"
}

// ToDomain converts the persistence model to a domain Farm.
func (m *FarmModel) ToDomain() *operations.Farm {
	return &operations.Farm{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Code:       m.Code,
	}
}

// CycleModel is the persistence model for rearing cycles.
type CycleModel struct {
	BaseModel
	FarmID uuid.UUID `gorm:"type:uuid;not null;index"`
	Number string    `gorm:"type:varchar(50);not null"`
	Closed bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CycleModel) TableName() string {
	return "cycles"
}

// ToDomain converts the persistence model to a domain Cycle.
func (m *CycleModel) ToDomain() *operations.Cycle {
	return &operations.Cycle{
		BaseEntity: m.BaseModel.ToDomain(),
		FarmID:     m.FarmID,
		Number:     m.Number,
		Closed:     m.Closed,
	}
}

// HenhouseModel is the persistence model for henhouses.
type HenhouseModel struct {
	BaseModel
	FarmID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name   string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (HenhouseModel) TableName() string {
	return "henhouses"
}

// ToDomain converts the persistence model to a domain Henhouse.
func (m *HenhouseModel) ToDomain() *operations.Henhouse {
	return &operations.Henhouse{
		BaseEntity: m.BaseModel.ToDomain(),
		FarmID:     m.FarmID,
		Name:       m.Name,
	}
}

// FeedItemModel is the persistence model for feed items.
type FeedItemModel struct {
	BaseModel
	Name string `gorm:"type:varchar(200);not null"`
	Code string `gorm:"type:varchar(50);uniqueIndex"`
}

// TableName returns the table name for GORM
func (FeedItemModel) TableName() string {
	return "feed_items"
}

// ToDomain converts the persistence model to a domain FeedItem.
func (m *FeedItemModel) ToDomain() *operations.FeedItem {
	return &operations.FeedItem{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Code:       m.Code,
	}
}
