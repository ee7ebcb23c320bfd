package models

import (
	"github.com/farmops/backend/internal/domain/contractor"
)

// ContractorModel is the persistence model for the Contractor aggregate root.
// ExpenseTypes is stored as a JSON array; it only ever grows.
type ContractorModel struct {
	AggregateModel
	Kind         contractor.Kind `gorm:"type:varchar(10);not null;index:idx_contractors_kind_taxid,priority:1"`
	Name         string          `gorm:"type:varchar(200);not null;index"`
	TaxID        string          `gorm:"type:varchar(30);index:idx_contractors_kind_taxid,priority:2"`
	Address      string          `gorm:"type:varchar(300)"`
	ExpenseTypes []string        `gorm:"serializer:json"`
}

// TableName returns the table name for GORM
func (ContractorModel) TableName() string {
	return "contractors"
}

// ToDomain converts the persistence model to a domain Contractor.
func (m *ContractorModel) ToDomain() *contractor.Contractor {
	return &contractor.Contractor{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Kind:              m.Kind,
		Name:              m.Name,
		TaxID:             m.TaxID,
		Address:           m.Address,
		ExpenseTypes:      m.ExpenseTypes,
	}
}

// ContractorModelFromDomain creates a new persistence model from a domain Contractor.
func ContractorModelFromDomain(c *contractor.Contractor) *ContractorModel {
	m := &ContractorModel{
		Kind:         c.Kind,
		Name:         c.Name,
		TaxID:        c.TaxID,
		Address:      c.Address,
		ExpenseTypes: c.ExpenseTypes,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}
