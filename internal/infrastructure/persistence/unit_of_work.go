package persistence

import (
	"context"

	appaccounting "github.com/farmops/backend/internal/application/accounting"
	"gorm.io/gorm"
)

// GormUnitOfWork implements the application UnitOfWork on top of a GORM
// transaction. Every repository handed to the callback shares the same
// *gorm.DB transaction handle.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Run executes fn inside a transaction; any error rolls it back
func (u *GormUnitOfWork) Run(ctx context.Context, fn func(repos *appaccounting.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// NewRepositories builds the repository bundle bound to the given
// database handle, which may be a transaction.
func NewRepositories(db *gorm.DB) *appaccounting.Repositories {
	return &appaccounting.Repositories{
		Invoices:       NewGormInvoiceRepository(db),
		AuditLogs:      NewGormAuditLogRepository(db),
		Rules:          NewGormAssignmentRuleRepository(db),
		Relations:      NewGormInvoiceRelationRepository(db),
		Contractors:    NewGormContractorRepository(db),
		References:     NewGormReferenceRepository(db),
		FeedDeliveries: NewGormFeedDeliveryRepository(db),
		GasDeliveries:  NewGormGasDeliveryRepository(db),
		Expenses:       NewGormProductionExpenseRepository(db),
		Sales:          NewGormSaleInvoiceRepository(db),
	}
}
