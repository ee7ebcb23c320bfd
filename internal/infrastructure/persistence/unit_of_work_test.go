package persistence

import (
	"context"
	"testing"

	appaccounting "github.com/farmops/backend/internal/application/accounting"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUnitOfWorkTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.InvoiceModel{},
		&models.AuditLogModel{},
		&models.FeedDeliveryModel{},
	)
	require.NoError(t, err)

	return db
}

func TestGormUnitOfWork_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db := setupUnitOfWorkTestDB(t)
		uow := NewGormUnitOfWork(db)

		inv := makeInvoice(t, "KSEF-2026-1001", "FV/2026/03/01")
		err := uow.Run(ctx, func(repos *appaccounting.Repositories) error {
			return repos.Invoices.Save(ctx, inv)
		})
		require.NoError(t, err)

		found, err := NewGormInvoiceRepository(db).FindByID(ctx, inv.GetID())
		require.NoError(t, err)
		assert.Equal(t, inv.GetID(), found.GetID())
	})

	t.Run("rolls back every write on error", func(t *testing.T) {
		db := setupUnitOfWorkTestDB(t)
		uow := NewGormUnitOfWork(db)

		inv := makeInvoice(t, "KSEF-2026-1002", "FV/2026/03/02")
		boom := shared.NewDomainError("BOOM", "forced failure")

		err := uow.Run(ctx, func(repos *appaccounting.Repositories) error {
			if err := repos.Invoices.Save(ctx, inv); err != nil {
				return err
			}
			return boom
		})
		assert.Equal(t, boom, err)

		_, err = NewGormInvoiceRepository(db).FindByID(ctx, inv.GetID())
		assert.Equal(t, shared.ErrNotFound, err)
	})
}
