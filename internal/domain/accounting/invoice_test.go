package accounting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmops/backend/internal/domain/shared"
)

func newTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(
		"ext-001", "FV/2026/08/001",
		time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		"Pasze Kowalski Sp. z o.o.", "5260305644",
		"Ferma Drobiu Nowak", "1132619524",
		decimal.RequireFromString("12300.00"),
		decimal.RequireFromString("10000.00"),
		decimal.RequireFromString("2300.00"),
		InvoiceSourceExchange, DirectionPurchase,
	)
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("creates invoice in status New", func(t *testing.T) {
		inv := newTestInvoice(t)

		assert.Equal(t, InvoiceStatusNew, inv.Status)
		assert.Equal(t, PaymentStatusUnpaid, inv.PaymentStatus)
		assert.Equal(t, ModuleTypeNone, inv.ModuleType)
		assert.Nil(t, inv.ModuleEntityID)
		assert.False(t, inv.Linked)
		assert.False(t, inv.NoLinking)
	})

	t.Run("fails with empty external ref", func(t *testing.T) {
		_, err := NewInvoice("", "FV/1", time.Now(), "S", "", "B", "",
			decimal.Zero, decimal.Zero, decimal.Zero, InvoiceSourceManual, DirectionPurchase)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_EXTERNAL_REF", domainErr.Code)
	})

	t.Run("fails with empty number", func(t *testing.T) {
		_, err := NewInvoice("ext", "", time.Now(), "S", "", "B", "",
			decimal.Zero, decimal.Zero, decimal.Zero, InvoiceSourceManual, DirectionPurchase)

		assert.Error(t, err)
	})

	t.Run("fails with negative amount", func(t *testing.T) {
		_, err := NewInvoice("ext", "FV/1", time.Now(), "S", "", "B", "",
			decimal.RequireFromString("-1"), decimal.Zero, decimal.Zero,
			InvoiceSourceManual, DirectionPurchase)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	})

	t.Run("fails with unknown source", func(t *testing.T) {
		_, err := NewInvoice("ext", "FV/1", time.Now(), "S", "", "B", "",
			decimal.Zero, decimal.Zero, decimal.Zero, InvoiceSource("CARRIER_PIGEON"), DirectionPurchase)

		assert.Error(t, err)
	})
}

func TestInvoiceAccept(t *testing.T) {
	t.Run("accepts into materializing module with entity", func(t *testing.T) {
		inv := newTestInvoice(t)
		entityID := uuid.New()

		err := inv.Accept(ModuleTypeFeeds, &entityID)

		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusAccepted, inv.Status)
		assert.Equal(t, ModuleTypeFeeds, inv.ModuleType)
		require.NotNil(t, inv.ModuleEntityID)
		assert.Equal(t, entityID, *inv.ModuleEntityID)
	})

	t.Run("accepts into non-materializing module without entity", func(t *testing.T) {
		inv := newTestInvoice(t)

		err := inv.Accept(ModuleTypeFarmstead, nil)

		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusAccepted, inv.Status)
		assert.Nil(t, inv.ModuleEntityID)
	})

	t.Run("materializing module requires an entity", func(t *testing.T) {
		inv := newTestInvoice(t)

		err := inv.Accept(ModuleTypeGas, nil)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "MISSING_ENTITY", domainErr.Code)
	})

	t.Run("non-materializing module rejects an entity", func(t *testing.T) {
		inv := newTestInvoice(t)
		entityID := uuid.New()

		err := inv.Accept(ModuleTypeOther, &entityID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNEXPECTED_ENTITY", domainErr.Code)
	})

	t.Run("cannot accept twice", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Accept(ModuleTypeOther, nil))

		err := inv.Accept(ModuleTypeOther, nil)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_ACCEPTED", domainErr.Code)
	})

	t.Run("rejected invoice can be accepted again", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Reject())

		err := inv.Accept(ModuleTypeOther, nil)

		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusAccepted, inv.Status)
	})

	t.Run("cannot accept after transfer to office", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Accept(ModuleTypeOther, nil))
		require.NoError(t, inv.MarkSentToOffice())

		err := inv.Accept(ModuleTypeOther, nil)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_SENT", domainErr.Code)
	})
}

func TestInvoiceReject(t *testing.T) {
	t.Run("reject clears accept-time fields", func(t *testing.T) {
		inv := newTestInvoice(t)
		entityID := uuid.New()
		userID := uuid.New()
		farmID := uuid.New()
		due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

		require.NoError(t, inv.Accept(ModuleTypeFeeds, &entityID))
		inv.SetAssignedUser(&userID)
		inv.SetFarmCycle(&farmID, nil)
		inv.SetDueDate(&due)
		inv.SetVATDeduction(VATDeductionFull)
		inv.SetComment("fodder, batch 12")
		require.NoError(t, inv.SetPaymentStatus(PaymentStatusPaidTransfer))

		require.NoError(t, inv.Reject())

		assert.Equal(t, InvoiceStatusRejected, inv.Status)
		assert.Equal(t, PaymentStatusUnpaid, inv.PaymentStatus)
		assert.Equal(t, ModuleTypeNone, inv.ModuleType)
		assert.Nil(t, inv.ModuleEntityID)
		assert.Nil(t, inv.AssignedUserID)
		assert.Nil(t, inv.FarmID)
		assert.Nil(t, inv.DueDate)
		assert.Equal(t, VATDeductionNone, inv.VATDeduction)
		assert.Empty(t, inv.Comment)
	})

	t.Run("cannot reject after transfer to office", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Accept(ModuleTypeOther, nil))
		require.NoError(t, inv.MarkSentToOffice())

		err := inv.Reject()

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_SENT", domainErr.Code)
	})
}

func TestInvoiceMarkSentToOffice(t *testing.T) {
	t.Run("only accepted invoices can be sent", func(t *testing.T) {
		inv := newTestInvoice(t)

		err := inv.MarkSentToOffice()

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_ACCEPTED", domainErr.Code)
	})

	t.Run("accepted invoice moves to sent", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Accept(ModuleTypeOther, nil))

		require.NoError(t, inv.MarkSentToOffice())

		assert.Equal(t, InvoiceStatusSentToOffice, inv.Status)
	})
}

func TestInvoiceReassign(t *testing.T) {
	t.Run("reassigns when expectation matches", func(t *testing.T) {
		inv := newTestInvoice(t)
		current := uuid.New()
		next := uuid.New()
		inv.SetAssignedUser(&current)

		err := inv.Reassign(next, &current)

		require.NoError(t, err)
		require.NotNil(t, inv.AssignedUserID)
		assert.Equal(t, next, *inv.AssignedUserID)
	})

	t.Run("reassigns an unassigned invoice", func(t *testing.T) {
		inv := newTestInvoice(t)
		next := uuid.New()

		err := inv.Reassign(next, nil)

		require.NoError(t, err)
	})

	t.Run("conflicts when somebody else reassigned first", func(t *testing.T) {
		inv := newTestInvoice(t)
		other := uuid.New()
		stale := uuid.New()
		inv.SetAssignedUser(&other)

		err := inv.Reassign(uuid.New(), &stale)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ASSIGNMENT_CONFLICT", domainErr.Code)
	})
}

func TestInvoiceLinking(t *testing.T) {
	t.Run("no-linking refused when a module record exists", func(t *testing.T) {
		inv := newTestInvoice(t)
		entityID := uuid.New()
		require.NoError(t, inv.Accept(ModuleTypeSales, &entityID))

		err := inv.MarkNoLinking()

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_LINKED", domainErr.Code)
	})

	t.Run("no-linking allowed otherwise", func(t *testing.T) {
		inv := newTestInvoice(t)

		require.NoError(t, inv.MarkNoLinking())

		assert.True(t, inv.NoLinking)
	})

	t.Run("mark linked sets the flag", func(t *testing.T) {
		inv := newTestInvoice(t)
		inv.MarkLinked()
		assert.True(t, inv.Linked)
	})
}

func TestInvoicePostponeReminder(t *testing.T) {
	t.Run("postpones relative to now when unset", func(t *testing.T) {
		inv := newTestInvoice(t)

		require.NoError(t, inv.PostponeReminder(3))

		require.NotNil(t, inv.LinkingReminderAt)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, 3), *inv.LinkingReminderAt, time.Minute)
	})

	t.Run("postpones relative to the existing reminder", func(t *testing.T) {
		inv := newTestInvoice(t)
		existing := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
		inv.LinkingReminderAt = &existing

		require.NoError(t, inv.PostponeReminder(7))

		assert.Equal(t, existing.AddDate(0, 0, 7), *inv.LinkingReminderAt)
	})

	t.Run("rejects non-positive days", func(t *testing.T) {
		inv := newTestInvoice(t)

		err := inv.PostponeReminder(0)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_POSTPONE", domainErr.Code)
	})
}

func TestInvoiceSetDefaultModule(t *testing.T) {
	t.Run("suggests a module on a new invoice", func(t *testing.T) {
		inv := newTestInvoice(t)

		require.NoError(t, inv.SetDefaultModule(ModuleTypeGas))

		assert.Equal(t, ModuleTypeGas, inv.ModuleType)
		assert.Equal(t, InvoiceStatusNew, inv.Status)
	})

	t.Run("refused after accept", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Accept(ModuleTypeOther, nil))

		err := inv.SetDefaultModule(ModuleTypeGas)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_NEW", domainErr.Code)
	})
}

func TestInvoiceVersioning(t *testing.T) {
	inv := newTestInvoice(t)
	before := inv.Version

	inv.SetComment("checked by Anna")

	assert.Equal(t, before+1, inv.Version)
}

func TestPaymentStatusIsPaid(t *testing.T) {
	assert.True(t, PaymentStatusPaidCash.IsPaid())
	assert.True(t, PaymentStatusPaidTransfer.IsPaid())
	assert.False(t, PaymentStatusUnpaid.IsPaid())
	assert.False(t, PaymentStatusPartiallyPaid.IsPaid())
	assert.False(t, PaymentStatusSuspended.IsPaid())
}

func TestModuleTypeIsMaterializing(t *testing.T) {
	assert.True(t, ModuleTypeFeeds.IsMaterializing())
	assert.True(t, ModuleTypeGas.IsMaterializing())
	assert.True(t, ModuleTypeProductionExpenses.IsMaterializing())
	assert.True(t, ModuleTypeSales.IsMaterializing())
	assert.False(t, ModuleTypeNone.IsMaterializing())
	assert.False(t, ModuleTypeFarmstead.IsMaterializing())
	assert.False(t, ModuleTypeOther.IsMaterializing())
}
