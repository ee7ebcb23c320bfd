package operations

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmops/backend/internal/domain/shared"
)

func newTestFeedDelivery(t *testing.T) *FeedDelivery {
	t.Helper()
	d, err := NewFeedDelivery(
		"FV/2026/08/001",
		uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		decimal.RequireFromString("24.500"),
		decimal.RequireFromString("1850.00"),
		decimal.RequireFromString("45325.00"),
		decimal.RequireFromString("55749.75"),
		time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return d
}

func TestNewFeedDelivery(t *testing.T) {
	t.Run("creates unpaid delivery", func(t *testing.T) {
		d := newTestFeedDelivery(t)

		assert.False(t, d.IsPaid())
		assert.False(t, d.PriceAnomaly)
	})

	t.Run("requires invoice number", func(t *testing.T) {
		_, err := NewFeedDelivery("", uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(1),
			time.Now())
		assert.Error(t, err)
	})

	t.Run("requires positive quantity", func(t *testing.T) {
		_, err := NewFeedDelivery("FV/1", uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			decimal.Zero, decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(1),
			time.Now())

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	})
}

func TestFeedDeliveryPayment(t *testing.T) {
	d := newTestFeedDelivery(t)

	d.MarkPaid("PRZELEW/2026/113")
	require.True(t, d.IsPaid())
	require.NotNil(t, d.PaymentReference)
	assert.Equal(t, "PRZELEW/2026/113", *d.PaymentReference)

	d.ClearPayment()
	assert.False(t, d.IsPaid())
	assert.Nil(t, d.PaymentReference)
}

func TestFeedDeliveryPriceAnomaly(t *testing.T) {
	d := newTestFeedDelivery(t)

	d.FlagPriceAnomaly("unit price 40% above trailing average")

	assert.True(t, d.PriceAnomaly)
	assert.NotEmpty(t, d.PriceAnomalyNote)
}
