package einvoice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farmops/backend/internal/domain/accounting"
	"github.com/farmops/backend/internal/infrastructure/config"
)

func newTestExchangeClient(t *testing.T, handler http.HandlerFunc) (*ExchangeClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewExchangeClient(&config.ExchangeConfig{
		BaseURL: server.URL,
		Token:   "test-token",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
	return client, server
}

func TestExchangeClient_FetchSummaries(t *testing.T) {
	t.Run("lists and converts invoice headers", func(t *testing.T) {
		client, _ := newTestExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/invoices", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.NotEmpty(t, r.URL.Query().Get("since"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"invoices":[
				{"referenceNumber":"KSEF-2026-0001","invoiceNumber":"FV/2026/01/15","issueDate":"2026-01-15",
				 "sellerName":"Pasze Krajowe","sellerTaxId":"5260250995","buyerName":"Ferma Nowak","buyerTaxId":"1132191233",
				 "grossAmount":"12300.00","netAmount":"10000.00","vatAmount":"2300.00","direction":"PURCHASE"},
				{"referenceNumber":"","invoiceNumber":"broken","issueDate":"2026-01-16",
				 "grossAmount":"1.00","netAmount":"1.00","vatAmount":"0.00","direction":"SALES"}
			]}`))
		})

		summaries, err := client.FetchSummaries(context.Background(), time.Now().AddDate(0, 0, -7))
		require.NoError(t, err)

		// Entry without a reference number is skipped, not fatal
		require.Len(t, summaries, 1)
		summary := summaries[0]
		assert.Equal(t, "KSEF-2026-0001", summary.ExternalRef)
		assert.Equal(t, "FV/2026/01/15", summary.Number)
		assert.Equal(t, accounting.DirectionPurchase, summary.Direction)
		assert.True(t, summary.GrossAmount.Equal(decimal.RequireFromString("12300.00")))
	})

	t.Run("propagates server errors", func(t *testing.T) {
		client, _ := newTestExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.FetchSummaries(context.Background(), time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})
}

func TestExchangeClient_FetchXML(t *testing.T) {
	client, _ := newTestExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/invoices/KSEF-2026-0001/xml", r.URL.Path)
		_, _ = w.Write([]byte(`<Faktura/>`))
	})

	body, err := client.FetchXML(context.Background(), "KSEF-2026-0001")
	require.NoError(t, err)
	assert.Equal(t, []byte(`<Faktura/>`), body)
}
