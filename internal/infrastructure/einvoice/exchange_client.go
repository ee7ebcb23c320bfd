package einvoice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appaccounting "github.com/farmops/backend/internal/application/accounting"
	"github.com/farmops/backend/internal/domain/accounting"
	"github.com/farmops/backend/internal/infrastructure/config"
)

// Ensure ExchangeClient implements ExchangeSource
var _ appaccounting.ExchangeSource = (*ExchangeClient)(nil)

// ExchangeClient talks to the e-invoice exchange REST API. It lists
// invoice headers issued to or by the configured taxpayer and downloads
// full XML documents by their exchange reference.
type ExchangeClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

// NewExchangeClient creates a new ExchangeClient from configuration
func NewExchangeClient(cfg *config.ExchangeConfig, logger *zap.Logger) *ExchangeClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExchangeClient{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// invoiceListResponse is the wire format of the exchange listing endpoint
type invoiceListResponse struct {
	Invoices []invoiceListItem `json:"invoices"`
}

type invoiceListItem struct {
	ReferenceNumber string          `json:"referenceNumber"`
	InvoiceNumber   string          `json:"invoiceNumber"`
	IssueDate       string          `json:"issueDate"`
	SellerName      string          `json:"sellerName"`
	SellerTaxID     string          `json:"sellerTaxId"`
	BuyerName       string          `json:"buyerName"`
	BuyerTaxID      string          `json:"buyerTaxId"`
	GrossAmount     decimal.Decimal `json:"grossAmount"`
	NetAmount       decimal.Decimal `json:"netAmount"`
	VATAmount       decimal.Decimal `json:"vatAmount"`
	Direction       string          `json:"direction"` // "PURCHASE" or "SALES"
}

// FetchSummaries lists invoice headers received since the given time
func (c *ExchangeClient) FetchSummaries(ctx context.Context, since time.Time) ([]appaccounting.ExchangeInvoiceSummary, error) {
	endpoint := fmt.Sprintf("%s/api/invoices?since=%s", c.baseURL, url.QueryEscape(since.UTC().Format(time.RFC3339)))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var listing invoiceListResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("decode invoice listing: %w", err)
	}

	summaries := make([]appaccounting.ExchangeInvoiceSummary, 0, len(listing.Invoices))
	for _, item := range listing.Invoices {
		summary, err := item.toSummary()
		if err != nil {
			c.logger.Warn("Skipping malformed exchange listing entry",
				zap.String("reference", item.ReferenceNumber),
				zap.Error(err))
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// FetchXML downloads the full invoice document by its exchange reference
func (c *ExchangeClient) FetchXML(ctx context.Context, externalRef string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/api/invoices/%s/xml", c.baseURL, url.PathEscape(externalRef))
	return c.get(ctx, endpoint)
}

func (c *ExchangeClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (i invoiceListItem) toSummary() (appaccounting.ExchangeInvoiceSummary, error) {
	if i.ReferenceNumber == "" {
		return appaccounting.ExchangeInvoiceSummary{}, fmt.Errorf("listing entry has no reference number")
	}
	issueDate, err := time.Parse("2006-01-02", i.IssueDate)
	if err != nil {
		return appaccounting.ExchangeInvoiceSummary{}, fmt.Errorf("bad issue date %q: %w", i.IssueDate, err)
	}

	direction := accounting.DirectionPurchase
	if i.Direction == string(accounting.DirectionSales) {
		direction = accounting.DirectionSales
	}

	return appaccounting.ExchangeInvoiceSummary{
		ExternalRef: i.ReferenceNumber,
		Number:      i.InvoiceNumber,
		IssueDate:   issueDate,
		SellerName:  i.SellerName,
		SellerTaxID: i.SellerTaxID,
		BuyerName:   i.BuyerName,
		BuyerTaxID:  i.BuyerTaxID,
		GrossAmount: i.GrossAmount,
		NetAmount:   i.NetAmount,
		VATAmount:   i.VATAmount,
		Direction:   direction,
	}, nil
}
