package accounting

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmops/backend/internal/domain/accounting"
	"github.com/farmops/backend/internal/domain/contractor"
	"github.com/farmops/backend/internal/domain/operations"
)

// Repositories bundles every repository participating in a single
// transaction. A UnitOfWork hands a fully bound set to the callback so
// that invoice, module record and audit writes commit or roll back
// together.
type Repositories struct {
	Invoices    accounting.InvoiceRepository
	AuditLogs   accounting.AuditLogRepository
	Rules       accounting.AssignmentRuleRepository
	Relations   accounting.InvoiceRelationRepository
	Contractors contractor.Repository
	References  operations.ReferenceRepository

	FeedDeliveries operations.FeedDeliveryRepository
	GasDeliveries  operations.GasDeliveryRepository
	Expenses       operations.ProductionExpenseRepository
	Sales          operations.SaleInvoiceRepository
}

// UnitOfWork runs fn inside a database transaction. Repositories passed
// to fn are bound to that transaction; any error from fn rolls the
// whole transaction back.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(repos *Repositories) error) error
}

// FileStore abstracts the object storage holding invoice attachments
// and per-module copies of them. Paths are relative to a category
// prefix such as "invoices" or "feed-deliveries".
type FileStore interface {
	// Put stores an object and returns its path within the category.
	Put(ctx context.Context, category, path string, body []byte) (string, error)
	// Copy duplicates an object between categories and returns the
	// destination path.
	Copy(ctx context.Context, srcCategory, srcPath, dstCategory, dstPath string) (string, error)
	Get(ctx context.Context, category, path string) ([]byte, error)
}

// InvoiceXMLParser extracts structured data from an e-invoice XML body.
// Implementations must be tolerant: a document that cannot be parsed at
// all yields nil rather than an error, and missing sections yield nil
// fields.
type InvoiceXMLParser interface {
	Parse(body []byte) *accounting.ParsedInvoice
}

// ExchangeInvoiceSummary is the header-level view of an invoice as
// listed by the external e-invoice exchange.
type ExchangeInvoiceSummary struct {
	ExternalRef string
	Number      string
	IssueDate   time.Time
	SellerName  string
	SellerTaxID string
	BuyerName   string
	BuyerTaxID  string
	GrossAmount decimal.Decimal
	NetAmount   decimal.Decimal
	VATAmount   decimal.Decimal
	Direction   accounting.InvoiceDirection
}

// ExchangeSource is the client for the external e-invoice exchange
// service.
type ExchangeSource interface {
	FetchSummaries(ctx context.Context, since time.Time) ([]ExchangeInvoiceSummary, error)
	FetchXML(ctx context.Context, externalRef string) ([]byte, error)
}

// SeenStore remembers exchange references that were already ingested so
// repeated sync runs skip them cheaply, before hitting the database.
type SeenStore interface {
	IsSeen(ctx context.Context, externalRef string) (bool, error)
	MarkSeen(ctx context.Context, externalRef string) error
}
