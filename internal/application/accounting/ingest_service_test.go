package accounting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/farmops/backend/internal/domain/accounting"
)

func newIngestFixture(m *testMocks, exchange ExchangeSource, seen SeenStore, parser InvoiceXMLParser, files FileStore) *IngestService {
	logger := zap.NewNop()
	assignment := NewAssignmentService(parser, logger)
	return NewIngestService(m.uow(), exchange, seen, parser, files, assignment, logger)
}

func exchangeSummary(ref, number string) ExchangeInvoiceSummary {
	return ExchangeInvoiceSummary{
		ExternalRef: ref,
		Number:      number,
		IssueDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		SellerName:  "Pasze Krajowe Sp. z o.o.",
		SellerTaxID: "PL5260250995",
		BuyerName:   "Ferma Nowak",
		BuyerTaxID:  "PL1132191233",
		GrossAmount: decimal.NewFromInt(12300),
		NetAmount:   decimal.NewFromInt(10000),
		VATAmount:   decimal.NewFromInt(2300),
		Direction:   accounting.DirectionPurchase,
	}
}

func expectNoRules(m *testMocks) {
	m.rules.On("FindActiveByKind", mock.Anything, accounting.RuleKindUser).Return([]accounting.AssignmentRule{}, nil)
	m.rules.On("FindActiveByKind", mock.Anything, accounting.RuleKindModule).Return([]accounting.AssignmentRule{}, nil)
}

func TestIngestService_SyncFromExchange_ImportsNewInvoices(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	m := newTestMocks()
	exchange := new(MockExchangeSource)
	seen := newMemorySeenStore()
	files := new(MockFileStore)
	service := newIngestFixture(m, exchange, seen, &stubParser{}, files)

	exchange.On("FetchSummaries", mock.Anything, since).Return([]ExchangeInvoiceSummary{
		exchangeSummary("KSEF-2026-0101", "FV/2026/02/01"),
	}, nil)
	exchange.On("FetchXML", mock.Anything, "KSEF-2026-0101").Return([]byte("<Faktura/>"), nil)
	files.On("Put", mock.Anything, "invoices", "KSEF-2026-0101.xml", []byte("<Faktura/>")).Return("KSEF-2026-0101.xml", nil)
	m.invoices.On("ExistsByExternalRef", mock.Anything, "KSEF-2026-0101").Return(false, nil)
	expectNoRules(m)

	var saved *accounting.Invoice
	m.invoices.On("Save", mock.Anything, mock.AnythingOfType("*accounting.Invoice")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*accounting.Invoice)
	}).Return(nil)
	m.audits.On("Append", mock.Anything, mock.MatchedBy(func(e *accounting.AuditLogEntry) bool {
		return e.Action == accounting.AuditActionCreated
	})).Return(nil)

	result, err := service.SyncFromExchange(ctx, actorID, since)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, accounting.InvoiceStatusNew, saved.Status)
	assert.Equal(t, accounting.InvoiceSourceExchange, saved.Source)
	assert.Equal(t, "<Faktura/>", saved.XMLBody)

	ok, _ := seen.IsSeen(ctx, "KSEF-2026-0101")
	assert.True(t, ok)
}

func TestIngestService_SyncFromExchange_SkipsSeenAndExisting(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	since := time.Now().Add(-24 * time.Hour)

	m := newTestMocks()
	exchange := new(MockExchangeSource)
	seen := newMemorySeenStore()
	_ = seen.MarkSeen(ctx, "KSEF-2026-0001")
	service := newIngestFixture(m, exchange, seen, &stubParser{}, new(MockFileStore))

	exchange.On("FetchSummaries", mock.Anything, since).Return([]ExchangeInvoiceSummary{
		exchangeSummary("KSEF-2026-0001", "FV/2026/01/15"),
		exchangeSummary("KSEF-2026-0002", "FV/2026/01/16"),
	}, nil)
	exchange.On("FetchXML", mock.Anything, "KSEF-2026-0002").Return(nil, errors.New("timeout"))
	m.invoices.On("ExistsByExternalRef", mock.Anything, "KSEF-2026-0002").Return(true, nil)

	result, err := service.SyncFromExchange(ctx, actorID, since)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	m.invoices.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIngestService_SyncFromExchange_BadDocumentDoesNotStopRun(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	since := time.Now().Add(-24 * time.Hour)

	m := newTestMocks()
	exchange := new(MockExchangeSource)
	seen := newMemorySeenStore()
	files := new(MockFileStore)
	service := newIngestFixture(m, exchange, seen, &stubParser{}, files)

	bad := exchangeSummary("KSEF-2026-0003", "")
	good := exchangeSummary("KSEF-2026-0004", "FV/2026/01/18")

	exchange.On("FetchSummaries", mock.Anything, since).Return([]ExchangeInvoiceSummary{bad, good}, nil)
	exchange.On("FetchXML", mock.Anything, "KSEF-2026-0004").Return([]byte("<Faktura/>"), nil)
	files.On("Put", mock.Anything, "invoices", "KSEF-2026-0004.xml", mock.Anything).Return("KSEF-2026-0004.xml", nil)
	m.invoices.On("ExistsByExternalRef", mock.Anything, "KSEF-2026-0004").Return(false, nil)
	expectNoRules(m)
	m.invoices.On("Save", mock.Anything, mock.AnythingOfType("*accounting.Invoice")).Return(nil)
	m.audits.On("Append", mock.Anything, mock.AnythingOfType("*accounting.AuditLogEntry")).Return(nil)

	result, err := service.SyncFromExchange(ctx, actorID, since)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "KSEF-2026-0003")
}

func TestIngestService_SyncFromExchange_AppliesAssignmentRules(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	assignee := uuid.New()
	since := time.Now().Add(-24 * time.Hour)

	m := newTestMocks()
	exchange := new(MockExchangeSource)
	files := new(MockFileStore)
	service := newIngestFixture(m, exchange, newMemorySeenStore(), &stubParser{}, files)

	exchange.On("FetchSummaries", mock.Anything, since).Return([]ExchangeInvoiceSummary{
		exchangeSummary("KSEF-2026-0201", "FV/2026/02/10"),
	}, nil)
	exchange.On("FetchXML", mock.Anything, "KSEF-2026-0201").Return([]byte("<Faktura/>"), nil)
	files.On("Put", mock.Anything, "invoices", mock.Anything, mock.Anything).Return("KSEF-2026-0201.xml", nil)
	m.invoices.On("ExistsByExternalRef", mock.Anything, "KSEF-2026-0201").Return(false, nil)

	moduleType := accounting.ModuleTypeFeeds
	moduleRule, _ := accounting.NewAssignmentRule(accounting.RuleKindModule, 1)
	moduleRule.Phrase = "pasze"
	moduleRule.AssignModule = &moduleType

	m.rules.On("FindActiveByKind", mock.Anything, accounting.RuleKindUser).Return([]accounting.AssignmentRule{
		userRule(1, "pasze", assignee),
	}, nil)
	m.rules.On("FindActiveByKind", mock.Anything, accounting.RuleKindModule).Return([]accounting.AssignmentRule{*moduleRule}, nil)
	expectNoContractorMatch(m, "5260250995")

	var saved *accounting.Invoice
	m.invoices.On("Save", mock.Anything, mock.AnythingOfType("*accounting.Invoice")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*accounting.Invoice)
	}).Return(nil)
	m.audits.On("Append", mock.Anything, mock.AnythingOfType("*accounting.AuditLogEntry")).Return(nil)

	_, err := service.SyncFromExchange(ctx, actorID, since)

	assert.NoError(t, err)
	assert.Equal(t, assignee, *saved.AssignedUserID)
	assert.Equal(t, accounting.ModuleTypeFeeds, saved.ModuleType)
	assert.Nil(t, saved.ModuleEntityID)
}

func TestIngestService_ImportXML_Unparseable(t *testing.T) {
	m := newTestMocks()
	service := newIngestFixture(m, new(MockExchangeSource), newMemorySeenStore(), &stubParser{}, new(MockFileStore))

	_, err := service.ImportXML(context.Background(), uuid.New(), "scan.xml", []byte("not xml"), accounting.DirectionPurchase)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not a readable e-invoice")
}

func TestIngestService_ImportXML_CreatesManualInvoice(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	issue := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	due := issue.AddDate(0, 0, 14)

	m := newTestMocks()
	files := new(MockFileStore)
	doc := &accounting.ParsedInvoice{
		Number:      "FV/2026/02/12",
		IssueDate:   &issue,
		GrossAmount: decimal.NewFromInt(615),
		NetAmount:   decimal.NewFromInt(500),
		VATAmount:   decimal.NewFromInt(115),
		Seller:      accounting.ParsedParty{Name: "GazTrade SA", TaxID: "5260250995"},
		Buyer:       accounting.ParsedParty{Name: "Ferma Nowak", TaxID: "1132191233"},
		Payment:     accounting.ParsedPayment{DueDate: &due},
	}
	service := newIngestFixture(m, new(MockExchangeSource), newMemorySeenStore(), &stubParser{doc: doc}, files)

	files.On("Put", mock.Anything, "invoices", mock.Anything, mock.Anything).Return("upload.xml", nil)
	expectNoRules(m)
	m.invoices.On("Save", mock.Anything, mock.AnythingOfType("*accounting.Invoice")).Return(nil)
	m.audits.On("Append", mock.Anything, mock.AnythingOfType("*accounting.AuditLogEntry")).Return(nil)

	inv, err := service.ImportXML(ctx, actorID, "scan.xml", []byte("<Faktura/>"), accounting.DirectionPurchase)

	assert.NoError(t, err)
	assert.Equal(t, "FV/2026/02/12", inv.Number)
	assert.Equal(t, accounting.InvoiceSourceManual, inv.Source)
	assert.True(t, inv.IsManual())
	assert.Equal(t, due, *inv.DueDate)
	assert.Equal(t, "upload.xml", inv.AttachmentPath)
}

func TestIngestService_CreateManual(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()

	m := newTestMocks()
	service := newIngestFixture(m, new(MockExchangeSource), newMemorySeenStore(), &stubParser{}, new(MockFileStore))

	expectNoRules(m)
	m.invoices.On("Save", mock.Anything, mock.AnythingOfType("*accounting.Invoice")).Return(nil)
	m.audits.On("Append", mock.Anything, mock.MatchedBy(func(e *accounting.AuditLogEntry) bool {
		return e.Action == accounting.AuditActionCreated && e.Note == "Manual entry"
	})).Return(nil)

	paid := accounting.PaymentStatusPaidCash
	inv, err := service.CreateManual(ctx, actorID, CreateManualInvoiceRequest{
		Number:        "R/2026/31",
		IssueDate:     time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
		SellerName:    "Sklep Rolniczy",
		GrossAmount:   decimal.NewFromInt(246),
		NetAmount:     decimal.NewFromInt(200),
		VATAmount:     decimal.NewFromInt(46),
		Direction:     accounting.DirectionPurchase,
		PaymentStatus: &paid,
	})

	assert.NoError(t, err)
	assert.Equal(t, accounting.PaymentStatusPaidCash, inv.PaymentStatus)
	assert.True(t, inv.IsManual())
	assert.Contains(t, inv.ExternalRef, "MANUAL-")
}

func TestIngestService_CreateManual_MissingNumber(t *testing.T) {
	m := newTestMocks()
	service := newIngestFixture(m, new(MockExchangeSource), newMemorySeenStore(), &stubParser{}, new(MockFileStore))

	_, err := service.CreateManual(context.Background(), uuid.New(), CreateManualInvoiceRequest{
		IssueDate: time.Now(),
		Direction: accounting.DirectionPurchase,
	})

	assert.Error(t, err)
	m.invoices.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
