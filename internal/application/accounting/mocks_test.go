package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/farmops/backend/internal/domain/accounting"
	"github.com/farmops/backend/internal/domain/contractor"
	"github.com/farmops/backend/internal/domain/operations"
)

// =============================================================================
// Mock Repositories shared across the application service tests
// =============================================================================

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]accounting.Invoice, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]accounting.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByExternalRef(ctx context.Context, externalRef string) (*accounting.Invoice, error) {
	args := m.Called(ctx, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByExternalRef(ctx context.Context, externalRef string) (bool, error) {
	args := m.Called(ctx, externalRef)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter accounting.InvoiceFilter) ([]accounting.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]accounting.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter accounting.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *accounting.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *accounting.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Append(ctx context.Context, entry *accounting.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]accounting.AuditLogEntry, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]accounting.AuditLogEntry), args.Error(1)
}

type MockAssignmentRuleRepository struct {
	mock.Mock
}

func (m *MockAssignmentRuleRepository) FindActiveByKind(ctx context.Context, kind accounting.RuleKind) ([]accounting.AssignmentRule, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]accounting.AssignmentRule), args.Error(1)
}

func (m *MockAssignmentRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.AssignmentRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.AssignmentRule), args.Error(1)
}

func (m *MockAssignmentRuleRepository) FindAll(ctx context.Context, kind *accounting.RuleKind) ([]accounting.AssignmentRule, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]accounting.AssignmentRule), args.Error(1)
}

func (m *MockAssignmentRuleRepository) Save(ctx context.Context, rule *accounting.AssignmentRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockAssignmentRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockInvoiceRelationRepository struct {
	mock.Mock
}

func (m *MockInvoiceRelationRepository) Save(ctx context.Context, relation *accounting.InvoiceRelation) error {
	args := m.Called(ctx, relation)
	return args.Error(0)
}

func (m *MockInvoiceRelationRepository) FindBySource(ctx context.Context, sourceID uuid.UUID) ([]accounting.InvoiceRelation, error) {
	args := m.Called(ctx, sourceID)
	return args.Get(0).([]accounting.InvoiceRelation), args.Error(1)
}

type MockContractorRepository struct {
	mock.Mock
}

func (m *MockContractorRepository) FindByID(ctx context.Context, id uuid.UUID) (*contractor.Contractor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractor.Contractor), args.Error(1)
}

func (m *MockContractorRepository) FindByTaxID(ctx context.Context, kind contractor.Kind, normalizedTaxID string) (*contractor.Contractor, error) {
	args := m.Called(ctx, kind, normalizedTaxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractor.Contractor), args.Error(1)
}

func (m *MockContractorRepository) FindByName(ctx context.Context, kind contractor.Kind, name string) (*contractor.Contractor, error) {
	args := m.Called(ctx, kind, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contractor.Contractor), args.Error(1)
}

func (m *MockContractorRepository) FindAllByKind(ctx context.Context, kind contractor.Kind) ([]contractor.Contractor, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).([]contractor.Contractor), args.Error(1)
}

func (m *MockContractorRepository) Save(ctx context.Context, c *contractor.Contractor) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) FindFarm(ctx context.Context, id uuid.UUID) (*operations.Farm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*operations.Farm), args.Error(1)
}

func (m *MockReferenceRepository) FindCycle(ctx context.Context, id uuid.UUID) (*operations.Cycle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*operations.Cycle), args.Error(1)
}

func (m *MockReferenceRepository) FindHenhouse(ctx context.Context, id uuid.UUID) (*operations.Henhouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*operations.Henhouse), args.Error(1)
}

func (m *MockReferenceRepository) FindFeedItem(ctx context.Context, id uuid.UUID) (*operations.FeedItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*operations.FeedItem), args.Error(1)
}

type MockFeedDeliveryRepository struct {
	mock.Mock
}

func (m *MockFeedDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*operations.FeedDelivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*operations.FeedDelivery), args.Error(1)
}

func (m *MockFeedDeliveryRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, invoiceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockFeedDeliveryRepository) Save(ctx context.Context, delivery *operations.FeedDelivery) error {
	args := m.Called(ctx, delivery)
	return args.Error(0)
}

func (m *MockFeedDeliveryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFeedDeliveryRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFeedDeliveryRepository) PriceStats(ctx context.Context, feedItemID, farmID uuid.UUID, from, to time.Time) (operations.PriceStats, error) {
	args := m.Called(ctx, feedItemID, farmID, from, to)
	return args.Get(0).(operations.PriceStats), args.Error(1)
}

type MockGasDeliveryRepository struct {
	mock.Mock
}

func (m *MockGasDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*operations.GasDelivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*operations.GasDelivery), args.Error(1)
}

func (m *MockGasDeliveryRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, invoiceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockGasDeliveryRepository) Save(ctx context.Context, delivery *operations.GasDelivery) error {
	args := m.Called(ctx, delivery)
	return args.Error(0)
}

func (m *MockGasDeliveryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGasDeliveryRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProductionExpenseRepository struct {
	mock.Mock
}

func (m *MockProductionExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*operations.ProductionExpense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*operations.ProductionExpense), args.Error(1)
}

func (m *MockProductionExpenseRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, invoiceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductionExpenseRepository) Save(ctx context.Context, expense *operations.ProductionExpense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockProductionExpenseRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductionExpenseRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSaleInvoiceRepository struct {
	mock.Mock
}

func (m *MockSaleInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*operations.SaleInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*operations.SaleInvoice), args.Error(1)
}

func (m *MockSaleInvoiceRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, invoiceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockSaleInvoiceRepository) Save(ctx context.Context, sale *operations.SaleInvoice) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleInvoiceRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSaleInvoiceRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =============================================================================
// Collaborator stubs
// =============================================================================

// stubUnitOfWork invokes the callback directly with a fixed set of
// mock-backed repositories. There is no transaction; errors from the
// callback are returned unchanged, matching the rollback contract.
type stubUnitOfWork struct {
	repos *Repositories
}

func (u *stubUnitOfWork) Run(_ context.Context, fn func(repos *Repositories) error) error {
	return fn(u.repos)
}

type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Put(ctx context.Context, category, path string, body []byte) (string, error) {
	args := m.Called(ctx, category, path, body)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) Copy(ctx context.Context, srcCategory, srcPath, dstCategory, dstPath string) (string, error) {
	args := m.Called(ctx, srcCategory, srcPath, dstCategory, dstPath)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) Get(ctx context.Context, category, path string) ([]byte, error) {
	args := m.Called(ctx, category, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// stubParser returns a fixed document for every body.
type stubParser struct {
	doc *accounting.ParsedInvoice
}

func (p *stubParser) Parse(_ []byte) *accounting.ParsedInvoice {
	return p.doc
}

type MockExchangeSource struct {
	mock.Mock
}

func (m *MockExchangeSource) FetchSummaries(ctx context.Context, since time.Time) ([]ExchangeInvoiceSummary, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]ExchangeInvoiceSummary), args.Error(1)
}

func (m *MockExchangeSource) FetchXML(ctx context.Context, externalRef string) ([]byte, error) {
	args := m.Called(ctx, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// =============================================================================
// Test fixtures
// =============================================================================

type testMocks struct {
	invoices    *MockInvoiceRepository
	audits      *MockAuditLogRepository
	rules       *MockAssignmentRuleRepository
	relations   *MockInvoiceRelationRepository
	contractors *MockContractorRepository
	references  *MockReferenceRepository
	feeds       *MockFeedDeliveryRepository
	gas         *MockGasDeliveryRepository
	expenses    *MockProductionExpenseRepository
	sales       *MockSaleInvoiceRepository
}

func newTestMocks() *testMocks {
	return &testMocks{
		invoices:    new(MockInvoiceRepository),
		audits:      new(MockAuditLogRepository),
		rules:       new(MockAssignmentRuleRepository),
		relations:   new(MockInvoiceRelationRepository),
		contractors: new(MockContractorRepository),
		references:  new(MockReferenceRepository),
		feeds:       new(MockFeedDeliveryRepository),
		gas:         new(MockGasDeliveryRepository),
		expenses:    new(MockProductionExpenseRepository),
		sales:       new(MockSaleInvoiceRepository),
	}
}

func (m *testMocks) repositories() *Repositories {
	return &Repositories{
		Invoices:       m.invoices,
		AuditLogs:      m.audits,
		Rules:          m.rules,
		Relations:      m.relations,
		Contractors:    m.contractors,
		References:     m.references,
		FeedDeliveries: m.feeds,
		GasDeliveries:  m.gas,
		Expenses:       m.expenses,
		Sales:          m.sales,
	}
}

func (m *testMocks) uow() *stubUnitOfWork {
	return &stubUnitOfWork{repos: m.repositories()}
}

// memorySeenStore is a map-backed seen store for ingestion tests.
type memorySeenStore struct {
	seen map[string]bool
}

func newMemorySeenStore() *memorySeenStore {
	return &memorySeenStore{seen: make(map[string]bool)}
}

func (s *memorySeenStore) IsSeen(_ context.Context, externalRef string) (bool, error) {
	return s.seen[externalRef], nil
}

func (s *memorySeenStore) MarkSeen(_ context.Context, externalRef string) error {
	s.seen[externalRef] = true
	return nil
}
