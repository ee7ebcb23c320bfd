package accounting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/farmops/backend/internal/domain/accounting"
	"github.com/farmops/backend/internal/domain/contractor"
	"github.com/farmops/backend/internal/domain/operations"
	"github.com/farmops/backend/internal/domain/shared"
)

const (
	categoryInvoices    = "invoices"
	categoryFeeds       = "feed-deliveries"
	categoryGas         = "gas-deliveries"
	categoryExpenses    = "production-expenses"
	categorySales       = "sale-invoices"
	priceAnomalyWindow  = 90 * 24 * time.Hour
	priceAnomalyMinimum = 3
)

// priceAnomalyTolerance is the allowed deviation from the historical
// average unit price before a feed delivery gets flagged.
var priceAnomalyTolerance = decimal.NewFromFloat(0.30)

// moduleOps binds one materializing module type to its create and
// remove behavior. Create validates the payload, resolves references,
// checks for an existing record with the same invoice number and
// persists the new record; Remove deletes an existing record, softly or
// permanently depending on the lifecycle operation that triggered it.
type moduleOps struct {
	create func(ctx context.Context, repos *Repositories, inv *accounting.Invoice, payload ModulePayload) (uuid.UUID, error)
	remove func(ctx context.Context, repos *Repositories, id uuid.UUID, soft bool) error
}

// ModuleSynchronizer materializes and retracts business-module records
// for invoices. All of its methods expect transaction-bound
// repositories so the module write shares the caller's transaction.
type ModuleSynchronizer struct {
	files       FileStore
	contractors *ContractorResolver
	logger      *zap.Logger
	ops         map[accounting.ModuleType]moduleOps
}

func NewModuleSynchronizer(files FileStore, contractors *ContractorResolver, logger *zap.Logger) *ModuleSynchronizer {
	s := &ModuleSynchronizer{
		files:       files,
		contractors: contractors,
		logger:      logger,
	}
	s.ops = map[accounting.ModuleType]moduleOps{
		accounting.ModuleTypeFeeds: {
			create: s.createFeedDelivery,
			remove: func(ctx context.Context, repos *Repositories, id uuid.UUID, soft bool) error {
				if soft {
					return repos.FeedDeliveries.SoftDelete(ctx, id)
				}
				return repos.FeedDeliveries.HardDelete(ctx, id)
			},
		},
		accounting.ModuleTypeGas: {
			create: s.createGasDelivery,
			remove: func(ctx context.Context, repos *Repositories, id uuid.UUID, soft bool) error {
				if soft {
					return repos.GasDeliveries.SoftDelete(ctx, id)
				}
				return repos.GasDeliveries.HardDelete(ctx, id)
			},
		},
		accounting.ModuleTypeProductionExpenses: {
			create: s.createProductionExpense,
			remove: func(ctx context.Context, repos *Repositories, id uuid.UUID, soft bool) error {
				if soft {
					return repos.Expenses.SoftDelete(ctx, id)
				}
				return repos.Expenses.HardDelete(ctx, id)
			},
		},
		accounting.ModuleTypeSales: {
			create: s.createSaleInvoice,
			remove: func(ctx context.Context, repos *Repositories, id uuid.UUID, soft bool) error {
				if soft {
					return repos.Sales.SoftDelete(ctx, id)
				}
				return repos.Sales.HardDelete(ctx, id)
			},
		},
	}
	return s
}

// Create materializes a module record for the invoice and returns the
// new record's id.
func (s *ModuleSynchronizer) Create(ctx context.Context, repos *Repositories, inv *accounting.Invoice, moduleType accounting.ModuleType, payload ModulePayload) (uuid.UUID, error) {
	ops, ok := s.ops[moduleType]
	if !ok {
		return uuid.Nil, shared.NewDomainError("UNSUPPORTED_MODULE", fmt.Sprintf("Module %s does not materialize records", moduleType))
	}
	return ops.create(ctx, repos, inv, payload)
}

// Remove retracts a previously materialized module record. A soft
// removal keeps the row and its copied file recoverable; a hard removal
// erases the row for good.
func (s *ModuleSynchronizer) Remove(ctx context.Context, repos *Repositories, moduleType accounting.ModuleType, entityID uuid.UUID, soft bool) error {
	ops, ok := s.ops[moduleType]
	if !ok {
		return shared.NewDomainError("UNSUPPORTED_MODULE", fmt.Sprintf("Module %s does not materialize records", moduleType))
	}
	return ops.remove(ctx, repos, entityID, soft)
}

func (s *ModuleSynchronizer) createFeedDelivery(ctx context.Context, repos *Repositories, inv *accounting.Invoice, payload ModulePayload) (uuid.UUID, error) {
	p := payload.Feed
	if p == nil {
		return uuid.Nil, shared.NewDomainError("MISSING_PAYLOAD", "Feed delivery details are required")
	}
	if err := s.checkDuplicate(ctx, repos.FeedDeliveries.ExistsByInvoiceNumber, inv.Number); err != nil {
		return uuid.Nil, err
	}
	if err := s.resolveFarmCycle(ctx, repos, p.FarmID, p.CycleID); err != nil {
		return uuid.Nil, err
	}
	if _, err := repos.References.FindFeedItem(ctx, p.FeedItemID); err != nil {
		return uuid.Nil, missingReference("Feed item", p.FeedItemID, err)
	}
	if p.HenhouseID != nil {
		if _, err := repos.References.FindHenhouse(ctx, *p.HenhouseID); err != nil {
			return uuid.Nil, missingReference("Henhouse", *p.HenhouseID, err)
		}
	}

	contractorID, err := s.resolveContractor(ctx, repos, contractor.KindFeed, p.ContractorID, p.ContractorName, p.ContractorTaxID, inv, "")
	if err != nil {
		return uuid.Nil, err
	}

	delivery, err := operations.NewFeedDelivery(
		inv.Number,
		p.FarmID, p.CycleID, contractorID, p.FeedItemID,
		p.Quantity, p.UnitPrice, inv.NetAmount, inv.GrossAmount,
		p.DeliveryDate,
	)
	if err != nil {
		return uuid.Nil, err
	}
	delivery.HenhouseID = p.HenhouseID

	s.flagPriceAnomaly(ctx, repos, delivery)
	delivery.AttachSourceFile(s.copyAttachment(ctx, inv, categoryFeeds, delivery.ID))

	if err := repos.FeedDeliveries.Save(ctx, delivery); err != nil {
		return uuid.Nil, err
	}
	return delivery.ID, nil
}

func (s *ModuleSynchronizer) createGasDelivery(ctx context.Context, repos *Repositories, inv *accounting.Invoice, payload ModulePayload) (uuid.UUID, error) {
	p := payload.Gas
	if p == nil {
		return uuid.Nil, shared.NewDomainError("MISSING_PAYLOAD", "Gas delivery details are required")
	}
	if err := s.checkDuplicate(ctx, repos.GasDeliveries.ExistsByInvoiceNumber, inv.Number); err != nil {
		return uuid.Nil, err
	}
	if err := s.resolveFarmCycle(ctx, repos, p.FarmID, p.CycleID); err != nil {
		return uuid.Nil, err
	}

	contractorID, err := s.resolveContractor(ctx, repos, contractor.KindGas, p.ContractorID, p.ContractorName, p.ContractorTaxID, inv, "")
	if err != nil {
		return uuid.Nil, err
	}

	delivery, err := operations.NewGasDelivery(
		inv.Number,
		p.FarmID, p.CycleID, contractorID,
		p.Quantity, p.UnitPrice, inv.GrossAmount,
		p.DeliveryDate,
	)
	if err != nil {
		return uuid.Nil, err
	}
	delivery.AttachSourceFile(s.copyAttachment(ctx, inv, categoryGas, delivery.ID))

	if err := repos.GasDeliveries.Save(ctx, delivery); err != nil {
		return uuid.Nil, err
	}
	return delivery.ID, nil
}

func (s *ModuleSynchronizer) createProductionExpense(ctx context.Context, repos *Repositories, inv *accounting.Invoice, payload ModulePayload) (uuid.UUID, error) {
	p := payload.Expense
	if p == nil {
		return uuid.Nil, shared.NewDomainError("MISSING_PAYLOAD", "Production expense details are required")
	}
	if err := s.checkDuplicate(ctx, repos.Expenses.ExistsByInvoiceNumber, inv.Number); err != nil {
		return uuid.Nil, err
	}
	if err := s.resolveFarmCycle(ctx, repos, p.FarmID, p.CycleID); err != nil {
		return uuid.Nil, err
	}

	contractorID, err := s.resolveContractor(ctx, repos, contractor.KindExpense, p.ContractorID, p.ContractorName, p.ContractorTaxID, inv, p.ExpenseType)
	if err != nil {
		return uuid.Nil, err
	}

	expense, err := operations.NewProductionExpense(
		inv.Number,
		p.FarmID, p.CycleID, contractorID,
		p.ExpenseType,
		inv.NetAmount, inv.GrossAmount,
		inv.IssueDate,
	)
	if err != nil {
		return uuid.Nil, err
	}
	expense.AttachSourceFile(s.copyAttachment(ctx, inv, categoryExpenses, expense.ID))

	if err := repos.Expenses.Save(ctx, expense); err != nil {
		return uuid.Nil, err
	}
	return expense.ID, nil
}

func (s *ModuleSynchronizer) createSaleInvoice(ctx context.Context, repos *Repositories, inv *accounting.Invoice, payload ModulePayload) (uuid.UUID, error) {
	p := payload.Sale
	if p == nil {
		return uuid.Nil, shared.NewDomainError("MISSING_PAYLOAD", "Sale invoice details are required")
	}
	if err := s.checkDuplicate(ctx, repos.Sales.ExistsByInvoiceNumber, inv.Number); err != nil {
		return uuid.Nil, err
	}
	if err := s.resolveFarmCycle(ctx, repos, p.FarmID, p.CycleID); err != nil {
		return uuid.Nil, err
	}

	sale, err := operations.NewSaleInvoice(
		inv.Number,
		p.FarmID, p.CycleID, p.SlaughterhouseID,
		inv.NetAmount, inv.GrossAmount,
		inv.IssueDate,
	)
	if err != nil {
		return uuid.Nil, err
	}
	sale.AttachSourceFile(s.copyAttachment(ctx, inv, categorySales, sale.ID))

	if err := repos.Sales.Save(ctx, sale); err != nil {
		return uuid.Nil, err
	}
	return sale.ID, nil
}

func (s *ModuleSynchronizer) checkDuplicate(ctx context.Context, exists func(context.Context, string) (bool, error), number string) error {
	found, err := exists(ctx, number)
	if err != nil {
		return err
	}
	if found {
		return shared.NewDomainError("DUPLICATE_MODULE_RECORD", fmt.Sprintf("A record for invoice %s already exists in the target module", number))
	}
	return nil
}

func (s *ModuleSynchronizer) resolveFarmCycle(ctx context.Context, repos *Repositories, farmID, cycleID uuid.UUID) error {
	if _, err := repos.References.FindFarm(ctx, farmID); err != nil {
		return missingReference("Farm", farmID, err)
	}
	cycle, err := repos.References.FindCycle(ctx, cycleID)
	if err != nil {
		return missingReference("Cycle", cycleID, err)
	}
	if cycle.FarmID != farmID {
		return shared.NewDomainError("CYCLE_FARM_MISMATCH", fmt.Sprintf("Cycle %s does not belong to farm %s", cycleID, farmID))
	}
	return nil
}

// resolveContractor prefers an explicit contractor id, falls back to
// the payload's name and tax id, and finally to the invoice's
// counterparty (seller for purchases, buyer for sales invoices).
func (s *ModuleSynchronizer) resolveContractor(ctx context.Context, repos *Repositories, kind contractor.Kind, explicit *uuid.UUID, name, taxID string, inv *accounting.Invoice, expenseType string) (uuid.UUID, error) {
	if explicit != nil {
		c, err := repos.Contractors.FindByID(ctx, *explicit)
		if err != nil {
			return uuid.Nil, missingReference("Contractor", *explicit, err)
		}
		return c.ID, nil
	}
	if name == "" && taxID == "" {
		if inv.Direction == accounting.DirectionSales {
			name, taxID = inv.BuyerName, inv.BuyerTaxID
		} else {
			name, taxID = inv.SellerName, inv.SellerTaxID
		}
	}
	return s.contractors.Ensure(ctx, repos.Contractors, ResolveContractorRequest{
		Kind:        kind,
		Name:        name,
		TaxID:       taxID,
		ExpenseType: expenseType,
	})
}

// flagPriceAnomaly compares the delivery's unit price against the farm's
// recent price history for the same feed item. Insufficient history or a
// stats failure never blocks the delivery.
func (s *ModuleSynchronizer) flagPriceAnomaly(ctx context.Context, repos *Repositories, delivery *operations.FeedDelivery) {
	from := delivery.DeliveryDate.Add(-priceAnomalyWindow)
	stats, err := repos.FeedDeliveries.PriceStats(ctx, delivery.FeedItemID, delivery.FarmID, from, delivery.DeliveryDate)
	if err != nil {
		s.logger.Warn("price history lookup failed",
			zap.String("feed_item_id", delivery.FeedItemID.String()),
			zap.Error(err))
		return
	}
	if stats.Samples < priceAnomalyMinimum || !stats.Average.IsPositive() {
		return
	}
	margin := stats.Average.Mul(priceAnomalyTolerance)
	low := stats.Average.Sub(margin)
	high := stats.Average.Add(margin)
	if delivery.UnitPrice.LessThan(low) || delivery.UnitPrice.GreaterThan(high) {
		delivery.FlagPriceAnomaly(fmt.Sprintf(
			"Unit price %s outside recent band %s - %s (avg %s over %d deliveries)",
			delivery.UnitPrice, low.Round(2), high.Round(2), stats.Average.Round(2), stats.Samples))
	}
}

// copyAttachment duplicates the invoice's stored file into the module's
// storage area. Copy failures are tolerated; the module record then
// points at the original invoice file.
func (s *ModuleSynchronizer) copyAttachment(ctx context.Context, inv *accounting.Invoice, category string, entityID uuid.UUID) string {
	if inv.AttachmentPath == "" {
		return ""
	}
	dst := entityID.String() + ".xml"
	path, err := s.files.Copy(ctx, categoryInvoices, inv.AttachmentPath, category, dst)
	if err != nil {
		s.logger.Warn("attachment copy failed, keeping original path",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("category", category),
			zap.Error(err))
		return inv.AttachmentPath
	}
	return path
}

func missingReference(kind string, id uuid.UUID, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError("MISSING_REFERENCE", fmt.Sprintf("%s %s does not exist", kind, id))
	}
	return err
}
