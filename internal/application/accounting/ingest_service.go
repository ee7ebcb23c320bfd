package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmops/backend/internal/domain/accounting"
	"github.com/farmops/backend/internal/domain/shared"
)

// IngestService brings invoices into the system from the e-invoice
// exchange, from uploaded XML files and from manual entry. Every path
// produces an invoice in status New with a created audit entry.
type IngestService struct {
	uow        UnitOfWork
	exchange   ExchangeSource
	seen       SeenStore
	parser     InvoiceXMLParser
	files      FileStore
	assignment *AssignmentService
	logger     *zap.Logger
}

func NewIngestService(uow UnitOfWork, exchange ExchangeSource, seen SeenStore, parser InvoiceXMLParser, files FileStore, assignment *AssignmentService, logger *zap.Logger) *IngestService {
	return &IngestService{
		uow:        uow,
		exchange:   exchange,
		seen:       seen,
		parser:     parser,
		files:      files,
		assignment: assignment,
		logger:     logger,
	}
}

// SyncFromExchange lists invoices the exchange published since the
// given time and imports the ones not seen before. One bad document
// does not stop the run; its error is collected and the rest continue.
func (s *IngestService) SyncFromExchange(ctx context.Context, actorID uuid.UUID, since time.Time) (*SyncResult, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	summaries, err := s.exchange.FetchSummaries(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetch exchange summaries: %w", err)
	}

	result := &SyncResult{Fetched: len(summaries)}
	for _, summary := range summaries {
		imported, err := s.importSummary(ctx, actorID, summary)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", summary.ExternalRef, err))
			continue
		}
		if imported {
			result.Imported++
		} else {
			result.Skipped++
		}
	}

	s.logger.Info("exchange sync finished",
		zap.Int("fetched", result.Fetched),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Errors)))
	return result, nil
}

func (s *IngestService) importSummary(ctx context.Context, actorID uuid.UUID, summary ExchangeInvoiceSummary) (bool, error) {
	seen, err := s.seen.IsSeen(ctx, summary.ExternalRef)
	if err != nil {
		// The seen store is a shortcut; the database check below
		// still guarantees uniqueness.
		s.logger.Warn("seen store lookup failed", zap.String("external_ref", summary.ExternalRef), zap.Error(err))
	} else if seen {
		return false, nil
	}

	inv, err := accounting.NewInvoice(
		summary.ExternalRef,
		summary.Number,
		summary.IssueDate,
		summary.SellerName, summary.SellerTaxID,
		summary.BuyerName, summary.BuyerTaxID,
		summary.GrossAmount, summary.NetAmount, summary.VATAmount,
		accounting.InvoiceSourceExchange,
		summary.Direction,
	)
	if err != nil {
		return false, err
	}

	body, err := s.exchange.FetchXML(ctx, summary.ExternalRef)
	if err != nil {
		// The header data is enough to process the invoice; the body
		// only enriches it.
		s.logger.Warn("invoice XML fetch failed", zap.String("external_ref", summary.ExternalRef), zap.Error(err))
	} else if len(body) > 0 {
		inv.SetXMLBody(string(body))
		s.storeAttachment(ctx, inv, summary.ExternalRef+".xml", body)
		if doc := s.parser.Parse(body); doc != nil && doc.Payment.DueDate != nil {
			inv.SetDueDate(doc.Payment.DueDate)
		}
	}

	imported := false
	err = s.uow.Run(ctx, func(repos *Repositories) error {
		exists, err := repos.Invoices.ExistsByExternalRef(ctx, summary.ExternalRef)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if err := s.preAssign(ctx, repos, inv); err != nil {
			return err
		}
		if err := repos.Invoices.Save(ctx, inv); err != nil {
			return err
		}
		entry, err := accounting.NewAuditLogEntry(inv.ID, accounting.AuditActionCreated, inv.Status, inv.Status, actorID, "Imported from exchange")
		if err != nil {
			return err
		}
		if err := repos.AuditLogs.Append(ctx, entry); err != nil {
			return err
		}
		imported = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if err := s.seen.MarkSeen(ctx, summary.ExternalRef); err != nil {
		s.logger.Warn("seen store update failed", zap.String("external_ref", summary.ExternalRef), zap.Error(err))
	}
	return imported, nil
}

// ImportXML creates an invoice from an uploaded e-invoice XML file.
// The file counts as manually entered, so the invoice stays deletable.
func (s *IngestService) ImportXML(ctx context.Context, actorID uuid.UUID, fileName string, body []byte, direction accounting.InvoiceDirection) (*accounting.Invoice, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	doc := s.parser.Parse(body)
	if doc == nil {
		return nil, shared.NewDomainError("UNPARSEABLE_XML", fmt.Sprintf("File %s is not a readable e-invoice", fileName))
	}
	if doc.Number == "" {
		return nil, shared.NewDomainError("MISSING_NUMBER", fmt.Sprintf("File %s carries no invoice number", fileName))
	}
	issueDate := time.Now()
	if doc.IssueDate != nil {
		issueDate = *doc.IssueDate
	}

	inv, err := accounting.NewInvoice(
		"UPLOAD-"+uuid.New().String(),
		doc.Number,
		issueDate,
		doc.Seller.Name, doc.Seller.TaxID,
		doc.Buyer.Name, doc.Buyer.TaxID,
		doc.GrossAmount, doc.NetAmount, doc.VATAmount,
		accounting.InvoiceSourceManual,
		direction,
	)
	if err != nil {
		return nil, err
	}
	inv.SetXMLBody(string(body))
	if doc.Payment.DueDate != nil {
		inv.SetDueDate(doc.Payment.DueDate)
	}
	s.storeAttachment(ctx, inv, inv.ID.String()+".xml", body)

	err = s.uow.Run(ctx, func(repos *Repositories) error {
		if err := s.preAssign(ctx, repos, inv); err != nil {
			return err
		}
		if err := repos.Invoices.Save(ctx, inv); err != nil {
			return err
		}
		entry, err := accounting.NewAuditLogEntry(inv.ID, accounting.AuditActionCreated, inv.Status, inv.Status, actorID, fmt.Sprintf("Uploaded file %s", fileName))
		if err != nil {
			return err
		}
		return repos.AuditLogs.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// CreateManual creates a hand-entered invoice.
func (s *IngestService) CreateManual(ctx context.Context, actorID uuid.UUID, req CreateManualInvoiceRequest) (*accounting.Invoice, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	inv, err := accounting.NewInvoice(
		"MANUAL-"+uuid.New().String(),
		req.Number,
		req.IssueDate,
		req.SellerName, req.SellerTaxID,
		req.BuyerName, req.BuyerTaxID,
		req.GrossAmount, req.NetAmount, req.VATAmount,
		accounting.InvoiceSourceManual,
		req.Direction,
	)
	if err != nil {
		return nil, err
	}
	if req.DueDate != nil {
		inv.SetDueDate(req.DueDate)
	}
	if req.PaymentStatus != nil {
		if err := inv.SetPaymentStatus(*req.PaymentStatus); err != nil {
			return nil, err
		}
	}
	if req.Comment != "" {
		inv.SetComment(req.Comment)
	}

	err = s.uow.Run(ctx, func(repos *Repositories) error {
		if err := s.preAssign(ctx, repos, inv); err != nil {
			return err
		}
		if err := repos.Invoices.Save(ctx, inv); err != nil {
			return err
		}
		entry, err := accounting.NewAuditLogEntry(inv.ID, accounting.AuditActionCreated, inv.Status, inv.Status, actorID, "Manual entry")
		if err != nil {
			return err
		}
		return repos.AuditLogs.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// preAssign runs the assignment rules on a new invoice. The assigned
// user becomes the invoice's owner; the matched module only becomes a
// suggested default, the accept operation decides the real module.
func (s *IngestService) preAssign(ctx context.Context, repos *Repositories, inv *accounting.Invoice) error {
	userID, err := s.assignment.FindAssignedUser(ctx, repos, inv)
	if err != nil {
		return err
	}
	if userID != nil {
		inv.SetAssignedUser(userID)
	}
	moduleType, err := s.assignment.FindModule(ctx, repos, inv)
	if err != nil {
		return err
	}
	if moduleType != nil {
		if err := inv.SetDefaultModule(*moduleType); err != nil {
			return err
		}
	}
	return nil
}

func (s *IngestService) storeAttachment(ctx context.Context, inv *accounting.Invoice, name string, body []byte) {
	path, err := s.files.Put(ctx, categoryInvoices, name, body)
	if err != nil {
		s.logger.Warn("attachment store failed",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
		return
	}
	inv.SetAttachment(path)
}
