package accounting

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmops/backend/internal/domain/accounting"
	"github.com/farmops/backend/internal/domain/shared"
)

// LifecycleService orchestrates invoice lifecycle operations. Every
// operation runs inside a single transaction so the invoice row, the
// module record and the audit entry commit or roll back together.
type LifecycleService struct {
	uow        UnitOfWork
	modules    *ModuleSynchronizer
	payments   *PaymentSynchronizer
	assignment *AssignmentService
	logger     *zap.Logger
}

func NewLifecycleService(uow UnitOfWork, modules *ModuleSynchronizer, payments *PaymentSynchronizer, assignment *AssignmentService, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{
		uow:        uow,
		modules:    modules,
		payments:   payments,
		assignment: assignment,
		logger:     logger,
	}
}

func requireActor(actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return shared.ErrUnauthorized
	}
	return nil
}

// Accept moves an invoice to accepted, materializing a module record
// when the chosen module keeps its own books. If the invoice previously
// pointed at a record in a different module, that record is removed
// permanently in the same transaction.
func (s *LifecycleService) Accept(ctx context.Context, actorID uuid.UUID, req AcceptInvoiceRequest) (*accounting.Invoice, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if !req.ModuleType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MODULE", "Unknown module type")
	}

	var result *accounting.Invoice
	err := s.uow.Run(ctx, func(repos *Repositories) error {
		inv, err := repos.Invoices.FindByID(ctx, req.InvoiceID)
		if err != nil {
			return err
		}
		if err := inv.CanAccept(); err != nil {
			return err
		}

		previousModule := inv.ModuleType
		previousEntity := inv.ModuleEntityID
		from := inv.Status

		s.applyAcceptFields(inv, req)

		var entityID *uuid.UUID
		if req.ModuleType.IsMaterializing() {
			id, err := s.modules.Create(ctx, repos, inv, req.ModuleType, req.Payload)
			if err != nil {
				return err
			}
			entityID = &id
		}

		if previousEntity != nil && previousModule != req.ModuleType {
			if err := s.modules.Remove(ctx, repos, previousModule, *previousEntity, false); err != nil {
				return err
			}
		}

		if err := inv.Accept(req.ModuleType, entityID); err != nil {
			return err
		}
		if err := repos.Invoices.SaveWithLock(ctx, inv); err != nil {
			return err
		}

		note := fmt.Sprintf("Module %s", req.ModuleType)
		if entityID != nil {
			note = fmt.Sprintf("Module %s, record %s", req.ModuleType, entityID)
		}
		if err := s.audit(ctx, repos, inv.ID, accounting.AuditActionAccepted, from, inv.Status, actorID, note); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("invoice accepted",
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("module", string(req.ModuleType)))
	return result, nil
}

func (s *LifecycleService) applyAcceptFields(inv *accounting.Invoice, req AcceptInvoiceRequest) {
	if req.DueDate != nil {
		inv.SetDueDate(req.DueDate)
	}
	if req.PaymentType != nil {
		inv.SetPaymentType(*req.PaymentType)
	}
	if req.VATDeduction != nil {
		inv.SetVATDeduction(*req.VATDeduction)
	}
	if req.Comment != nil {
		inv.SetComment(*req.Comment)
	}
	if req.FarmID != nil || req.CycleID != nil {
		inv.SetFarmCycle(req.FarmID, req.CycleID)
	}
}

// Reject moves an invoice back out of processing. A linked module
// record is soft deleted so it can be recovered, and the invoice's
// processing fields are reset to their post-ingestion state.
func (s *LifecycleService) Reject(ctx context.Context, actorID, invoiceID uuid.UUID, note string) (*accounting.Invoice, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	var result *accounting.Invoice
	err := s.uow.Run(ctx, func(repos *Repositories) error {
		inv, err := repos.Invoices.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		from := inv.Status

		if inv.ModuleEntityID != nil {
			if err := s.modules.Remove(ctx, repos, inv.ModuleType, *inv.ModuleEntityID, true); err != nil {
				return err
			}
		}
		if err := inv.Reject(); err != nil {
			return err
		}
		if err := repos.Invoices.SaveWithLock(ctx, inv); err != nil {
			return err
		}
		if err := s.audit(ctx, repos, inv.ID, accounting.AuditActionRejected, from, inv.Status, actorID, note); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("invoice rejected", zap.String("invoice_id", invoiceID.String()))
	return result, nil
}

// Hold reassigns an invoice to another user. The caller states which
// assignee it last saw; if somebody else claimed the invoice in the
// meantime the hold fails with an assignment conflict.
func (s *LifecycleService) Hold(ctx context.Context, actorID uuid.UUID, req HoldRequest) (*accounting.Invoice, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	var result *accounting.Invoice
	err := s.uow.Run(ctx, func(repos *Repositories) error {
		inv, err := repos.Invoices.FindByID(ctx, req.InvoiceID)
		if err != nil {
			return err
		}
		if err := inv.Reassign(req.NewUserID, req.ExpectedUserID); err != nil {
			return err
		}
		if err := repos.Invoices.SaveWithLock(ctx, inv); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TransferToOffice marks a batch of accepted invoices as handed over to
// the accounting office. Items that cannot be transferred are skipped
// and reported; the rest go through in the same run.
func (s *LifecycleService) TransferToOffice(ctx context.Context, actorID uuid.UUID, invoiceIDs []uuid.UUID) (*TransferResult, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if len(invoiceIDs) == 0 {
		return nil, shared.NewDomainError("EMPTY_BATCH", "No invoices to transfer")
	}

	result := &TransferResult{}
	err := s.uow.Run(ctx, func(repos *Repositories) error {
		for _, id := range invoiceIDs {
			inv, err := repos.Invoices.FindByID(ctx, id)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
				continue
			}
			from := inv.Status
			if err := inv.MarkSentToOffice(); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", inv.Number, err))
				continue
			}
			if err := repos.Invoices.SaveWithLock(ctx, inv); err != nil {
				return err
			}
			if err := s.audit(ctx, repos, inv.ID, accounting.AuditActionTransferredToOffice, from, inv.Status, actorID, ""); err != nil {
				return err
			}
			result.Transferred++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("invoices transferred to office",
		zap.Int("transferred", result.Transferred),
		zap.Int("failed", len(result.Errors)))
	return result, nil
}

// Update applies a partial patch to an invoice. A status change is
// audited with the action matching the new status; a payment status
// change alone is audited as a payment status change and propagated to
// the linked module record. A module change retracts the previously
// linked record; selecting a materializing module goes through Accept.
func (s *LifecycleService) Update(ctx context.Context, actorID, invoiceID uuid.UUID, patch UpdateInvoiceRequest) (*accounting.Invoice, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	var result *accounting.Invoice
	err := s.uow.Run(ctx, func(repos *Repositories) error {
		inv, err := repos.Invoices.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		fromStatus := inv.Status
		fromPayment := inv.PaymentStatus

		// A module patch mirrors accept's previous-entity removal so
		// the invoice never points at a retracted record.
		if patch.ModuleType != nil && *patch.ModuleType != inv.ModuleType {
			if inv.ModuleEntityID != nil {
				if err := s.modules.Remove(ctx, repos, inv.ModuleType, *inv.ModuleEntityID, true); err != nil {
					return err
				}
			}
			if err := inv.ChangeModule(*patch.ModuleType); err != nil {
				return err
			}
		}

		if err := s.applyPatch(inv, patch); err != nil {
			return err
		}
		if err := repos.Invoices.SaveWithLock(ctx, inv); err != nil {
			return err
		}

		statusChanged := inv.Status != fromStatus
		paymentChanged := inv.PaymentStatus != fromPayment

		if statusChanged {
			action := accounting.AuditActionForStatus(inv.Status)
			if err := s.audit(ctx, repos, inv.ID, action, fromStatus, inv.Status, actorID, "Updated"); err != nil {
				return err
			}
		} else if paymentChanged {
			note := fmt.Sprintf("Payment status %s to %s", fromPayment, inv.PaymentStatus)
			if err := s.audit(ctx, repos, inv.ID, accounting.AuditActionPaymentStatusChanged, fromStatus, inv.Status, actorID, note); err != nil {
				return err
			}
		}
		if paymentChanged {
			if err := s.payments.ApplyToModule(ctx, repos, inv); err != nil {
				return err
			}
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *LifecycleService) applyPatch(inv *accounting.Invoice, patch UpdateInvoiceRequest) error {
	if patch.PaymentStatus != nil {
		if err := inv.SetPaymentStatus(*patch.PaymentStatus); err != nil {
			return err
		}
	}
	if patch.PaymentType != nil {
		inv.SetPaymentType(*patch.PaymentType)
	}
	if patch.VATDeduction != nil {
		inv.SetVATDeduction(*patch.VATDeduction)
	}
	if patch.DueDate != nil {
		inv.SetDueDate(patch.DueDate)
	}
	if patch.Comment != nil {
		inv.SetComment(*patch.Comment)
	}
	if patch.AssignedUserID != nil {
		inv.SetAssignedUser(patch.AssignedUserID)
	}
	if patch.RelatedInvoiceNumber != nil {
		inv.SetRelatedInvoiceNumber(*patch.RelatedInvoiceNumber)
	}
	if patch.FarmID != nil || patch.CycleID != nil {
		inv.SetFarmCycle(patch.FarmID, patch.CycleID)
	}
	if patch.Status != nil {
		if err := inv.SetStatus(*patch.Status); err != nil {
			return err
		}
	}
	return nil
}

// AcceptNoLinking marks a sales invoice as consciously left unlinked so
// linking reminders stop.
func (s *LifecycleService) AcceptNoLinking(ctx context.Context, actorID, invoiceID uuid.UUID) (*accounting.Invoice, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	var result *accounting.Invoice
	err := s.uow.Run(ctx, func(repos *Repositories) error {
		inv, err := repos.Invoices.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := inv.MarkNoLinking(); err != nil {
			return err
		}
		if err := repos.Invoices.SaveWithLock(ctx, inv); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LinkInvoices records directed relations from a source invoice to one
// or more target invoices and marks the source as linked.
func (s *LifecycleService) LinkInvoices(ctx context.Context, actorID, sourceID uuid.UUID, targetIDs []uuid.UUID, relationType accounting.RelationType) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	if len(targetIDs) == 0 {
		return shared.NewDomainError("EMPTY_BATCH", "No target invoices to link")
	}

	return s.uow.Run(ctx, func(repos *Repositories) error {
		source, err := repos.Invoices.FindByID(ctx, sourceID)
		if err != nil {
			return err
		}
		targets, err := repos.Invoices.FindByIDs(ctx, targetIDs)
		if err != nil {
			return err
		}
		if len(targets) != len(targetIDs) {
			return shared.NewDomainError("MISSING_TARGET", "One or more target invoices do not exist")
		}
		for _, target := range targets {
			relation, err := accounting.NewInvoiceRelation(source.ID, target.ID, relationType)
			if err != nil {
				return err
			}
			if err := repos.Relations.Save(ctx, relation); err != nil {
				return err
			}
		}
		source.MarkLinked()
		return repos.Invoices.SaveWithLock(ctx, source)
	})
}

// PostponeLinkingReminder pushes the invoice's linking reminder forward
// by the given number of days.
func (s *LifecycleService) PostponeLinkingReminder(ctx context.Context, actorID, invoiceID uuid.UUID, days int) (*accounting.Invoice, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	var result *accounting.Invoice
	err := s.uow.Run(ctx, func(repos *Repositories) error {
		inv, err := repos.Invoices.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := inv.PostponeReminder(days); err != nil {
			return err
		}
		if err := repos.Invoices.SaveWithLock(ctx, inv); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a manually entered invoice together with its module
// record. Exchange-sourced invoices cannot be deleted, only rejected.
func (s *LifecycleService) Delete(ctx context.Context, actorID, invoiceID uuid.UUID) error {
	if err := requireActor(actorID); err != nil {
		return err
	}

	err := s.uow.Run(ctx, func(repos *Repositories) error {
		inv, err := repos.Invoices.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if !inv.IsManual() {
			return shared.NewDomainError("CANNOT_DELETE", "Only manually entered invoices can be deleted")
		}
		if inv.ModuleEntityID != nil {
			if err := s.modules.Remove(ctx, repos, inv.ModuleType, *inv.ModuleEntityID, false); err != nil {
				return err
			}
		}
		if err := repos.Invoices.Delete(ctx, inv.ID); err != nil {
			return err
		}
		return s.audit(ctx, repos, inv.ID, accounting.AuditActionDeleted, inv.Status, inv.Status, actorID, "")
	})
	if err != nil {
		return err
	}
	s.logger.Info("invoice deleted", zap.String("invoice_id", invoiceID.String()))
	return nil
}

// SyncPaymentFromModule pulls the paid marker of the linked module
// record back onto the invoice.
func (s *LifecycleService) SyncPaymentFromModule(ctx context.Context, actorID, invoiceID uuid.UUID) (*accounting.Invoice, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	var result *accounting.Invoice
	err := s.uow.Run(ctx, func(repos *Repositories) error {
		inv, err := s.payments.SyncFromModule(ctx, repos, invoiceID, actorID)
		if err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetInvoice returns one invoice with its audit trail.
func (s *LifecycleService) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*accounting.Invoice, []accounting.AuditLogEntry, error) {
	var inv *accounting.Invoice
	var trail []accounting.AuditLogEntry
	err := s.uow.Run(ctx, func(repos *Repositories) error {
		found, err := repos.Invoices.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		entries, err := repos.AuditLogs.FindByInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}
		inv, trail = found, entries
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return inv, trail, nil
}

// ListInvoices returns a page of invoices matching the filter.
func (s *LifecycleService) ListInvoices(ctx context.Context, filter accounting.InvoiceFilter) (*shared.Paginated[accounting.Invoice], error) {
	var page shared.Paginated[accounting.Invoice]
	err := s.uow.Run(ctx, func(repos *Repositories) error {
		items, err := repos.Invoices.FindAll(ctx, filter)
		if err != nil {
			return err
		}
		total, err := repos.Invoices.Count(ctx, filter)
		if err != nil {
			return err
		}
		page = shared.NewPaginated(items, total, filter.Page, filter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *LifecycleService) audit(ctx context.Context, repos *Repositories, invoiceID uuid.UUID, action accounting.AuditAction, from, to accounting.InvoiceStatus, actorID uuid.UUID, note string) error {
	entry, err := accounting.NewAuditLogEntry(invoiceID, action, from, to, actorID, note)
	if err != nil {
		return err
	}
	return repos.AuditLogs.Append(ctx, entry)
}
