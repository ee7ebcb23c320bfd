package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmops/backend/internal/domain/accounting"
)

// PaymentSynchronizer keeps the paid marker of a linked module record
// and the invoice's payment status consistent. Only feed deliveries
// (payment reference) and sale invoices (payment date) carry a paid
// marker; the other modules have no payment concept and are left alone.
type PaymentSynchronizer struct {
	logger *zap.Logger
}

func NewPaymentSynchronizer(logger *zap.Logger) *PaymentSynchronizer {
	return &PaymentSynchronizer{logger: logger}
}

// ApplyToModule propagates the invoice's payment status to its linked
// module record. Invoices without a linked record are a no-op.
func (p *PaymentSynchronizer) ApplyToModule(ctx context.Context, repos *Repositories, inv *accounting.Invoice) error {
	if inv.ModuleEntityID == nil {
		return nil
	}
	paid := inv.PaymentStatus.IsPaid()

	switch inv.ModuleType {
	case accounting.ModuleTypeFeeds:
		delivery, err := repos.FeedDeliveries.FindByID(ctx, *inv.ModuleEntityID)
		if err != nil {
			return err
		}
		if paid && !delivery.IsPaid() {
			delivery.MarkPaid(fmt.Sprintf("Invoice %s", inv.Number))
		} else if !paid && delivery.IsPaid() {
			delivery.ClearPayment()
		} else {
			return nil
		}
		return repos.FeedDeliveries.Save(ctx, delivery)
	case accounting.ModuleTypeSales:
		sale, err := repos.Sales.FindByID(ctx, *inv.ModuleEntityID)
		if err != nil {
			return err
		}
		if paid && !sale.IsPaid() {
			sale.MarkPaid(time.Now())
		} else if !paid && sale.IsPaid() {
			sale.ClearPayment()
		} else {
			return nil
		}
		return repos.Sales.Save(ctx, sale)
	default:
		return nil
	}
}

// ApplyFromModule reads the linked module record's paid marker and
// adjusts the invoice when the two disagree on the paid or unpaid axis.
// An invoice already paid by cash or transfer is not touched when the
// module agrees it is paid, so the concrete paid kind survives a round
// trip. Returns true when the invoice changed.
func (p *PaymentSynchronizer) ApplyFromModule(ctx context.Context, repos *Repositories, inv *accounting.Invoice) (bool, error) {
	if inv.ModuleEntityID == nil {
		return false, nil
	}

	var modulePaid bool
	switch inv.ModuleType {
	case accounting.ModuleTypeFeeds:
		delivery, err := repos.FeedDeliveries.FindByID(ctx, *inv.ModuleEntityID)
		if err != nil {
			return false, err
		}
		modulePaid = delivery.IsPaid()
	case accounting.ModuleTypeSales:
		sale, err := repos.Sales.FindByID(ctx, *inv.ModuleEntityID)
		if err != nil {
			return false, err
		}
		modulePaid = sale.IsPaid()
	default:
		return false, nil
	}

	switch {
	case modulePaid && !inv.PaymentStatus.IsPaid():
		if err := inv.SetPaymentStatus(accounting.PaymentStatusPaidTransfer); err != nil {
			return false, err
		}
		return true, nil
	case !modulePaid && inv.PaymentStatus.IsPaid():
		if err := inv.SetPaymentStatus(accounting.PaymentStatusUnpaid); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, nil
	}
}

// SyncFromModule loads the invoice, pulls the payment state of its
// module record and records an audit entry when the invoice changed.
func (p *PaymentSynchronizer) SyncFromModule(ctx context.Context, repos *Repositories, invoiceID, actorID uuid.UUID) (*accounting.Invoice, error) {
	inv, err := repos.Invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	before := inv.PaymentStatus
	changed, err := p.ApplyFromModule(ctx, repos, inv)
	if err != nil {
		return nil, err
	}
	if !changed {
		return inv, nil
	}
	if err := repos.Invoices.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	entry, err := accounting.NewAuditLogEntry(inv.ID, accounting.AuditActionPaymentStatusChanged, inv.Status, inv.Status, actorID,
		fmt.Sprintf("Payment status %s to %s from module record", before, inv.PaymentStatus))
	if err != nil {
		return nil, err
	}
	if err := repos.AuditLogs.Append(ctx, entry); err != nil {
		return nil, err
	}
	p.logger.Info("payment status pulled from module",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("from", string(before)),
		zap.String("to", string(inv.PaymentStatus)))
	return inv, nil
}
