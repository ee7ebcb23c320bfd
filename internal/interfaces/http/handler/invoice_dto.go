package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appaccounting "github.com/farmops/backend/internal/application/accounting"
	"github.com/farmops/backend/internal/domain/accounting"
)

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                   string          `json:"id"`
	ExternalRef          string          `json:"external_ref"`
	Number               string          `json:"number"`
	IssueDate            time.Time       `json:"issue_date"`
	DueDate              *time.Time      `json:"due_date,omitempty"`
	SellerName           string          `json:"seller_name"`
	SellerTaxID          string          `json:"seller_tax_id"`
	BuyerName            string          `json:"buyer_name"`
	BuyerTaxID           string          `json:"buyer_tax_id"`
	GrossAmount          decimal.Decimal `json:"gross_amount"`
	NetAmount            decimal.Decimal `json:"net_amount"`
	VATAmount            decimal.Decimal `json:"vat_amount"`
	AttachmentPath       string          `json:"attachment_path,omitempty"`
	Status               string          `json:"status"`
	PaymentStatus        string          `json:"payment_status"`
	PaymentType          string          `json:"payment_type,omitempty"`
	VATDeduction         string          `json:"vat_deduction,omitempty"`
	ModuleType           string          `json:"module_type"`
	ModuleEntityID       *string         `json:"module_entity_id,omitempty"`
	AssignedUserID       *string         `json:"assigned_user_id,omitempty"`
	RelatedInvoiceNumber string          `json:"related_invoice_number,omitempty"`
	FarmID               *string         `json:"farm_id,omitempty"`
	CycleID              *string         `json:"cycle_id,omitempty"`
	Comment              string          `json:"comment,omitempty"`
	Source               string          `json:"source"`
	Direction            string          `json:"direction"`
	Linked               bool            `json:"linked"`
	NoLinking            bool            `json:"no_linking"`
	LinkingReminderAt    *time.Time      `json:"linking_reminder_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	Version              int             `json:"version"`
}

// ToInvoiceResponse converts a domain invoice to its API representation
func ToInvoiceResponse(inv *accounting.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:                   inv.ID.String(),
		ExternalRef:          inv.ExternalRef,
		Number:               inv.Number,
		IssueDate:            inv.IssueDate,
		DueDate:              inv.DueDate,
		SellerName:           inv.SellerName,
		SellerTaxID:          inv.SellerTaxID,
		BuyerName:            inv.BuyerName,
		BuyerTaxID:           inv.BuyerTaxID,
		GrossAmount:          inv.GrossAmount,
		NetAmount:            inv.NetAmount,
		VATAmount:            inv.VATAmount,
		AttachmentPath:       inv.AttachmentPath,
		Status:               inv.Status.String(),
		PaymentStatus:        inv.PaymentStatus.String(),
		PaymentType:          string(inv.PaymentType),
		VATDeduction:         string(inv.VATDeduction),
		ModuleType:           inv.ModuleType.String(),
		ModuleEntityID:       uuidPtrToString(inv.ModuleEntityID),
		AssignedUserID:       uuidPtrToString(inv.AssignedUserID),
		RelatedInvoiceNumber: inv.RelatedInvoiceNumber,
		FarmID:               uuidPtrToString(inv.FarmID),
		CycleID:              uuidPtrToString(inv.CycleID),
		Comment:              inv.Comment,
		Source:               string(inv.Source),
		Direction:            string(inv.Direction),
		Linked:               inv.Linked,
		NoLinking:            inv.NoLinking,
		LinkingReminderAt:    inv.LinkingReminderAt,
		CreatedAt:            inv.CreatedAt,
		UpdatedAt:            inv.UpdatedAt,
		Version:              inv.Version,
	}
}

// AuditLogEntryResponse represents one audit trail entry
type AuditLogEntryResponse struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	ActorID    string    `json:"actor_id"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// InvoiceDetailResponse combines an invoice with its audit trail
type InvoiceDetailResponse struct {
	Invoice  InvoiceResponse         `json:"invoice"`
	AuditLog []AuditLogEntryResponse `json:"audit_log"`
}

// ToAuditLogResponses converts audit entries to their API representation
func ToAuditLogResponses(entries []accounting.AuditLogEntry) []AuditLogEntryResponse {
	responses := make([]AuditLogEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, AuditLogEntryResponse{
			ID:         entry.ID.String(),
			Action:     string(entry.Action),
			FromStatus: entry.FromStatus.String(),
			ToStatus:   entry.ToStatus.String(),
			ActorID:    entry.ActorID.String(),
			Note:       entry.Note,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return responses
}

// FeedDeliveryPayloadRequest carries feed-module fields on accept
type FeedDeliveryPayloadRequest struct {
	FarmID          string          `json:"farm_id" binding:"required,uuid"`
	CycleID         string          `json:"cycle_id" binding:"required,uuid"`
	HenhouseID      *string         `json:"henhouse_id" binding:"omitempty,uuid"`
	ContractorID    *string         `json:"contractor_id" binding:"omitempty,uuid"`
	ContractorName  string          `json:"contractor_name"`
	ContractorTaxID string          `json:"contractor_tax_id"`
	FeedItemID      string          `json:"feed_item_id" binding:"required,uuid"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
	DeliveryDate    time.Time       `json:"delivery_date" binding:"required"`
}

// GasDeliveryPayloadRequest carries gas-module fields on accept
type GasDeliveryPayloadRequest struct {
	FarmID          string          `json:"farm_id" binding:"required,uuid"`
	CycleID         string          `json:"cycle_id" binding:"required,uuid"`
	ContractorID    *string         `json:"contractor_id" binding:"omitempty,uuid"`
	ContractorName  string          `json:"contractor_name"`
	ContractorTaxID string          `json:"contractor_tax_id"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
	DeliveryDate    time.Time       `json:"delivery_date" binding:"required"`
}

// ProductionExpensePayloadRequest carries expense-module fields on accept
type ProductionExpensePayloadRequest struct {
	FarmID          string  `json:"farm_id" binding:"required,uuid"`
	CycleID         string  `json:"cycle_id" binding:"required,uuid"`
	ContractorID    *string `json:"contractor_id" binding:"omitempty,uuid"`
	ContractorName  string  `json:"contractor_name"`
	ContractorTaxID string  `json:"contractor_tax_id"`
	ExpenseType     string  `json:"expense_type" binding:"required"`
}

// SaleInvoicePayloadRequest carries sale-module fields on accept
type SaleInvoicePayloadRequest struct {
	FarmID           string `json:"farm_id" binding:"required,uuid"`
	CycleID          string `json:"cycle_id" binding:"required,uuid"`
	SlaughterhouseID string `json:"slaughterhouse_id" binding:"required,uuid"`
}

// AcceptInvoiceRequest is the accept operation's request body
type AcceptInvoiceRequest struct {
	ModuleType   string                           `json:"module_type" binding:"required,module_type"`
	Feed         *FeedDeliveryPayloadRequest      `json:"feed,omitempty"`
	Gas          *GasDeliveryPayloadRequest       `json:"gas,omitempty"`
	Expense      *ProductionExpensePayloadRequest `json:"expense,omitempty"`
	Sale         *SaleInvoicePayloadRequest       `json:"sale,omitempty"`
	DueDate      *time.Time                       `json:"due_date,omitempty"`
	PaymentType  *string                          `json:"payment_type,omitempty"`
	VATDeduction *string                          `json:"vat_deduction,omitempty"`
	Comment      *string                          `json:"comment,omitempty"`
	FarmID       *string                          `json:"farm_id,omitempty" binding:"omitempty,uuid"`
	CycleID      *string                          `json:"cycle_id,omitempty" binding:"omitempty,uuid"`
}

// RejectInvoiceRequest is the reject operation's request body
type RejectInvoiceRequest struct {
	Note string `json:"note"`
}

// HoldInvoiceRequest reassigns an invoice to another user
type HoldInvoiceRequest struct {
	NewUserID      string  `json:"new_user_id" binding:"required,uuid"`
	ExpectedUserID *string `json:"expected_user_id" binding:"omitempty,uuid"`
}

// TransferToOfficeRequest is the bulk transfer request body
type TransferToOfficeRequest struct {
	InvoiceIDs []string `json:"invoice_ids" binding:"required,min=1,dive,uuid"`
}

// UpdateInvoiceRequest is a partial patch of invoice fields
type UpdateInvoiceRequest struct {
	Status               *string    `json:"status,omitempty"`
	ModuleType           *string    `json:"module_type,omitempty" binding:"omitempty,module_type"`
	PaymentStatus        *string    `json:"payment_status,omitempty"`
	PaymentType          *string    `json:"payment_type,omitempty"`
	VATDeduction         *string    `json:"vat_deduction,omitempty"`
	DueDate              *time.Time `json:"due_date,omitempty"`
	Comment              *string    `json:"comment,omitempty"`
	AssignedUserID       *string    `json:"assigned_user_id,omitempty" binding:"omitempty,uuid"`
	RelatedInvoiceNumber *string    `json:"related_invoice_number,omitempty"`
	FarmID               *string    `json:"farm_id,omitempty" binding:"omitempty,uuid"`
	CycleID              *string    `json:"cycle_id,omitempty" binding:"omitempty,uuid"`
}

// LinkInvoicesRequest links a source invoice to one or more targets
type LinkInvoicesRequest struct {
	TargetIDs    []string `json:"target_ids" binding:"required,min=1,dive,uuid"`
	RelationType string   `json:"relation_type" binding:"required,relation_type"`
}

// PostponeReminderRequest postpones the linking reminder by N days
type PostponeReminderRequest struct {
	Days int `json:"days" binding:"required,min=1"`
}

// TransferResultResponse reports a bulk transfer outcome
type TransferResultResponse struct {
	Transferred int      `json:"transferred"`
	Errors      []string `json:"errors,omitempty"`
}

func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (r *AcceptInvoiceRequest) toApplication(invoiceID uuid.UUID) (appaccounting.AcceptInvoiceRequest, error) {
	req := appaccounting.AcceptInvoiceRequest{
		InvoiceID:  invoiceID,
		ModuleType: accounting.ModuleType(r.ModuleType),
		DueDate:    r.DueDate,
	}

	if r.PaymentType != nil {
		pt := accounting.PaymentType(*r.PaymentType)
		req.PaymentType = &pt
	}
	if r.VATDeduction != nil {
		vd := accounting.VATDeduction(*r.VATDeduction)
		req.VATDeduction = &vd
	}
	req.Comment = r.Comment

	var err error
	if req.FarmID, err = parseUUIDPtr(r.FarmID); err != nil {
		return req, err
	}
	if req.CycleID, err = parseUUIDPtr(r.CycleID); err != nil {
		return req, err
	}

	if r.Feed != nil {
		payload, err := r.Feed.toApplication()
		if err != nil {
			return req, err
		}
		req.Payload.Feed = payload
	}
	if r.Gas != nil {
		payload, err := r.Gas.toApplication()
		if err != nil {
			return req, err
		}
		req.Payload.Gas = payload
	}
	if r.Expense != nil {
		payload, err := r.Expense.toApplication()
		if err != nil {
			return req, err
		}
		req.Payload.Expense = payload
	}
	if r.Sale != nil {
		payload, err := r.Sale.toApplication()
		if err != nil {
			return req, err
		}
		req.Payload.Sale = payload
	}

	return req, nil
}

func (r *FeedDeliveryPayloadRequest) toApplication() (*appaccounting.FeedDeliveryPayload, error) {
	farmID, err := uuid.Parse(r.FarmID)
	if err != nil {
		return nil, err
	}
	cycleID, err := uuid.Parse(r.CycleID)
	if err != nil {
		return nil, err
	}
	feedItemID, err := uuid.Parse(r.FeedItemID)
	if err != nil {
		return nil, err
	}
	henhouseID, err := parseUUIDPtr(r.HenhouseID)
	if err != nil {
		return nil, err
	}
	contractorID, err := parseUUIDPtr(r.ContractorID)
	if err != nil {
		return nil, err
	}

	return &appaccounting.FeedDeliveryPayload{
		FarmID:          farmID,
		CycleID:         cycleID,
		HenhouseID:      henhouseID,
		ContractorID:    contractorID,
		ContractorName:  r.ContractorName,
		ContractorTaxID: r.ContractorTaxID,
		FeedItemID:      feedItemID,
		Quantity:        r.Quantity,
		UnitPrice:       r.UnitPrice,
		DeliveryDate:    r.DeliveryDate,
	}, nil
}

func (r *GasDeliveryPayloadRequest) toApplication() (*appaccounting.GasDeliveryPayload, error) {
	farmID, err := uuid.Parse(r.FarmID)
	if err != nil {
		return nil, err
	}
	cycleID, err := uuid.Parse(r.CycleID)
	if err != nil {
		return nil, err
	}
	contractorID, err := parseUUIDPtr(r.ContractorID)
	if err != nil {
		return nil, err
	}

	return &appaccounting.GasDeliveryPayload{
		FarmID:          farmID,
		CycleID:         cycleID,
		ContractorID:    contractorID,
		ContractorName:  r.ContractorName,
		ContractorTaxID: r.ContractorTaxID,
		Quantity:        r.Quantity,
		UnitPrice:       r.UnitPrice,
		DeliveryDate:    r.DeliveryDate,
	}, nil
}

func (r *ProductionExpensePayloadRequest) toApplication() (*appaccounting.ProductionExpensePayload, error) {
	farmID, err := uuid.Parse(r.FarmID)
	if err != nil {
		return nil, err
	}
	cycleID, err := uuid.Parse(r.CycleID)
	if err != nil {
		return nil, err
	}
	contractorID, err := parseUUIDPtr(r.ContractorID)
	if err != nil {
		return nil, err
	}

	return &appaccounting.ProductionExpensePayload{
		FarmID:          farmID,
		CycleID:         cycleID,
		ContractorID:    contractorID,
		ContractorName:  r.ContractorName,
		ContractorTaxID: r.ContractorTaxID,
		ExpenseType:     r.ExpenseType,
	}, nil
}

func (r *SaleInvoicePayloadRequest) toApplication() (*appaccounting.SaleInvoicePayload, error) {
	farmID, err := uuid.Parse(r.FarmID)
	if err != nil {
		return nil, err
	}
	cycleID, err := uuid.Parse(r.CycleID)
	if err != nil {
		return nil, err
	}
	slaughterhouseID, err := uuid.Parse(r.SlaughterhouseID)
	if err != nil {
		return nil, err
	}

	return &appaccounting.SaleInvoicePayload{
		FarmID:           farmID,
		CycleID:          cycleID,
		SlaughterhouseID: slaughterhouseID,
	}, nil
}

func (r *UpdateInvoiceRequest) toApplication() (appaccounting.UpdateInvoiceRequest, error) {
	patch := appaccounting.UpdateInvoiceRequest{
		DueDate:              r.DueDate,
		Comment:              r.Comment,
		RelatedInvoiceNumber: r.RelatedInvoiceNumber,
	}

	if r.Status != nil {
		status := accounting.InvoiceStatus(*r.Status)
		patch.Status = &status
	}
	if r.ModuleType != nil {
		mt := accounting.ModuleType(*r.ModuleType)
		patch.ModuleType = &mt
	}
	if r.PaymentStatus != nil {
		ps := accounting.PaymentStatus(*r.PaymentStatus)
		patch.PaymentStatus = &ps
	}
	if r.PaymentType != nil {
		pt := accounting.PaymentType(*r.PaymentType)
		patch.PaymentType = &pt
	}
	if r.VATDeduction != nil {
		vd := accounting.VATDeduction(*r.VATDeduction)
		patch.VATDeduction = &vd
	}

	var err error
	if patch.AssignedUserID, err = parseUUIDPtr(r.AssignedUserID); err != nil {
		return patch, err
	}
	if patch.FarmID, err = parseUUIDPtr(r.FarmID); err != nil {
		return patch, err
	}
	if patch.CycleID, err = parseUUIDPtr(r.CycleID); err != nil {
		return patch, err
	}

	return patch, nil
}
