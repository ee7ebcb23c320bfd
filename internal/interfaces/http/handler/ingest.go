package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appaccounting "github.com/farmops/backend/internal/application/accounting"
	"github.com/farmops/backend/internal/domain/accounting"
)

// Uploads above this size are refused before the XML parser sees them.
const maxXMLUploadBytes = 5 << 20

// IngestHandler handles invoice ingestion endpoints: exchange sync,
// XML upload and manual entry.
type IngestHandler struct {
	BaseHandler
	service *appaccounting.IngestService
}

// NewIngestHandler creates a new IngestHandler
func NewIngestHandler(service *appaccounting.IngestService) *IngestHandler {
	return &IngestHandler{service: service}
}

// SyncExchangeRequest controls how far back the exchange sync reaches.
type SyncExchangeRequest struct {
	Since *string `json:"since" binding:"omitempty,datetime=2006-01-02"`
}

// SyncResultResponse reports the outcome of an exchange sync run
type SyncResultResponse struct {
	Fetched  int      `json:"fetched"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// CreateManualInvoiceRequest represents a hand-entered invoice
type CreateManualInvoiceRequest struct {
	Number        string          `json:"number" binding:"required"`
	IssueDate     string          `json:"issue_date" binding:"required,datetime=2006-01-02"`
	DueDate       *string         `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	SellerName    string          `json:"seller_name"`
	SellerTaxID   string          `json:"seller_tax_id"`
	BuyerName     string          `json:"buyer_name"`
	BuyerTaxID    string          `json:"buyer_tax_id"`
	GrossAmount   decimal.Decimal `json:"gross_amount" binding:"required"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	VATAmount     decimal.Decimal `json:"vat_amount"`
	Direction     string          `json:"direction" binding:"required,invoice_direction"`
	PaymentStatus *string         `json:"payment_status"`
	Comment       string          `json:"comment"`
}

// SyncFromExchange pulls new invoices from the e-invoice exchange
func (h *IngestHandler) SyncFromExchange(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var body SyncExchangeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	// Default lookback keeps a daily sync from missing anything over
	// a long weekend.
	since := time.Now().AddDate(0, 0, -7)
	if body.Since != nil {
		since, _ = time.Parse("2006-01-02", *body.Since)
	}

	result, err := h.service.SyncFromExchange(c.Request.Context(), actorID, since)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, SyncResultResponse{
		Fetched:  result.Fetched,
		Imported: result.Imported,
		Skipped:  result.Skipped,
		Errors:   result.Errors,
	})
}

// ImportXML ingests an uploaded e-invoice XML file
func (h *IngestHandler) ImportXML(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file upload")
		return
	}
	if fileHeader.Size > maxXMLUploadBytes {
		h.BadRequest(c, "File too large")
		return
	}

	direction := accounting.DirectionPurchase
	if raw := c.PostForm("direction"); raw != "" {
		direction = accounting.InvoiceDirection(raw)
		if !direction.IsValid() {
			h.BadRequest(c, "Unknown invoice direction: "+raw)
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read upload")
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		h.InternalError(c, "Failed to read upload")
		return
	}

	inv, err := h.service.ImportXML(c.Request.Context(), actorID, fileHeader.Filename, body, direction)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ToInvoiceResponse(inv))
}

// CreateManual records a hand-entered invoice
func (h *IngestHandler) CreateManual(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var body CreateManualInvoiceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	req, err := body.toApplication()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	inv, err := h.service.CreateManual(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ToInvoiceResponse(inv))
}

func (r *CreateManualInvoiceRequest) toApplication() (appaccounting.CreateManualInvoiceRequest, error) {
	issueDate, err := time.Parse("2006-01-02", r.IssueDate)
	if err != nil {
		return appaccounting.CreateManualInvoiceRequest{}, err
	}

	req := appaccounting.CreateManualInvoiceRequest{
		Number:      r.Number,
		IssueDate:   issueDate,
		SellerName:  r.SellerName,
		SellerTaxID: r.SellerTaxID,
		BuyerName:   r.BuyerName,
		BuyerTaxID:  r.BuyerTaxID,
		GrossAmount: r.GrossAmount,
		NetAmount:   r.NetAmount,
		VATAmount:   r.VATAmount,
		Direction:   accounting.InvoiceDirection(r.Direction),
		Comment:     r.Comment,
	}

	if r.DueDate != nil {
		due, err := time.Parse("2006-01-02", *r.DueDate)
		if err != nil {
			return appaccounting.CreateManualInvoiceRequest{}, err
		}
		req.DueDate = &due
	}
	if r.PaymentStatus != nil {
		status := accounting.PaymentStatus(*r.PaymentStatus)
		req.PaymentStatus = &status
	}

	return req, nil
}
