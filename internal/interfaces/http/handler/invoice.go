package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appaccounting "github.com/farmops/backend/internal/application/accounting"
	"github.com/farmops/backend/internal/domain/accounting"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/interfaces/http/dto"
)

// InvoiceHandler handles the invoice lifecycle endpoints
type InvoiceHandler struct {
	BaseHandler
	service *appaccounting.LifecycleService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service *appaccounting.LifecycleService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// InvoiceListFilter represents filter parameters for the invoice list
type InvoiceListFilter struct {
	dto.ListRequest
	Status         string `form:"status"`
	PaymentStatus  string `form:"payment_status"`
	ModuleType     string `form:"module_type"`
	AssignedUserID string `form:"assigned_user_id" binding:"omitempty,uuid"`
	FarmID         string `form:"farm_id" binding:"omitempty,uuid"`
	Source         string `form:"source"`
	Direction      string `form:"direction"`
	IssuedFrom     string `form:"issued_from"`
	IssuedTo       string `form:"issued_to"`
}

// List returns a filtered, paginated invoice list
func (h *InvoiceHandler) List(c *gin.Context) {
	var query InvoiceListFilter
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter, err := query.toDomain()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.service.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]InvoiceResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ToInvoiceResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// GetByID returns one invoice with its audit trail
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	invoiceID, ok := h.pathID(c)
	if !ok {
		return
	}

	inv, trail, err := h.service.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, InvoiceDetailResponse{
		Invoice:  ToInvoiceResponse(inv),
		AuditLog: ToAuditLogResponses(trail),
	})
}

// AuditLog returns the transition history of one invoice
func (h *InvoiceHandler) AuditLog(c *gin.Context) {
	invoiceID, ok := h.pathID(c)
	if !ok {
		return
	}

	_, trail, err := h.service.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToAuditLogResponses(trail))
}

// Accept accepts an invoice into a business module
func (h *InvoiceHandler) Accept(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, ok := h.pathID(c)
	if !ok {
		return
	}

	var body AcceptInvoiceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	req, err := body.toApplication(invoiceID)
	if err != nil {
		h.BadRequest(c, "Invalid identifier in payload")
		return
	}

	inv, err := h.service.Accept(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToInvoiceResponse(inv))
}

// AcceptNoLinking accepts a sales invoice without linking purchase invoices
func (h *InvoiceHandler) AcceptNoLinking(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, ok := h.pathID(c)
	if !ok {
		return
	}

	inv, err := h.service.AcceptNoLinking(c.Request.Context(), actorID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToInvoiceResponse(inv))
}

// Reject rejects an invoice and retracts any module record
func (h *InvoiceHandler) Reject(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, ok := h.pathID(c)
	if !ok {
		return
	}

	var body RejectInvoiceRequest
	if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	inv, err := h.service.Reject(c.Request.Context(), actorID, invoiceID, body.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToInvoiceResponse(inv))
}

// Hold reassigns an invoice to another user
func (h *InvoiceHandler) Hold(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, ok := h.pathID(c)
	if !ok {
		return
	}

	var body HoldInvoiceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	newUserID, err := uuid.Parse(body.NewUserID)
	if err != nil {
		h.BadRequest(c, "Invalid new_user_id")
		return
	}
	expectedUserID, err := parseUUIDPtr(body.ExpectedUserID)
	if err != nil {
		h.BadRequest(c, "Invalid expected_user_id")
		return
	}

	inv, err := h.service.Hold(c.Request.Context(), actorID, appaccounting.HoldRequest{
		InvoiceID:      invoiceID,
		NewUserID:      newUserID,
		ExpectedUserID: expectedUserID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToInvoiceResponse(inv))
}

// TransferToOffice sends a batch of invoices to the accounting office
func (h *InvoiceHandler) TransferToOffice(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var body TransferToOfficeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	invoiceIDs := make([]uuid.UUID, 0, len(body.InvoiceIDs))
	for _, raw := range body.InvoiceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid invoice ID: "+raw)
			return
		}
		invoiceIDs = append(invoiceIDs, id)
	}

	result, err := h.service.TransferToOffice(c.Request.Context(), actorID, invoiceIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, TransferResultResponse{
		Transferred: result.Transferred,
		Errors:      result.Errors,
	})
}

// Update applies a partial patch to an invoice
func (h *InvoiceHandler) Update(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, ok := h.pathID(c)
	if !ok {
		return
	}

	var body UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	patch, err := body.toApplication()
	if err != nil {
		h.BadRequest(c, "Invalid identifier in payload")
		return
	}

	inv, err := h.service.Update(c.Request.Context(), actorID, invoiceID, patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToInvoiceResponse(inv))
}

// Link records relations between a source invoice and target invoices
func (h *InvoiceHandler) Link(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	sourceID, ok := h.pathID(c)
	if !ok {
		return
	}

	var body LinkInvoicesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	targetIDs := make([]uuid.UUID, 0, len(body.TargetIDs))
	for _, raw := range body.TargetIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid target ID: "+raw)
			return
		}
		targetIDs = append(targetIDs, id)
	}

	err = h.service.LinkInvoices(c.Request.Context(), actorID, sourceID, targetIDs, accounting.RelationType(body.RelationType))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// PostponeReminder pushes the linking reminder into the future
func (h *InvoiceHandler) PostponeReminder(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, ok := h.pathID(c)
	if !ok {
		return
	}

	var body PostponeReminderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	inv, err := h.service.PostponeLinkingReminder(c.Request.Context(), actorID, invoiceID, body.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToInvoiceResponse(inv))
}

// SyncPayment re-reads payment state from the module record
func (h *InvoiceHandler) SyncPayment(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, ok := h.pathID(c)
	if !ok {
		return
	}

	inv, err := h.service.SyncPaymentFromModule(c.Request.Context(), actorID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ToInvoiceResponse(inv))
}

// Delete soft-deletes an invoice and retracts its module record
func (h *InvoiceHandler) Delete(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	invoiceID, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actorID, invoiceID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *InvoiceHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return uuid.Nil, false
	}
	return id, true
}

func (q *InvoiceListFilter) toDomain() (accounting.InvoiceFilter, error) {
	base := shared.DefaultFilter()
	if q.Page > 0 {
		base.Page = q.Page
	}
	if q.PageSize > 0 {
		base.PageSize = q.PageSize
	}
	if q.OrderBy != "" {
		base.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		base.OrderDir = q.OrderDir
	}
	base.Search = q.Search

	filter := accounting.InvoiceFilter{Filter: base}

	if q.Status != "" {
		status := accounting.InvoiceStatus(q.Status)
		if !status.IsValid() {
			return filter, shared.NewDomainError("INVALID_STATUS", "Unknown invoice status: "+q.Status)
		}
		filter.Status = &status
	}
	if q.PaymentStatus != "" {
		ps := accounting.PaymentStatus(q.PaymentStatus)
		if !ps.IsValid() {
			return filter, shared.NewDomainError("INVALID_PAYMENT_STATUS", "Unknown payment status: "+q.PaymentStatus)
		}
		filter.PaymentStatus = &ps
	}
	if q.ModuleType != "" {
		mt := accounting.ModuleType(q.ModuleType)
		if !mt.IsValid() {
			return filter, shared.NewDomainError("INVALID_MODULE", "Unknown module type: "+q.ModuleType)
		}
		filter.ModuleType = &mt
	}
	if q.Source != "" {
		src := accounting.InvoiceSource(q.Source)
		if !src.IsValid() {
			return filter, shared.NewDomainError("INVALID_SOURCE", "Unknown invoice source: "+q.Source)
		}
		filter.Source = &src
	}
	if q.Direction != "" {
		dir := accounting.InvoiceDirection(q.Direction)
		if !dir.IsValid() {
			return filter, shared.NewDomainError("INVALID_DIRECTION", "Unknown invoice direction: "+q.Direction)
		}
		filter.Direction = &dir
	}
	if q.AssignedUserID != "" {
		id, err := uuid.Parse(q.AssignedUserID)
		if err != nil {
			return filter, shared.NewDomainError("INVALID_USER", "Invalid assigned_user_id")
		}
		filter.AssignedUserID = &id
	}
	if q.FarmID != "" {
		id, err := uuid.Parse(q.FarmID)
		if err != nil {
			return filter, shared.NewDomainError("INVALID_INPUT", "Invalid farm_id")
		}
		filter.FarmID = &id
	}
	if q.IssuedFrom != "" {
		from, err := time.Parse("2006-01-02", q.IssuedFrom)
		if err != nil {
			return filter, shared.NewDomainError("INVALID_INPUT", "issued_from must be YYYY-MM-DD")
		}
		filter.IssuedFrom = &from
	}
	if q.IssuedTo != "" {
		to, err := time.Parse("2006-01-02", q.IssuedTo)
		if err != nil {
			return filter, shared.NewDomainError("INVALID_INPUT", "issued_to must be YYYY-MM-DD")
		}
		filter.IssuedTo = &to
	}

	return filter, nil
}
