package handler

import (
	"github.com/gin-gonic/gin"

	salesapp "github.com/opsync/backend/internal/application/sales"
	"github.com/opsync/backend/internal/domain/identity"
	"github.com/opsync/backend/internal/interfaces/http/middleware"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *salesapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *salesapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	read := middleware.RequirePermission(identity.PermissionInvoicesRead)
	write := middleware.RequirePermission(identity.PermissionInvoicesWrite)

	invoices := rg.Group("/invoices")
	{
		invoices.GET("", read, h.List)
		invoices.POST("", write, h.Create)
		invoices.GET("/number/:number", read, h.GetByNumber)
		invoices.GET("/:id", read, h.GetByID)
		invoices.PUT("/:id", write, h.Update)
		invoices.POST("/:id/issue", write, h.Issue)
		invoices.POST("/:id/void", write, h.Void)
		invoices.GET("/:id/payments", read, h.ListPayments)
		invoices.POST("/:id/payments", write, h.RecordPayment)
	}
}

// Create drafts a new invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req salesapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), req, getUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// List returns invoices matching the filter
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter salesapp.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, invoices, total, page, pageSize)
}

// GetByID returns a single invoice
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// GetByNumber returns a single invoice by display number
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	invoice, err := h.invoiceService.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Update replaces details and lines of a draft invoice
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req salesapp.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Issue transitions a draft invoice to ISSUED
func (h *InvoiceHandler) Issue(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.Issue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Void cancels an invoice
func (h *InvoiceHandler) Void(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.Void(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ListPayments returns the payments recorded against an invoice
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	payments, err := h.invoiceService.ListPayments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// RecordPayment records a payment against an issued invoice
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req salesapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), id, req, getUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}
