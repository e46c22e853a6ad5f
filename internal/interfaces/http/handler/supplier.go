package handler

import (
	"github.com/gin-gonic/gin"

	partnerapp "github.com/opsync/backend/internal/application/partner"
	"github.com/opsync/backend/internal/domain/identity"
	"github.com/opsync/backend/internal/interfaces/http/middleware"
)

// SupplierHandler handles supplier API endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// RegisterRoutes registers supplier routes
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	write := middleware.RequirePermission(identity.PermissionPartnersWrite)

	suppliers := rg.Group("/suppliers")
	{
		suppliers.GET("", h.List)
		suppliers.POST("", write, h.Create)
		suppliers.GET("/:id", h.GetByID)
		suppliers.PUT("/:id", write, h.Update)
		suppliers.DELETE("/:id", write, h.Delete)
	}
}

// Create creates a new supplier
func (h *SupplierHandler) Create(c *gin.Context) {
	var req partnerapp.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// List returns suppliers matching the filter
func (h *SupplierHandler) List(c *gin.Context) {
	var filter partnerapp.PartnerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	suppliers, total, err := h.supplierService.List(c.Request.Context(), filter)
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
	h.SuccessWithMeta(c, suppliers, total, page, pageSize)
}

// GetByID returns a single supplier
func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	supplier, err := h.supplierService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Update updates a supplier
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	var req partnerapp.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Delete removes a supplier without purchase orders
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	if err := h.supplierService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
