package handler

import (
	"github.com/gin-gonic/gin"

	partnerapp "github.com/opsync/backend/internal/application/partner"
	"github.com/opsync/backend/internal/domain/identity"
	"github.com/opsync/backend/internal/interfaces/http/middleware"
)

// CustomerHandler handles customer API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// RegisterRoutes registers customer routes
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	write := middleware.RequirePermission(identity.PermissionPartnersWrite)

	customers := rg.Group("/customers")
	{
		customers.GET("", h.List)
		customers.POST("", write, h.Create)
		customers.GET("/:id", h.GetByID)
		customers.PUT("/:id", write, h.Update)
		customers.DELETE("/:id", write, h.Delete)
	}
}

// Create creates a new customer
func (h *CustomerHandler) Create(c *gin.Context) {
	var req partnerapp.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// List returns customers matching the filter
func (h *CustomerHandler) List(c *gin.Context) {
	var filter partnerapp.PartnerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	customers, total, err := h.customerService.List(c.Request.Context(), filter)
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
	h.SuccessWithMeta(c, customers, total, page, pageSize)
}

// GetByID returns a single customer
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Update updates a customer
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	var req partnerapp.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete removes a customer without invoices
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
