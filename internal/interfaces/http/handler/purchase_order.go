package handler

import (
	"github.com/gin-gonic/gin"

	purchasingapp "github.com/opsync/backend/internal/application/purchasing"
	"github.com/opsync/backend/internal/domain/identity"
	"github.com/opsync/backend/internal/interfaces/http/middleware"
)

// PurchaseOrderHandler handles purchase order API endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *purchasingapp.OrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *purchasingapp.OrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// RegisterRoutes registers purchase order routes
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	read := middleware.RequirePermission(identity.PermissionPurchasingRead)
	write := middleware.RequirePermission(identity.PermissionPurchasingWrite)

	orders := rg.Group("/purchase-orders")
	{
		orders.GET("", read, h.List)
		orders.POST("", write, h.Create)
		orders.GET("/number/:number", read, h.GetByNumber)
		orders.GET("/:id", read, h.GetByID)
		orders.PUT("/:id", write, h.Update)
		orders.POST("/:id/approve", write, h.Approve)
		orders.POST("/:id/receive", write, h.Receive)
		orders.POST("/:id/cancel", write, h.Cancel)
	}
}

// Create drafts a new purchase order
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req purchasingapp.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req, getUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List returns purchase orders matching the filter
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var filter purchasingapp.PurchaseOrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
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
	h.SuccessWithMeta(c, orders, total, page, pageSize)
}

// GetByID returns a single purchase order
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetByNumber returns a single purchase order by display number
func (h *PurchaseOrderHandler) GetByNumber(c *gin.Context) {
	order, err := h.orderService.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Update replaces details and lines of a draft order
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	var req purchasingapp.UpdatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Approve transitions a draft order to APPROVED
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	order, err := h.orderService.Approve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Receive marks an approved order as received
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	order, err := h.orderService.Receive(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel cancels a draft or approved order
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	var req purchasingapp.CancelPurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
