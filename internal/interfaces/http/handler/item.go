package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/opsync/backend/internal/application/catalog"
	"github.com/opsync/backend/internal/domain/identity"
	"github.com/opsync/backend/internal/interfaces/http/middleware"
)

// ItemHandler handles catalog item API endpoints
type ItemHandler struct {
	BaseHandler
	itemService *catalogapp.ItemService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(itemService *catalogapp.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// RegisterRoutes registers item routes. Reads are open to every
// authenticated role; writes need the catalog permission.
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	write := middleware.RequirePermission(identity.PermissionCatalogWrite)

	items := rg.Group("/items")
	{
		items.GET("", h.List)
		items.POST("", write, h.Create)
		items.GET("/:id", h.GetByID)
		items.PUT("/:id", write, h.Update)
		items.DELETE("/:id", write, h.Delete)
	}
}

// Create creates a new catalog item
func (h *ItemHandler) Create(c *gin.Context) {
	var req catalogapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// List returns catalog items matching the filter
func (h *ItemHandler) List(c *gin.Context) {
	var filter catalogapp.ItemListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	items, total, err := h.itemService.List(c.Request.Context(), filter)
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
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// GetByID returns a single catalog item
func (h *ItemHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	item, err := h.itemService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Update updates a catalog item
func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req catalogapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete removes an unreferenced catalog item
func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	if err := h.itemService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
