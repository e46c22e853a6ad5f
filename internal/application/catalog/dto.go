package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opsync/backend/internal/domain/catalog"
)

// CreateItemRequest represents a request to create a catalog item
type CreateItemRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=255"`
	SKU         string          `json:"sku" binding:"max=100"`
	Description string          `json:"description" binding:"max=1000"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IsService   bool            `json:"is_service"`
}

// UpdateItemRequest represents a request to update a catalog item
type UpdateItemRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=255"`
	SKU         string          `json:"sku" binding:"max=100"`
	Description string          `json:"description" binding:"max=1000"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IsService   bool            `json:"is_service"`
}

// ItemListFilter represents filter options for the item list
type ItemListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ItemResponse represents a catalog item in API responses
type ItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku,omitempty"`
	Description string    `json:"description,omitempty"`
	UnitPrice   string    `json:"unit_price"`
	IsService   bool      `json:"is_service"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToItemResponse converts an item to its API representation
func ToItemResponse(item *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		SKU:         item.SKU,
		Description: item.Description,
		UnitPrice:   item.UnitPrice.String(),
		IsService:   item.IsService,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// ToItemResponses converts items to their API representation
func ToItemResponses(items []catalog.Item) []ItemResponse {
	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = ToItemResponse(&items[i])
	}
	return responses
}
