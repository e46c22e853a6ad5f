package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opsync/backend/internal/domain/purchasing"
)

// CreatePurchaseOrderRequest represents a request to create a draft purchase
// order. Lines are free text; no catalog resolution happens on the buy side.
type CreatePurchaseOrderRequest struct {
	SupplierID uuid.UUID                      `json:"supplier_id" binding:"required"`
	OrderDate  *time.Time                     `json:"order_date"`
	Notes      string                         `json:"notes" binding:"max=1000"`
	Lines      []CreatePurchaseOrderLineInput `json:"lines" binding:"required,min=1"`
}

// CreatePurchaseOrderLineInput represents a line in the create order request
type CreatePurchaseOrderLineInput struct {
	ItemName  string          `json:"item_name" binding:"required,min=1,max=255"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// UpdatePurchaseOrderRequest represents a request to update a draft order
type UpdatePurchaseOrderRequest struct {
	SupplierID *uuid.UUID                     `json:"supplier_id"`
	OrderDate  *time.Time                     `json:"order_date"`
	Notes      *string                        `json:"notes"`
	Lines      []CreatePurchaseOrderLineInput `json:"lines"`
}

// CancelPurchaseOrderRequest represents a request to cancel an order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// PurchaseOrderListFilter represents filter options for the order list
type PurchaseOrderListFilter struct {
	Search     string     `form:"search"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	Status     *string    `form:"status"`
	StartDate  *time.Time `form:"start_date"`
	EndDate    *time.Time `form:"end_date"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseOrderLineResponse represents an order line in API responses
type PurchaseOrderLineResponse struct {
	ID        uuid.UUID `json:"id"`
	ItemName  string    `json:"item_name"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	LineTotal string    `json:"line_total"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID           uuid.UUID                   `json:"id"`
	OrderNumber  string                      `json:"order_number"`
	SupplierID   uuid.UUID                   `json:"supplier_id"`
	Status       string                      `json:"status"`
	OrderDate    time.Time                   `json:"order_date"`
	ReceivedDate *time.Time                  `json:"received_date,omitempty"`
	Subtotal     string                      `json:"subtotal"`
	Total        string                      `json:"total"`
	Notes        string                      `json:"notes,omitempty"`
	CancelReason string                      `json:"cancel_reason,omitempty"`
	Lines        []PurchaseOrderLineResponse `json:"lines"`
	Version      int                         `json:"version"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// PurchaseOrderListItemResponse is the compact shape used in list views
type PurchaseOrderListItemResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"order_number"`
	SupplierID  uuid.UUID `json:"supplier_id"`
	Status      string    `json:"status"`
	Total       string    `json:"total"`
	OrderDate   time.Time `json:"order_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToPurchaseOrderResponse converts an order aggregate to its API
// representation
func ToPurchaseOrderResponse(order *purchasing.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]PurchaseOrderLineResponse, len(order.Lines))
	for i, line := range order.Lines {
		lines[i] = PurchaseOrderLineResponse{
			ID:        line.ID,
			ItemName:  line.ItemName,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.String(),
			LineTotal: line.LineTotal.String(),
		}
	}

	return PurchaseOrderResponse{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		SupplierID:   order.SupplierID,
		Status:       order.Status.String(),
		OrderDate:    order.OrderDate,
		ReceivedDate: order.ReceivedDate,
		Subtotal:     order.Subtotal.String(),
		Total:        order.Total.String(),
		Notes:        order.Notes,
		CancelReason: order.CancelReason,
		Lines:        lines,
		Version:      order.Version,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}

// ToPurchaseOrderListItemResponses converts orders to their list
// representation
func ToPurchaseOrderListItemResponses(orders []purchasing.PurchaseOrder) []PurchaseOrderListItemResponse {
	items := make([]PurchaseOrderListItemResponse, len(orders))
	for i, order := range orders {
		items[i] = PurchaseOrderListItemResponse{
			ID:          order.ID,
			OrderNumber: order.OrderNumber,
			SupplierID:  order.SupplierID,
			Status:      order.Status.String(),
			Total:       order.Total.String(),
			OrderDate:   order.OrderDate,
			CreatedAt:   order.CreatedAt,
		}
	}
	return items
}
