package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opsync/backend/internal/domain/sales"
)

// ==================== Invoice DTOs ====================

// CreateInvoiceRequest represents a request to create a draft invoice
type CreateInvoiceRequest struct {
	CustomerID uuid.UUID                `json:"customer_id" binding:"required"`
	DueDate    *time.Time               `json:"due_date"`
	Notes      string                   `json:"notes" binding:"max=1000"`
	Lines      []CreateInvoiceLineInput `json:"lines" binding:"required,min=1"`
}

// CreateInvoiceLineInput represents a line in the create invoice request.
// UnitPriceOverride, when present, takes precedence over the catalog price.
type CreateInvoiceLineInput struct {
	ItemID            uuid.UUID        `json:"item_id" binding:"required"`
	Quantity          int              `json:"quantity" binding:"required,min=1"`
	UnitPriceOverride *decimal.Decimal `json:"unit_price_override"`
}

// UpdateInvoiceRequest represents a request to update a draft invoice
type UpdateInvoiceRequest struct {
	CustomerID *uuid.UUID               `json:"customer_id"`
	DueDate    *time.Time               `json:"due_date"`
	Notes      *string                  `json:"notes"`
	Lines      []CreateInvoiceLineInput `json:"lines"`
}

// RecordPaymentRequest represents a request to record a payment against an
// issued invoice
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=CASH BANK MOBILE_MONEY CARD"`
	PaidAt    *time.Time      `json:"paid_at"`
	Reference string          `json:"reference" binding:"max=100"`
}

// InvoiceListFilter represents filter options for the invoice list
type InvoiceListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     *string    `form:"status"`
	StartDate  *time.Time `form:"start_date"`
	EndDate    *time.Time `form:"end_date"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceLineResponse represents an invoice line in API responses
type InvoiceLineResponse struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	LineTotal string    `json:"line_total"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID        uuid.UUID `json:"id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
	Amount    string    `json:"amount"`
	Method    string    `json:"method"`
	PaidAt    time.Time `json:"paid_at"`
	Reference string    `json:"reference,omitempty"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	CustomerID    uuid.UUID             `json:"customer_id"`
	Status        string                `json:"status"`
	IssueDate     *time.Time            `json:"issue_date,omitempty"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	Subtotal      string                `json:"subtotal"`
	TotalPaid     string                `json:"total_paid"`
	Balance       string                `json:"balance"`
	Notes         string                `json:"notes,omitempty"`
	Lines         []InvoiceLineResponse `json:"lines"`
	Payments      []PaymentResponse     `json:"payments,omitempty"`
	Version       int                   `json:"version"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// InvoiceListItemResponse is the compact shape used in list views
type InvoiceListItemResponse struct {
	ID            uuid.UUID  `json:"id"`
	InvoiceNumber string     `json:"invoice_number"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	Status        string     `json:"status"`
	Subtotal      string     `json:"subtotal"`
	Balance       string     `json:"balance"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToInvoiceResponse converts an invoice aggregate to its API representation
func ToInvoiceResponse(inv *sales.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, line := range inv.Lines {
		lines[i] = InvoiceLineResponse{
			ID:        line.ID,
			ItemID:    line.ItemID,
			ItemName:  line.ItemName,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.String(),
			LineTotal: line.LineTotal.String(),
		}
	}

	payments := make([]PaymentResponse, len(inv.Payments))
	for i, p := range inv.Payments {
		payments[i] = ToPaymentResponse(&p)
	}

	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		Status:        inv.Status.String(),
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Subtotal:      inv.Subtotal.String(),
		TotalPaid:     inv.TotalPaid.String(),
		Balance:       inv.Balance.String(),
		Notes:         inv.Notes,
		Lines:         lines,
		Payments:      payments,
		Version:       inv.Version,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// ToPaymentResponse converts a payment to its API representation
func ToPaymentResponse(p *sales.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		InvoiceID: p.InvoiceID,
		Amount:    p.Amount.String(),
		Method:    p.Method.String(),
		PaidAt:    p.PaidAt,
		Reference: p.Reference,
	}
}

// ToInvoiceListItemResponses converts invoices to their list representation
func ToInvoiceListItemResponses(invoices []sales.Invoice) []InvoiceListItemResponse {
	items := make([]InvoiceListItemResponse, len(invoices))
	for i, inv := range invoices {
		items[i] = InvoiceListItemResponse{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			CustomerID:    inv.CustomerID,
			Status:        inv.Status.String(),
			Subtotal:      inv.Subtotal.String(),
			Balance:       inv.Balance.String(),
			DueDate:       inv.DueDate,
			CreatedAt:     inv.CreatedAt,
		}
	}
	return items
}
