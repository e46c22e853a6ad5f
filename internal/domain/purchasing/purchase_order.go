package purchasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opsync/backend/internal/domain/shared"
	"github.com/opsync/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the lifecycle status of a purchase order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusApproved  OrderStatus = "APPROVED"
	OrderStatusReceived  OrderStatus = "RECEIVED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusApproved, OrderStatusReceived, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// RECEIVED and CANCELLED are terminal.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusApproved || target == OrderStatusCancelled
	case OrderStatusApproved:
		return target == OrderStatusReceived || target == OrderStatusCancelled
	case OrderStatusReceived, OrderStatusCancelled:
		return false
	}
	return false
}

// FormatOrderNumber renders an allocated counter as a display number,
// e.g. PO-2026-000007. Uniqueness comes from the counter, not the year.
func FormatOrderNumber(at time.Time, counter int64) string {
	return fmt.Sprintf("PO-%d-%06d", at.Year(), counter)
}

// PurchaseOrderLine is a free-text line on a purchase order. Unlike invoice
// lines there is no catalog reference: the item name and unit price come
// straight from the buyer.
type PurchaseOrderLine struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	ItemName  string            `gorm:"size:255;not null"`
	Quantity  int               `gorm:"not null"`
	UnitPrice valueobject.Money `gorm:"type:numeric(12,2)"`
	LineTotal valueobject.Money `gorm:"type:numeric(12,2)"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// NewPurchaseOrderLine creates a new purchase order line. As with invoice
// lines, the total is computed from the raw unit price and rounded once.
func NewPurchaseOrderLine(orderID uuid.UUID, itemName string, quantity int, unitPrice decimal.Decimal) (*PurchaseOrderLine, error) {
	if itemName == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Item name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return nil, shared.ErrInvalidAmount
	}

	return &PurchaseOrderLine{
		ID:        uuid.New(),
		OrderID:   orderID,
		ItemName:  itemName,
		Quantity:  quantity,
		UnitPrice: valueobject.NewMoney(unitPrice),
		LineTotal: valueobject.NewMoney(unitPrice.Mul(decimal.NewFromInt(int64(quantity)))),
		CreatedAt: time.Now(),
	}, nil
}

// PurchaseOrder is the aggregate root for an order placed with a supplier.
// It moves DRAFT → APPROVED → RECEIVED, with CANCELLED reachable from the two
// non-terminal states.
type PurchaseOrder struct {
	shared.AuditedAggregateRoot
	OrderNumber  string      `gorm:"size:50;uniqueIndex;not null"`
	SupplierID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status       OrderStatus `gorm:"size:20;not null;default:DRAFT"`
	OrderDate    time.Time   `gorm:"not null"`
	ReceivedDate *time.Time
	Subtotal     valueobject.Money   `gorm:"type:numeric(12,2)"`
	Total        valueobject.Money   `gorm:"type:numeric(12,2)"`
	Notes        string              `gorm:"size:1000"`
	CancelReason string              `gorm:"size:500"`
	Lines        []PurchaseOrderLine `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new draft purchase order with an allocated number
func NewPurchaseOrder(orderNumber string, supplierID uuid.UUID, orderDate time.Time, notes string) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	return &PurchaseOrder{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(),
		OrderNumber:          orderNumber,
		SupplierID:           supplierID,
		Status:               OrderStatusDraft,
		OrderDate:            orderDate,
		Subtotal:             valueobject.Zero(),
		Total:                valueobject.Zero(),
		Notes:                notes,
		Lines:                make([]PurchaseOrderLine, 0),
	}, nil
}

// ReplaceLines swaps the full set of lines and recalculates totals.
// Only allowed in DRAFT status.
func (o *PurchaseOrder) ReplaceLines(lines []PurchaseOrderLine) error {
	if o.Status != OrderStatusDraft {
		return shared.ErrImmutableDocument
	}
	if len(lines) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Purchase order must have at least one line")
	}

	for idx := range lines {
		lines[idx].OrderID = o.ID
	}
	o.Lines = lines
	o.recalculateTotals()
	o.Touch()

	return nil
}

// UpdateDetails updates the mutable header fields. Only allowed in DRAFT status.
func (o *PurchaseOrder) UpdateDetails(supplierID uuid.UUID, orderDate time.Time, notes string) error {
	if o.Status != OrderStatusDraft {
		return shared.ErrImmutableDocument
	}
	if supplierID == uuid.Nil {
		return shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}

	o.SupplierID = supplierID
	if !orderDate.IsZero() {
		o.OrderDate = orderDate
	}
	o.Notes = notes
	o.Touch()

	return nil
}

// Approve transitions the order from DRAFT to APPROVED
func (o *PurchaseOrder) Approve() error {
	if !o.Status.CanTransitionTo(OrderStatusApproved) {
		return shared.NewInvalidTransitionError(o.Status.String(), OrderStatusApproved.String())
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Cannot approve a purchase order without lines")
	}

	o.Status = OrderStatusApproved
	o.Touch()

	return nil
}

// Receive marks the order as received and stamps the received date.
// Only an APPROVED order can be received.
func (o *PurchaseOrder) Receive() error {
	if !o.Status.CanTransitionTo(OrderStatusReceived) {
		return shared.NewInvalidTransitionError(o.Status.String(), OrderStatusReceived.String())
	}

	now := time.Now()
	o.Status = OrderStatusReceived
	o.ReceivedDate = &now
	o.Touch()

	return nil
}

// Cancel cancels the order with a required reason. Allowed from DRAFT and
// APPROVED; a received order cannot be cancelled.
func (o *PurchaseOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewInvalidTransitionError(o.Status.String(), OrderStatusCancelled.String())
	}
	if reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Cancel reason is required")
	}

	o.Status = OrderStatusCancelled
	o.CancelReason = reason
	o.Touch()

	return nil
}

// recalculateTotals sums the rounded line totals and rounds the sum again.
// Total tracks Subtotal; there is no tax or order-level discount.
func (o *PurchaseOrder) recalculateTotals() {
	subtotal := valueobject.Zero()
	for _, line := range o.Lines {
		subtotal = subtotal.Add(line.LineTotal)
	}
	o.Subtotal = subtotal
	o.Total = subtotal
}

// IsDraft returns true if the order is in draft status
func (o *PurchaseOrder) IsDraft() bool {
	return o.Status == OrderStatusDraft
}

// IsTerminal returns true if the order is received or cancelled
func (o *PurchaseOrder) IsTerminal() bool {
	return o.Status == OrderStatusReceived || o.Status == OrderStatusCancelled
}

// CanModify returns true if lines and header fields may still change
func (o *PurchaseOrder) CanModify() bool {
	return o.IsDraft()
}
