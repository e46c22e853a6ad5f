package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opsync/backend/internal/domain/shared"
	"github.com/opsync/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusVoid          InvoiceStatus = "VOID"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// PAID and VOID are terminal. Payment reconciliation drives the ISSUED →
// PARTIALLY_PAID → PAID moves; Issue and Void are explicit commands.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusIssued || target == InvoiceStatusVoid
	case InvoiceStatusIssued:
		return target == InvoiceStatusPartiallyPaid || target == InvoiceStatusPaid || target == InvoiceStatusVoid
	case InvoiceStatusPartiallyPaid:
		return target == InvoiceStatusPaid || target == InvoiceStatusVoid
	case InvoiceStatusPaid, InvoiceStatusVoid:
		return false
	}
	return false
}

// FormatInvoiceNumber renders an allocated counter as a display number,
// e.g. INV-2026-000042. The year is cosmetic; uniqueness comes from the
// counter alone.
func FormatInvoiceNumber(at time.Time, counter int64) string {
	return fmt.Sprintf("INV-%d-%06d", at.Year(), counter)
}

// InvoiceLine represents a single catalog-resolved line on an invoice
type InvoiceLine struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	InvoiceID uuid.UUID         `gorm:"type:uuid;not null;index"`
	ItemID    uuid.UUID         `gorm:"type:uuid;not null"`
	ItemName  string            `gorm:"size:255;not null"`
	Quantity  int               `gorm:"not null"`
	UnitPrice valueobject.Money `gorm:"type:numeric(12,2)"`
	LineTotal valueobject.Money `gorm:"type:numeric(12,2)"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// NewInvoiceLine creates a new invoice line. The line total is computed from
// the raw unit price before normalization, then rounded once; the stored unit
// price is normalized separately. 2 × 10.005 therefore totals 20.01, not
// 2 × 10.01.
func NewInvoiceLine(invoiceID, itemID uuid.UUID, itemName string, quantity int, unitPrice decimal.Decimal) (*InvoiceLine, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return nil, shared.ErrInvalidAmount
	}

	return &InvoiceLine{
		ID:        uuid.New(),
		InvoiceID: invoiceID,
		ItemID:    itemID,
		ItemName:  itemName,
		Quantity:  quantity,
		UnitPrice: valueobject.NewMoney(unitPrice),
		LineTotal: valueobject.NewMoney(unitPrice.Mul(decimal.NewFromInt(int64(quantity)))),
		CreatedAt: time.Now(),
	}, nil
}

// Invoice is the aggregate root for a customer invoice. It owns its lines,
// its monetary totals and its status transitions. Balance is always
// max(0, Subtotal - TotalPaid); TotalPaid mirrors the sum of recorded
// payments and is only moved by Reconcile.
type Invoice struct {
	shared.AuditedAggregateRoot
	InvoiceNumber string        `gorm:"size:50;uniqueIndex;not null"`
	CustomerID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	Status        InvoiceStatus `gorm:"size:20;not null;default:DRAFT"`
	IssueDate     *time.Time
	DueDate       *time.Time
	Subtotal      valueobject.Money `gorm:"type:numeric(12,2)"`
	TotalPaid     valueobject.Money `gorm:"type:numeric(12,2)"`
	Balance       valueobject.Money `gorm:"type:numeric(12,2)"`
	Notes         string            `gorm:"size:1000"`
	Lines         []InvoiceLine     `gorm:"foreignKey:InvoiceID"`
	Payments      []Payment         `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new draft invoice with an allocated number
func NewInvoice(invoiceNumber string, customerID uuid.UUID, dueDate *time.Time, notes string) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	return &Invoice{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(),
		InvoiceNumber:        invoiceNumber,
		CustomerID:           customerID,
		Status:               InvoiceStatusDraft,
		DueDate:              dueDate,
		Subtotal:             valueobject.Zero(),
		TotalPaid:            valueobject.Zero(),
		Balance:              valueobject.Zero(),
		Notes:                notes,
		Lines:                make([]InvoiceLine, 0),
	}, nil
}

// ReplaceLines swaps the full set of lines and recalculates totals.
// Lines are replaced wholesale, never patched. Only allowed in DRAFT status.
func (i *Invoice) ReplaceLines(lines []InvoiceLine) error {
	if i.Status != InvoiceStatusDraft {
		return shared.ErrImmutableDocument
	}
	if len(lines) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Invoice must have at least one line")
	}

	for idx := range lines {
		lines[idx].InvoiceID = i.ID
	}
	i.Lines = lines
	i.recalculateTotals()
	i.Touch()

	return nil
}

// UpdateDetails updates the mutable header fields. Only allowed in DRAFT status.
func (i *Invoice) UpdateDetails(customerID uuid.UUID, dueDate *time.Time, notes string) error {
	if i.Status != InvoiceStatusDraft {
		return shared.ErrImmutableDocument
	}
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	i.CustomerID = customerID
	i.DueDate = dueDate
	i.Notes = notes
	i.Touch()

	return nil
}

// Issue transitions the invoice from DRAFT to ISSUED and stamps the issue date
func (i *Invoice) Issue() error {
	if !i.Status.CanTransitionTo(InvoiceStatusIssued) {
		return shared.NewInvalidTransitionError(i.Status.String(), InvoiceStatusIssued.String())
	}
	if len(i.Lines) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Cannot issue an invoice without lines")
	}

	now := time.Now()
	i.Status = InvoiceStatusIssued
	i.IssueDate = &now
	i.Touch()

	return nil
}

// Void cancels the invoice. Allowed from DRAFT, ISSUED and PARTIALLY_PAID;
// recorded payments stay on file but the outstanding balance is forced to zero.
func (i *Invoice) Void() error {
	if !i.Status.CanTransitionTo(InvoiceStatusVoid) {
		return shared.NewInvalidTransitionError(i.Status.String(), InvoiceStatusVoid.String())
	}

	i.Status = InvoiceStatusVoid
	i.Balance = valueobject.Zero()
	i.Touch()

	return nil
}

// CanAcceptPayment reports whether a payment may be recorded against this
// invoice in its current status.
func (i *Invoice) CanAcceptPayment() error {
	switch i.Status {
	case InvoiceStatusVoid:
		return shared.ErrVoidedDocument
	case InvoiceStatusDraft:
		return shared.ErrNotIssued
	case InvoiceStatusPaid:
		return shared.ErrAlreadySettled
	}
	return nil
}

// Reconcile recomputes the paid total and balance from a freshly aggregated
// payment sum and moves the status accordingly: PAID when nothing is
// outstanding, PARTIALLY_PAID while some of the subtotal remains. Overpayment
// clamps the balance at zero rather than going negative.
func (i *Invoice) Reconcile(totalPaid valueobject.Money) error {
	if err := i.CanAcceptPayment(); err != nil {
		return err
	}

	i.TotalPaid = totalPaid
	i.Balance = i.Subtotal.Subtract(totalPaid).ClampNonNegative()

	if i.Balance.IsZero() {
		i.Status = InvoiceStatusPaid
	} else if totalPaid.IsPositive() {
		i.Status = InvoiceStatusPartiallyPaid
	}
	i.Touch()

	return nil
}

// recalculateTotals sums the rounded line totals and rounds the sum again
func (i *Invoice) recalculateTotals() {
	subtotal := valueobject.Zero()
	for _, line := range i.Lines {
		subtotal = subtotal.Add(line.LineTotal)
	}
	i.Subtotal = subtotal
	i.Balance = i.Subtotal.Subtract(i.TotalPaid).ClampNonNegative()
}

// IsDraft returns true if the invoice is in draft status
func (i *Invoice) IsDraft() bool {
	return i.Status == InvoiceStatusDraft
}

// IsVoid returns true if the invoice has been voided
func (i *Invoice) IsVoid() bool {
	return i.Status == InvoiceStatusVoid
}

// IsSettled returns true if the invoice is fully paid
func (i *Invoice) IsSettled() bool {
	return i.Status == InvoiceStatusPaid
}

// CanModify returns true if lines and header fields may still change
func (i *Invoice) CanModify() bool {
	return i.IsDraft()
}
