package sales

import (
	"context"

	"github.com/google/uuid"

	"github.com/opsync/backend/internal/domain/shared"
)

// InvoiceRepository defines the persistence contract for invoices.
// Create, Update and ApplyPayment are transactional: either everything they
// touch lands or nothing does.
type InvoiceRepository interface {
	// FindByID loads an invoice with its lines and payments
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByNumber loads an invoice by its display number
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	// FindAll lists invoices matching the filter, lines preloaded
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)
	// Count returns the number of invoices matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Create inserts the invoice and its lines atomically
	Create(ctx context.Context, invoice *Invoice) error
	// Update saves the header and replaces the lines wholesale, guarded by
	// the optimistic lock version
	Update(ctx context.Context, invoice *Invoice) error
	// ApplyPayment records a payment and reconciles the invoice in one
	// transaction: row-lock the invoice, check preconditions, insert the
	// payment, re-aggregate the paid total from all rows, save. Returns the
	// reconciled invoice.
	ApplyPayment(ctx context.Context, invoiceID uuid.UUID, payment *Payment) (*Invoice, error)
	// CountByCustomer counts invoices referencing a customer, used by the
	// customer delete guard
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	// CountByItem counts invoice lines referencing a catalog item, used by
	// the item delete guard
	CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error)
}

// PaymentRepository defines read access to recorded payments.
// Payments are written only through InvoiceRepository.ApplyPayment.
type PaymentRepository interface {
	// FindByInvoice lists payments for an invoice, oldest first
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
	// FindByID loads a single payment
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
}
