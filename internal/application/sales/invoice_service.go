package sales

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/opsync/backend/internal/domain/catalog"
	"github.com/opsync/backend/internal/domain/partner"
	"github.com/opsync/backend/internal/domain/sales"
	"github.com/opsync/backend/internal/domain/shared"
)

// InvoiceService orchestrates the invoice lifecycle: drafting, issuing,
// voiding and payment reconciliation.
type InvoiceService struct {
	invoiceRepo  sales.InvoiceRepository
	paymentRepo  sales.PaymentRepository
	customerRepo partner.CustomerRepository
	itemResolver sales.ItemResolver
	sequences    shared.SequenceAllocator
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo sales.InvoiceRepository,
	paymentRepo sales.PaymentRepository,
	customerRepo partner.CustomerRepository,
	itemRepo catalog.ItemRepository,
	sequences shared.SequenceAllocator,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		itemResolver: newCatalogItemResolver(itemRepo),
		sequences:    sequences,
	}
}

// Create drafts a new invoice: the customer is checked, every line is priced
// against the catalog, and a fresh invoice number is allocated.
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest, createdBy *uuid.UUID) (*InvoiceResponse, error) {
	if _, err := s.customerRepo.FindByID(ctx, req.CustomerID); err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewReferenceNotFoundError("customer", req.CustomerID.String())
		}
		return nil, err
	}

	counter, err := s.sequences.Next(ctx, shared.SequenceInvoiceNumber)
	if err != nil {
		return nil, err
	}

	invoice, err := sales.NewInvoice(
		sales.FormatInvoiceNumber(time.Now(), counter),
		req.CustomerID,
		req.DueDate,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		invoice.SetCreatedBy(*createdBy)
	}

	lines, err := sales.PriceLines(ctx, s.itemResolver, invoice.ID, toLineInputs(req.Lines))
	if err != nil {
		return nil, err
	}
	if err := invoice.ReplaceLines(lines); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByNumber retrieves an invoice by its display number
func (s *InvoiceService) GetByNumber(ctx context.Context, number string) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceListItemResponse, int64, error) {
	domainFilter := s.buildFilter(filter)

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToInvoiceListItemResponses(invoices), total, nil
}

// Update replaces the details and lines of a draft invoice
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	customerID := invoice.CustomerID
	if req.CustomerID != nil {
		customerID = *req.CustomerID
		if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
			if err == shared.ErrNotFound {
				return nil, shared.NewReferenceNotFoundError("customer", customerID.String())
			}
			return nil, err
		}
	}

	dueDate := invoice.DueDate
	if req.DueDate != nil {
		dueDate = req.DueDate
	}
	notes := invoice.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}

	if err := invoice.UpdateDetails(customerID, dueDate, notes); err != nil {
		return nil, err
	}

	if len(req.Lines) > 0 {
		lines, err := sales.PriceLines(ctx, s.itemResolver, invoice.ID, toLineInputs(req.Lines))
		if err != nil {
			return nil, err
		}
		if err := invoice.ReplaceLines(lines); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Issue transitions a draft invoice to ISSUED, freezing its lines
func (s *InvoiceService) Issue(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := invoice.Issue(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Void voids an invoice. Recorded payments are kept for audit; the balance is
// zeroed.
func (s *InvoiceService) Void(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := invoice.Void(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// RecordPayment records a payment against an invoice and reconciles its
// status atomically
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, req RecordPaymentRequest, recordedBy *uuid.UUID) (*InvoiceResponse, error) {
	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	payment, err := sales.NewPayment(invoiceID, req.Amount, sales.PaymentMethod(req.Method), paidAt, req.Reference)
	if err != nil {
		return nil, err
	}
	if recordedBy != nil {
		payment.SetCreatedBy(*recordedBy)
	}

	invoice, err := s.invoiceRepo.ApplyPayment(ctx, invoiceID, payment)
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// ListPayments returns the payments recorded against an invoice, oldest first
func (s *InvoiceService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.invoiceRepo.FindByID(ctx, invoiceID); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses, nil
}

func (s *InvoiceService) buildFilter(filter InvoiceListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search

	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}
	return domainFilter
}

func toLineInputs(inputs []CreateInvoiceLineInput) []sales.LineInput {
	lines := make([]sales.LineInput, len(inputs))
	for i, in := range inputs {
		lines[i] = sales.LineInput{
			ItemID:            in.ItemID,
			Quantity:          in.Quantity,
			UnitPriceOverride: in.UnitPriceOverride,
		}
	}
	return lines
}

// catalogItemResolver adapts the catalog repository to the pricer's resolver
// contract
type catalogItemResolver struct {
	items catalog.ItemRepository
}

func newCatalogItemResolver(items catalog.ItemRepository) *catalogItemResolver {
	return &catalogItemResolver{items: items}
}

func (r *catalogItemResolver) ResolveItem(ctx context.Context, id uuid.UUID) (*sales.ItemRef, error) {
	item, err := r.items.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewReferenceNotFoundError("item", id.String())
		}
		return nil, err
	}
	return &sales.ItemRef{
		ID:        item.ID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
	}, nil
}
