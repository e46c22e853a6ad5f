package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/opsync/backend/internal/domain/partner"
	"github.com/opsync/backend/internal/domain/sales"
	"github.com/opsync/backend/internal/domain/shared"
)

// CustomerService manages customers
type CustomerService struct {
	customerRepo partner.CustomerRepository
	invoiceRepo  sales.InvoiceRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, invoiceRepo sales.InvoiceRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(req.Name, req.Email, req.Phone, req.Address)
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, filter PartnerListFilter) ([]CustomerResponse, int64, error) {
	domainFilter := buildPartnerFilter(filter)

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCustomerResponses(customers), total, nil
}

// Update updates a customer
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := customer.Update(req.Name, req.Email, req.Phone, req.Address, req.Notes); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete removes a customer unless invoices still reference them
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.customerRepo.FindByID(ctx, id); err != nil {
		return err
	}

	references, err := s.invoiceRepo.CountByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if references > 0 {
		return shared.NewConflictError("Customer has invoices and cannot be deleted")
	}

	return s.customerRepo.Delete(ctx, id)
}

func buildPartnerFilter(filter PartnerListFilter) shared.Filter {
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
	return domainFilter
}
