package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/opsync/backend/internal/domain/partner"
	"github.com/opsync/backend/internal/domain/purchasing"
	"github.com/opsync/backend/internal/domain/shared"
)

// SupplierService manages suppliers
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	orderRepo    purchasing.PurchaseOrderRepository
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository, orderRepo purchasing.PurchaseOrderRepository) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		orderRepo:    orderRepo,
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(req.Name, req.ContactName, req.Email, req.Phone, req.Address)
	if err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List retrieves suppliers with filtering and pagination
func (s *SupplierService) List(ctx context.Context, filter PartnerListFilter) ([]SupplierResponse, int64, error) {
	domainFilter := buildPartnerFilter(filter)

	suppliers, err := s.supplierRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.supplierRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSupplierResponses(suppliers), total, nil
}

// Update updates a supplier
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supplier.Update(req.Name, req.ContactName, req.Email, req.Phone, req.Address, req.Notes); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Delete removes a supplier unless purchase orders still reference them
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.supplierRepo.FindByID(ctx, id); err != nil {
		return err
	}

	references, err := s.orderRepo.CountBySupplier(ctx, id)
	if err != nil {
		return err
	}
	if references > 0 {
		return shared.NewConflictError("Supplier has purchase orders and cannot be deleted")
	}

	return s.supplierRepo.Delete(ctx, id)
}
