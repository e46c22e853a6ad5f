package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/opsync/backend/internal/domain/partner"
	"github.com/opsync/backend/internal/domain/purchasing"
	"github.com/opsync/backend/internal/domain/shared"
)

// OrderService orchestrates the purchase order lifecycle: drafting, approval,
// receipt and cancellation.
type OrderService struct {
	orderRepo    purchasing.PurchaseOrderRepository
	supplierRepo partner.SupplierRepository
	sequences    shared.SequenceAllocator
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo purchasing.PurchaseOrderRepository,
	supplierRepo partner.SupplierRepository,
	sequences shared.SequenceAllocator,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		sequences:    sequences,
	}
}

// Create drafts a new purchase order with a freshly allocated order number
func (s *OrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest, createdBy *uuid.UUID) (*PurchaseOrderResponse, error) {
	if _, err := s.supplierRepo.FindByID(ctx, req.SupplierID); err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewReferenceNotFoundError("supplier", req.SupplierID.String())
		}
		return nil, err
	}

	counter, err := s.sequences.Next(ctx, shared.SequencePurchaseOrderNumber)
	if err != nil {
		return nil, err
	}

	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	order, err := purchasing.NewPurchaseOrder(
		purchasing.FormatOrderNumber(time.Now(), counter),
		req.SupplierID,
		orderDate,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		order.SetCreatedBy(*createdBy)
	}

	lines, err := purchasing.PriceLines(order.ID, toLineInputs(req.Lines))
	if err != nil {
		return nil, err
	}
	if err := order.ReplaceLines(lines); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByNumber retrieves a purchase order by its display number
func (s *OrderService) GetByNumber(ctx context.Context, number string) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves purchase orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter PurchaseOrderListFilter) ([]PurchaseOrderListItemResponse, int64, error) {
	domainFilter := s.buildFilter(filter)

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPurchaseOrderListItemResponses(orders), total, nil
}

// Update replaces the details and lines of a draft purchase order
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	supplierID := order.SupplierID
	if req.SupplierID != nil {
		supplierID = *req.SupplierID
		if _, err := s.supplierRepo.FindByID(ctx, supplierID); err != nil {
			if err == shared.ErrNotFound {
				return nil, shared.NewReferenceNotFoundError("supplier", supplierID.String())
			}
			return nil, err
		}
	}

	orderDate := order.OrderDate
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}
	notes := order.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}

	if err := order.UpdateDetails(supplierID, orderDate, notes); err != nil {
		return nil, err
	}

	if len(req.Lines) > 0 {
		lines, err := purchasing.PriceLines(order.ID, toLineInputs(req.Lines))
		if err != nil {
			return nil, err
		}
		if err := order.ReplaceLines(lines); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Approve transitions a draft order to APPROVED
func (s *OrderService) Approve(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Approve(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Receive marks an approved order as received
func (s *OrderService) Receive(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Receive(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Cancel cancels a draft or approved order; a reason is required
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID, req CancelPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

func (s *OrderService) buildFilter(filter PurchaseOrderListFilter) shared.Filter {
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

	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
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

func toLineInputs(inputs []CreatePurchaseOrderLineInput) []purchasing.LineInput {
	lines := make([]purchasing.LineInput, len(inputs))
	for i, in := range inputs {
		lines[i] = purchasing.LineInput{
			ItemName:  in.ItemName,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
		}
	}
	return lines
}
