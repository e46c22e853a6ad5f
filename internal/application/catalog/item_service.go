package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/opsync/backend/internal/domain/catalog"
	"github.com/opsync/backend/internal/domain/sales"
	"github.com/opsync/backend/internal/domain/shared"
)

// ItemService manages the catalog of sellable items and services
type ItemService struct {
	itemRepo    catalog.ItemRepository
	invoiceRepo sales.InvoiceRepository
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo catalog.ItemRepository, invoiceRepo sales.InvoiceRepository) *ItemService {
	return &ItemService{
		itemRepo:    itemRepo,
		invoiceRepo: invoiceRepo,
	}
}

// Create creates a new catalog item. SKUs are unique when present.
func (s *ItemService) Create(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	if req.SKU != "" {
		if _, err := s.itemRepo.FindBySKU(ctx, req.SKU); err == nil {
			return nil, shared.NewConflictError("An item with this SKU already exists")
		} else if err != shared.ErrNotFound {
			return nil, err
		}
	}

	item, err := catalog.NewItem(req.Name, req.SKU, req.Description, req.UnitPrice, req.IsService)
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// GetByID retrieves an item by ID
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// List retrieves items with filtering and pagination
func (s *ItemService) List(ctx context.Context, filter ItemListFilter) ([]ItemResponse, int64, error) {
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

	items, err := s.itemRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.itemRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToItemResponses(items), total, nil
}

// Update updates an item. Price changes never touch lines already priced.
func (s *ItemService) Update(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SKU != "" && req.SKU != item.SKU {
		if existing, err := s.itemRepo.FindBySKU(ctx, req.SKU); err == nil && existing.ID != id {
			return nil, shared.NewConflictError("An item with this SKU already exists")
		} else if err != nil && err != shared.ErrNotFound {
			return nil, err
		}
	}

	if err := item.Update(req.Name, req.SKU, req.Description, req.UnitPrice, req.IsService); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// Delete removes an item unless invoice lines still reference it
func (s *ItemService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.itemRepo.FindByID(ctx, id); err != nil {
		return err
	}

	references, err := s.invoiceRepo.CountByItem(ctx, id)
	if err != nil {
		return err
	}
	if references > 0 {
		return shared.NewConflictError("Item is referenced by invoices and cannot be deleted")
	}

	return s.itemRepo.Delete(ctx, id)
}
