package purchasing

import (
	"context"

	"github.com/google/uuid"

	"github.com/opsync/backend/internal/domain/shared"
)

// PurchaseOrderRepository defines the persistence contract for purchase
// orders. Create and Update are transactional; Update replaces lines
// wholesale under the optimistic lock version.
type PurchaseOrderRepository interface {
	// FindByID loads an order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	// FindByNumber loads an order by its display number
	FindByNumber(ctx context.Context, number string) (*PurchaseOrder, error)
	// FindAll lists orders matching the filter, lines preloaded
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)
	// Count returns the number of orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Create inserts the order and its lines atomically
	Create(ctx context.Context, order *PurchaseOrder) error
	// Update saves the header and replaces the lines wholesale
	Update(ctx context.Context, order *PurchaseOrder) error
	// CountBySupplier counts orders referencing a supplier, used by the
	// supplier delete guard
	CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error)
}
