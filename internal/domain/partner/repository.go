package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/opsync/backend/internal/domain/shared"
)

// CustomerRepository defines the persistence contract for customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SupplierRepository defines the persistence contract for suppliers
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, supplier *Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
}
