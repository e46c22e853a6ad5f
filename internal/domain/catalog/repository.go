package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/opsync/backend/internal/domain/shared"
)

// ItemRepository defines the persistence contract for catalog items
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindBySKU(ctx context.Context, sku string) (*Item, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Item, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}
