package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opsync/backend/internal/domain/catalog"
	"github.com/opsync/backend/internal/domain/shared"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindBySKU finds an item by SKU
func (r *GormItemRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).
		Where("sku = ?", strings.ToUpper(strings.TrimSpace(sku))).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindAll lists items matching the filter
func (r *GormItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Item, error) {
	var items []catalog.Item
	query := r.db.WithContext(ctx).Model(&catalog.Item{})
	query = r.applySearch(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, ItemSortFields, "name")
		query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("name ASC")
	}

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Count returns the number of items matching the filter
func (r *GormItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&catalog.Item{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes an item
func (r *GormItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Item{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormItemRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR sku ILIKE ?", pattern, pattern)
	}
	return query
}

var _ catalog.ItemRepository = (*GormItemRepository)(nil)
