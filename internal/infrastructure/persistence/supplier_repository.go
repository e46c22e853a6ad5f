package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opsync/backend/internal/domain/partner"
	"github.com/opsync/backend/internal/domain/shared"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// FindAll lists suppliers matching the filter
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	var suppliers []partner.Supplier
	query := r.applySearch(r.db.WithContext(ctx).Model(&partner.Supplier{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, SupplierSortFields, "name")
		query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("name ASC")
	}

	if err := query.Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// Count returns the number of suppliers matching the filter
func (r *GormSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&partner.Supplier{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

// Delete removes a supplier
func (r *GormSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&partner.Supplier{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormSupplierRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	return query
}

var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
