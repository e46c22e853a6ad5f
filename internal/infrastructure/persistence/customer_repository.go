package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opsync/backend/internal/domain/partner"
	"github.com/opsync/backend/internal/domain/shared"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindAll lists customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	var customers []partner.Customer
	query := r.applySearch(r.db.WithContext(ctx).Model(&partner.Customer{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, CustomerSortFields, "name")
		query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("name ASC")
	}

	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// Count returns the number of customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&partner.Customer{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// Delete removes a customer
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&partner.Customer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCustomerRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	return query
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
