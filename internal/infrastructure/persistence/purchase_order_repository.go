package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opsync/backend/internal/domain/purchasing"
	"github.com/opsync/backend/internal/domain/shared"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by its ID with lines loaded
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	var order purchasing.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber finds a purchase order by its display number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, number string) (*purchasing.PurchaseOrder, error) {
	var order purchasing.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("order_number = ?", number).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll lists purchase orders matching the filter
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchasing.PurchaseOrder, error) {
	var orders []purchasing.PurchaseOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&purchasing.PurchaseOrder{}).Preload("Lines"),
		filter,
	)
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count returns the number of purchase orders matching the filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&purchasing.PurchaseOrder{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts the purchase order and its lines atomically
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *purchasing.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Create(order).Error; err != nil {
			return err
		}
		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
		}
		if len(order.Lines) > 0 {
			if err := tx.Create(&order.Lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Update saves the header and replaces the lines wholesale, guarded by the
// optimistic lock version
func (r *GormPurchaseOrderRepository) Update(ctx context.Context, order *purchasing.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := order.Version
		order.Version++
		order.UpdatedAt = time.Now()

		result := tx.Model(&purchasing.PurchaseOrder{}).
			Where("id = ? AND version = ?", order.ID, currentVersion).
			Updates(map[string]interface{}{
				"supplier_id":   order.SupplierID,
				"status":        order.Status,
				"order_date":    order.OrderDate,
				"received_date": order.ReceivedDate,
				"subtotal":      order.Subtotal,
				"total":         order.Total,
				"notes":         order.Notes,
				"cancel_reason": order.CancelReason,
				"version":       order.Version,
				"updated_at":    order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		if err := tx.Where("order_id = ?", order.ID).
			Delete(&purchasing.PurchaseOrderLine{}).Error; err != nil {
			return err
		}
		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
		}
		if len(order.Lines) > 0 {
			if err := tx.Create(&order.Lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountBySupplier counts purchase orders referencing a supplier
func (r *GormPurchaseOrderRepository) CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&purchasing.PurchaseOrder{}).
		Where("supplier_id = ?", supplierID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, PurchaseOrderSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	return query
}

func (r *GormPurchaseOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("order_number ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("order_date <= ?", t)
			}
		}
	}
	return query
}

var _ purchasing.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
