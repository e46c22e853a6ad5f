package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/opsync/backend/internal/domain/sales"
	"github.com/opsync/backend/internal/domain/shared"
	"github.com/opsync/backend/internal/domain/shared/valueobject"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID with lines and payments loaded
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Invoice, error) {
	var invoice sales.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by its display number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*sales.Invoice, error) {
	var invoice sales.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Payments").
		Where("invoice_number = ?", number).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAll lists invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Invoice, error) {
	var invoices []sales.Invoice
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sales.Invoice{}).Preload("Lines"),
		filter,
	)
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Count returns the number of invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&sales.Invoice{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts the invoice and its lines atomically
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *sales.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines", "Payments").Create(invoice).Error; err != nil {
			return err
		}
		for i := range invoice.Lines {
			invoice.Lines[i].InvoiceID = invoice.ID
		}
		if len(invoice.Lines) > 0 {
			if err := tx.Create(&invoice.Lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Update saves the header and replaces the lines wholesale, guarded by the
// optimistic lock version. Returns ErrConcurrencyConflict when another writer
// got there first.
func (r *GormInvoiceRepository) Update(ctx context.Context, invoice *sales.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := invoice.Version
		invoice.Version++
		invoice.UpdatedAt = time.Now()

		result := tx.Model(&sales.Invoice{}).
			Where("id = ? AND version = ?", invoice.ID, currentVersion).
			Updates(map[string]interface{}{
				"customer_id": invoice.CustomerID,
				"status":      invoice.Status,
				"issue_date":  invoice.IssueDate,
				"due_date":    invoice.DueDate,
				"subtotal":    invoice.Subtotal,
				"total_paid":  invoice.TotalPaid,
				"balance":     invoice.Balance,
				"notes":       invoice.Notes,
				"version":     invoice.Version,
				"updated_at":  invoice.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		// Replace lines wholesale
		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&sales.InvoiceLine{}).Error; err != nil {
			return err
		}
		for i := range invoice.Lines {
			invoice.Lines[i].InvoiceID = invoice.ID
		}
		if len(invoice.Lines) > 0 {
			if err := tx.Create(&invoice.Lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplyPayment records a payment and reconciles the invoice in a single
// transaction. The invoice row is locked, preconditions are checked against
// the locked state, and the paid total is re-aggregated from all payment rows
// rather than incremented, so retries and concurrent writers converge on the
// same figure.
func (r *GormInvoiceRepository) ApplyPayment(ctx context.Context, invoiceID uuid.UUID, payment *sales.Payment) (*sales.Invoice, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice sales.Invoice
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&invoice, "id = ?", invoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := invoice.CanAcceptPayment(); err != nil {
			return err
		}

		payment.InvoiceID = invoice.ID
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		var totalPaid decimal.Decimal
		if err := tx.Model(&sales.Payment{}).
			Where("invoice_id = ?", invoice.ID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&totalPaid).Error; err != nil {
			return err
		}

		if err := invoice.Reconcile(valueobject.NewMoney(totalPaid)); err != nil {
			return err
		}

		invoice.Version++
		invoice.UpdatedAt = time.Now()
		return tx.Model(&sales.Invoice{}).
			Where("id = ?", invoice.ID).
			Updates(map[string]interface{}{
				"status":     invoice.Status,
				"total_paid": invoice.TotalPaid,
				"balance":    invoice.Balance,
				"version":    invoice.Version,
				"updated_at": invoice.UpdatedAt,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, invoiceID)
}

// CountByCustomer counts invoices referencing a customer
func (r *GormInvoiceRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&sales.Invoice{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByItem counts invoice lines referencing a catalog item
func (r *GormInvoiceRepository) CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&sales.InvoiceLine{}).
		Where("item_id = ?", itemID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	return query
}

func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("invoice_number ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}
	return query
}

var _ sales.InvoiceRepository = (*GormInvoiceRepository)(nil)
