package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opsync/backend/internal/domain/sales"
	"github.com/opsync/backend/internal/domain/shared"
)

// GormPaymentRepository implements PaymentRepository using GORM. Payments are
// read-only here; writes go through InvoiceRepository.ApplyPayment.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByInvoice lists payments for an invoice, oldest first
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]sales.Payment, error) {
	var payments []sales.Payment
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("paid_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByID loads a single payment
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Payment, error) {
	var payment sales.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

var _ sales.PaymentRepository = (*GormPaymentRepository)(nil)
