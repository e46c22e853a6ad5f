package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opsync/backend/internal/domain/shared"
	"github.com/opsync/backend/internal/domain/shared/valueobject"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "CASH"
	PaymentMethodBank        PaymentMethod = "BANK"
	PaymentMethodMobileMoney PaymentMethod = "MOBILE_MONEY"
	PaymentMethodCard        PaymentMethod = "CARD"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBank, PaymentMethodMobileMoney, PaymentMethodCard:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment is an immutable record of money received against an invoice.
// There is no update, delete or refund path; corrections are modeled as
// voiding the invoice and reissuing.
type Payment struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	InvoiceID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Amount    valueobject.Money `gorm:"type:numeric(12,2)"`
	Method    PaymentMethod     `gorm:"size:20;not null"`
	PaidAt    time.Time         `gorm:"not null"`
	Reference string            `gorm:"size:100"`
	CreatedBy *uuid.UUID        `gorm:"type:uuid"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a new payment record. The amount must normalize to a
// strictly positive value; the method must be one of the known channels.
func NewPayment(invoiceID uuid.UUID, amount decimal.Decimal, method PaymentMethod, paidAt time.Time, reference string) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	money, err := valueobject.NewPositiveAmount(amount)
	if err != nil {
		return nil, err
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown payment method: "+method.String())
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	return &Payment{
		ID:        uuid.New(),
		InvoiceID: invoiceID,
		Amount:    money,
		Method:    method,
		PaidAt:    paidAt,
		Reference: reference,
		CreatedAt: time.Now(),
	}, nil
}

// SetCreatedBy records the acting user on the payment
func (p *Payment) SetCreatedBy(userID uuid.UUID) {
	p.CreatedBy = &userID
}
