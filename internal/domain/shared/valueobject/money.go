package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/opsync/backend/internal/domain/shared"
)

// Money is an immutable monetary amount in the ledger's base currency.
// Every constructor and arithmetic operation normalizes the result to two
// decimal places, rounding half away from zero, so money read back from a
// Money is always representable in the database's numeric(12,2) columns.
type Money struct {
	amount decimal.Decimal
}

// Normalize rounds a raw decimal to two places, half away from zero.
// This is the single rounding rule for every monetary figure in the system.
func Normalize(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// NewMoney creates a Money from a raw decimal, normalizing it
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: Normalize(amount)}
}

// NewMoneyFromString creates a Money from a string representation
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, shared.ErrInvalidAmount
	}
	return NewMoney(d), nil
}

// NewMoneyFromFloat creates a Money from a float64 value
func NewMoneyFromFloat(amount float64) Money {
	return NewMoney(decimal.NewFromFloat(amount))
}

// NewPositiveAmount creates a Money that must remain strictly positive after
// normalization. Used for payment amounts.
func NewPositiveAmount(amount decimal.Decimal) (Money, error) {
	m := NewMoney(amount)
	if !m.IsPositive() {
		return Money{}, shared.ErrInvalidAmount
	}
	return m, nil
}

// Zero returns a zero-value Money
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the normalized decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns the normalized sum of both amounts
func (m Money) Add(other Money) Money {
	return NewMoney(m.amount.Add(other.amount))
}

// Subtract returns the normalized difference
func (m Money) Subtract(other Money) Money {
	return NewMoney(m.amount.Sub(other.amount))
}

// MultiplyByInt returns the amount multiplied by an integer quantity,
// normalized. This is the line-total rule: round(unit price × quantity).
func (m Money) MultiplyByInt(factor int) Money {
	return NewMoney(m.amount.Mul(decimal.NewFromInt(int64(factor))))
}

// ClampNonNegative returns the amount floored at zero. Balances never go
// negative on overpayment.
func (m Money) ClampNonNegative() Money {
	if m.amount.IsNegative() {
		return Zero()
	}
	return m
}

// Equals returns true if both amounts are equal
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// LessThan returns true if this amount is less than the other
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// GreaterThan returns true if this amount is greater than the other
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// String returns the amount with two fixed decimal places
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

// MarshalJSON implements json.Marshaler, emitting a fixed two-place string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.amount.StringFixed(2))
}

// UnmarshalJSON implements json.Unmarshaler. Accepts either a JSON string or
// a bare number; the parsed value is normalized like every other constructor.
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// fall back to a bare JSON number
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("invalid money value: %s", string(data))
		}
		m.amount = Normalize(decimal.NewFromFloat(f))
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid money amount: %w", err)
	}
	m.amount = Normalize(d)
	return nil
}

// Value implements driver.Valuer for database storage
func (m Money) Value() (driver.Value, error) {
	return m.amount.StringFixed(2), nil
}

// Scan implements sql.Scanner for database retrieval
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	case float64:
		m.amount = Normalize(decimal.NewFromFloat(v))
		return nil
	case int64:
		m.amount = decimal.NewFromInt(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}

	d, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = Normalize(d)
	return nil
}
