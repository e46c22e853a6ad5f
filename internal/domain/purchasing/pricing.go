package purchasing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opsync/backend/internal/domain/shared"
)

// LineInput is the caller-supplied shape of one purchase order line.
// Purchase orders are free text; nothing is resolved against the catalog.
type LineInput struct {
	ItemName  string
	Quantity  int
	UnitPrice decimal.Decimal
}

// PriceLines builds priced purchase order lines from free-text inputs.
// Each line total is rounded on its own; the aggregate rounds the sum again.
func PriceLines(orderID uuid.UUID, inputs []LineInput) ([]PurchaseOrderLine, error) {
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "At least one line is required")
	}

	lines := make([]PurchaseOrderLine, 0, len(inputs))
	for _, in := range inputs {
		line, err := NewPurchaseOrderLine(orderID, in.ItemName, in.Quantity, in.UnitPrice)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, nil
}
