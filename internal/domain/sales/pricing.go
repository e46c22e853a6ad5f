package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opsync/backend/internal/domain/shared"
)

// LineInput is the caller-supplied shape of one invoice line: a catalog item
// reference, a quantity and an optional price override. Without an override
// the unit price is resolved from the catalog at pricing time.
type LineInput struct {
	ItemID            uuid.UUID
	Quantity          int
	UnitPriceOverride *decimal.Decimal
}

// ItemRef is the slice of a catalog item the pricer needs
type ItemRef struct {
	ID        uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
}

// ItemResolver looks up catalog items for pricing. Implementations return a
// REFERENCE_NOT_FOUND domain error for unknown IDs.
type ItemResolver interface {
	ResolveItem(ctx context.Context, id uuid.UUID) (*ItemRef, error)
}

// PriceLines resolves each input against the catalog and builds priced
// invoice lines. Each line total is rounded on its own; the caller's
// aggregate rounds the sum again.
func PriceLines(ctx context.Context, resolver ItemResolver, invoiceID uuid.UUID, inputs []LineInput) ([]InvoiceLine, error) {
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "At least one line is required")
	}

	lines := make([]InvoiceLine, 0, len(inputs))
	for _, in := range inputs {
		item, err := resolver.ResolveItem(ctx, in.ItemID)
		if err != nil {
			return nil, err
		}
		unitPrice := item.UnitPrice
		if in.UnitPriceOverride != nil {
			unitPrice = *in.UnitPriceOverride
		}
		line, err := NewInvoiceLine(invoiceID, item.ID, item.Name, in.Quantity, unitPrice)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, nil
}
