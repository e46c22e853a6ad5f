package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/opsync/backend/internal/domain/shared"
)

// Item represents a sellable catalog entry: a physical good or a service.
// Invoice lines resolve their default unit price from here. The price is
// kept as a raw decimal with sub-cent precision; rounding to cents happens
// once, when a line total is computed.
type Item struct {
	shared.AuditedAggregateRoot
	Name        string          `gorm:"size:255;not null"`
	SKU         string          `gorm:"size:100;uniqueIndex"`
	Description string          `gorm:"size:1000"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,4)"`
	IsService   bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new catalog item
func NewItem(name, sku, description string, unitPrice decimal.Decimal, isService bool) (*Item, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Item name cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.ErrInvalidAmount
	}

	return &Item{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(),
		Name:                 name,
		SKU:                  strings.ToUpper(strings.TrimSpace(sku)),
		Description:          description,
		UnitPrice:            unitPrice,
		IsService:            isService,
	}, nil
}

// Update changes the item's mutable fields
func (i *Item) Update(name, sku, description string, unitPrice decimal.Decimal, isService bool) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Item name cannot be empty")
	}
	if unitPrice.IsNegative() {
		return shared.ErrInvalidAmount
	}

	i.Name = name
	i.SKU = strings.ToUpper(strings.TrimSpace(sku))
	i.Description = description
	i.UnitPrice = unitPrice
	i.IsService = isService
	i.Touch()

	return nil
}
