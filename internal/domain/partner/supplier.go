package partner

import (
	"github.com/opsync/backend/internal/domain/shared"
)

// Supplier represents a vendor purchase orders are placed with
type Supplier struct {
	shared.AuditedAggregateRoot
	Name        string `gorm:"size:255;not null;index"`
	ContactName string `gorm:"size:100"`
	Email       string `gorm:"size:255"`
	Phone       string `gorm:"size:50"`
	Address     string `gorm:"size:500"`
	Notes       string `gorm:"size:1000"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier
func NewSupplier(name, contactName, email, phone, address string) (*Supplier, error) {
	if err := validateContact(name, email); err != nil {
		return nil, err
	}
	return &Supplier{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(),
		Name:                 name,
		ContactName:          contactName,
		Email:                email,
		Phone:                phone,
		Address:              address,
	}, nil
}

// Update changes the supplier's contact details
func (s *Supplier) Update(name, contactName, email, phone, address, notes string) error {
	if err := validateContact(name, email); err != nil {
		return err
	}
	s.Name = name
	s.ContactName = contactName
	s.Email = email
	s.Phone = phone
	s.Address = address
	s.Notes = notes
	s.Touch()
	return nil
}
