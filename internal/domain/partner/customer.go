package partner

import (
	"regexp"
	"strings"

	"github.com/opsync/backend/internal/domain/shared"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validateContact(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Name cannot be empty")
	}
	if email != "" && !emailPattern.MatchString(email) {
		return shared.NewDomainError("VALIDATION_ERROR", "Invalid email address")
	}
	return nil
}

// Customer represents a billing counterparty for invoices
type Customer struct {
	shared.AuditedAggregateRoot
	Name    string `gorm:"size:255;not null;index"`
	Email   string `gorm:"size:255"`
	Phone   string `gorm:"size:50"`
	Address string `gorm:"size:500"`
	Notes   string `gorm:"size:1000"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(name, email, phone, address string) (*Customer, error) {
	if err := validateContact(name, email); err != nil {
		return nil, err
	}
	return &Customer{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(),
		Name:                 name,
		Email:                email,
		Phone:                phone,
		Address:              address,
	}, nil
}

// Update changes the customer's contact details
func (c *Customer) Update(name, email, phone, address, notes string) error {
	if err := validateContact(name, email); err != nil {
		return err
	}
	c.Name = name
	c.Email = email
	c.Phone = phone
	c.Address = address
	c.Notes = notes
	c.Touch()
	return nil
}
