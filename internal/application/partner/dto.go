package partner

import (
	"time"

	"github.com/google/uuid"

	"github.com/opsync/backend/internal/domain/partner"
)

// ==================== Customer DTOs ====================

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=255"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address" binding:"max=500"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=255"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address" binding:"max=500"`
	Notes   string `json:"notes" binding:"max=1000"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ==================== Supplier DTOs ====================

// CreateSupplierRequest represents a request to create a supplier
type CreateSupplierRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	ContactName string `json:"contact_name" binding:"max=255"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone" binding:"max=50"`
	Address     string `json:"address" binding:"max=500"`
}

// UpdateSupplierRequest represents a request to update a supplier
type UpdateSupplierRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	ContactName string `json:"contact_name" binding:"max=255"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone" binding:"max=50"`
	Address     string `json:"address" binding:"max=500"`
	Notes       string `json:"notes" binding:"max=1000"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContactName string    `json:"contact_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PartnerListFilter represents filter options shared by customer and
// supplier lists
type PartnerListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToCustomerResponse converts a customer to its API representation
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCustomerResponses converts customers to their API representation
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}

// ToSupplierResponse converts a supplier to its API representation
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:          s.ID,
		Name:        s.Name,
		ContactName: s.ContactName,
		Email:       s.Email,
		Phone:       s.Phone,
		Address:     s.Address,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ToSupplierResponses converts suppliers to their API representation
func ToSupplierResponses(suppliers []partner.Supplier) []SupplierResponse {
	responses := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		responses[i] = ToSupplierResponse(&suppliers[i])
	}
	return responses
}
