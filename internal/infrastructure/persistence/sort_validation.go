package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort direction to ASC or DESC.
// Anything other than "asc" (case-insensitive) falls back to DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks the requested sort field against a whitelist of
// real column names. Unknown or empty fields fall back to defaultField so
// that caller-supplied input never reaches the ORDER BY clause verbatim.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ItemSortFields contains allowed sort fields for catalog items
var ItemSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"sku":        true,
	"unit_price": true,
	"is_service": true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"email":      true,
	"phone":      true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"contact_name": true,
	"email":        true,
	"phone":        true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"customer_id":    true,
	"status":         true,
	"issue_date":     true,
	"due_date":       true,
	"subtotal":       true,
	"total_paid":     true,
	"balance":        true,
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"order_number":  true,
	"supplier_id":   true,
	"status":        true,
	"order_date":    true,
	"received_date": true,
	"subtotal":      true,
	"total":         true,
}
