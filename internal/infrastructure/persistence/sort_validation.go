package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
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

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"number":           true,
	"issue_date":       true,
	"due_date":         true,
	"seller_name":      true,
	"buyer_name":       true,
	"gross_amount":     true,
	"net_amount":       true,
	"status":           true,
	"payment_status":   true,
	"module_type":      true,
	"assigned_user_id": true,
}

// AssignmentRuleSortFields contains allowed sort fields for assignment rules
var AssignmentRuleSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"kind":       true,
	"priority":   true,
	"is_active":  true,
}

// ContractorSortFields contains allowed sort fields for contractors
var ContractorSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"kind":       true,
	"name":       true,
	"tax_id":     true,
}
