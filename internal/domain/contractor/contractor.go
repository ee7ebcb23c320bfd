package contractor

import (
	"strings"

	"github.com/farmops/backend/internal/domain/shared"
)

// Kind scopes a contractor to one of the three counterparty registries
type Kind string

const (
	KindFeed    Kind = "FEED"
	KindExpense Kind = "EXPENSE"
	KindGas     Kind = "GAS"
)

// IsValid checks if the kind is a valid contractor Kind
func (k Kind) IsValid() bool {
	switch k {
	case KindFeed, KindExpense, KindGas:
		return true
	}
	return false
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// DefaultName is used when a contractor is created without a usable name
const DefaultName = "Unknown contractor"

// Contractor is a counterparty record, identified primarily by normalized
// tax id and secondarily by case-insensitive name.
type Contractor struct {
	shared.BaseAggregateRoot
	Kind    Kind
	Name    string
	TaxID   string
	Address string
	// ExpenseTypes is the permitted expense-type tag set for expense
	// contractors. It only ever grows.
	ExpenseTypes []string
}

// NormalizeTaxID strips the country prefix, dashes and whitespace from a tax
// identifier. Returns "" when nothing identifying remains.
func NormalizeTaxID(taxID string) string {
	s := strings.TrimSpace(taxID)
	if s == "" {
		return ""
	}
	// Country prefix like "PL" or "DE" ahead of the digits.
	if len(s) >= 2 && isLetter(s[0]) && isLetter(s[1]) {
		s = s[2:]
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '-', ' ', '\t':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// NewContractor creates a contractor with a normalized tax id. An empty name
// falls back to the default placeholder.
func NewContractor(kind Kind, name, taxID, address string) (*Contractor, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONTRACTOR_KIND", "Unknown contractor kind")
	}
	if name == "" {
		name = DefaultName
	}
	return &Contractor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		Name:              name,
		TaxID:             NormalizeTaxID(taxID),
		Address:           address,
	}, nil
}

// HasExpenseType reports whether the tag is already permitted
func (c *Contractor) HasExpenseType(tag string) bool {
	for _, t := range c.ExpenseTypes {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// AddExpenseType appends a permitted expense-type tag. The set only grows;
// existing tags are never removed or replaced. Returns true when the set changed.
func (c *Contractor) AddExpenseType(tag string) bool {
	if tag == "" || c.Kind != KindExpense {
		return false
	}
	if c.HasExpenseType(tag) {
		return false
	}
	c.ExpenseTypes = append(c.ExpenseTypes, tag)
	c.IncrementVersion()
	return true
}

// NameMatches compares names case-insensitively
func (c *Contractor) NameMatches(name string) bool {
	return name != "" && strings.EqualFold(c.Name, name)
}
