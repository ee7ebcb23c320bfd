package accounting

import (
	"strings"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RuleKind distinguishes user-assignment rules from module-assignment rules
type RuleKind string

const (
	RuleKindUser   RuleKind = "USER"
	RuleKindModule RuleKind = "MODULE"
)

// IsValid checks if the kind is valid
func (k RuleKind) IsValid() bool {
	return k == RuleKindUser || k == RuleKindModule
}

// RuleMatchInput carries everything a rule predicate may look at
type RuleMatchInput struct {
	SearchText   string
	ContractorID *uuid.UUID
	FarmID       *uuid.UUID
	Direction    InvoiceDirection
}

// AssignmentRule is one entry of an ordered, externally re-orderable rule set.
// Rules are evaluated in ascending Priority order; the first match wins.
// Priority is an explicit integer rather than array position so that
// reordering does not rewrite every row.
type AssignmentRule struct {
	shared.BaseAggregateRoot
	Kind         RuleKind
	Priority     int
	Phrase       string
	ContractorID *uuid.UUID
	FarmID       *uuid.UUID
	Direction    *InvoiceDirection
	AssignUserID *uuid.UUID
	AssignModule *ModuleType
	Active       bool
}

// NewAssignmentRule creates a rule of the given kind. The action field must
// match the kind: user rules assign a user, module rules assign a module.
func NewAssignmentRule(kind RuleKind, priority int) (*AssignmentRule, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_RULE_KIND", "Unknown rule kind")
	}
	return &AssignmentRule{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		Priority:          priority,
		Active:            true,
	}, nil
}

// Validate checks that the rule carries an action and at least one predicate
func (r *AssignmentRule) Validate() error {
	switch r.Kind {
	case RuleKindUser:
		if r.AssignUserID == nil {
			return shared.NewDomainError("MISSING_ACTION", "User rule must assign a user")
		}
	case RuleKindModule:
		if r.AssignModule == nil {
			return shared.NewDomainError("MISSING_ACTION", "Module rule must assign a module")
		}
		if !r.AssignModule.IsValid() {
			return shared.NewDomainError("INVALID_MODULE", "Module rule assigns an unknown module")
		}
	default:
		return shared.NewDomainError("INVALID_RULE_KIND", "Unknown rule kind")
	}
	if r.Phrase == "" && r.ContractorID == nil && r.FarmID == nil && r.Direction == nil {
		return shared.NewDomainError("EMPTY_PREDICATE", "Rule must match on at least one attribute")
	}
	return nil
}

// Matches reports whether every set predicate of the rule holds for the input.
// Unset predicates are ignored.
func (r *AssignmentRule) Matches(in RuleMatchInput) bool {
	if !r.Active {
		return false
	}
	if r.Phrase != "" && !strings.Contains(in.SearchText, strings.ToLower(r.Phrase)) {
		return false
	}
	if r.ContractorID != nil {
		if in.ContractorID == nil || *in.ContractorID != *r.ContractorID {
			return false
		}
	}
	if r.FarmID != nil {
		if in.FarmID == nil || *in.FarmID != *r.FarmID {
			return false
		}
	}
	if r.Direction != nil && *r.Direction != in.Direction {
		return false
	}
	return true
}

// SetPriority moves the rule within the evaluation order
func (r *AssignmentRule) SetPriority(priority int) {
	r.Priority = priority
	r.IncrementVersion()
}

// Deactivate removes the rule from evaluation without deleting it
func (r *AssignmentRule) Deactivate() {
	r.Active = false
	r.IncrementVersion()
}
