package accounting

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmops/backend/internal/domain/accounting"
	"github.com/farmops/backend/internal/domain/contractor"
	"github.com/farmops/backend/internal/domain/shared"
)

// AssignmentService evaluates the prioritized rule sets that pre-assign
// a responsible user and a default module to incoming invoices, and
// manages the rules themselves.
type AssignmentService struct {
	parser InvoiceXMLParser
	logger *zap.Logger
}

func NewAssignmentService(parser InvoiceXMLParser, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{parser: parser, logger: logger}
}

// FindAssignedUser evaluates user rules in priority order and returns
// the user of the first matching rule, or nil when nothing matches.
func (s *AssignmentService) FindAssignedUser(ctx context.Context, repos *Repositories, inv *accounting.Invoice) (*uuid.UUID, error) {
	rule, err := s.firstMatch(ctx, repos, inv, accounting.RuleKindUser)
	if err != nil || rule == nil {
		return nil, err
	}
	return rule.AssignUserID, nil
}

// FindModule evaluates module rules in priority order and returns the
// default module of the first matching rule, or nil when nothing
// matches.
func (s *AssignmentService) FindModule(ctx context.Context, repos *Repositories, inv *accounting.Invoice) (*accounting.ModuleType, error) {
	rule, err := s.firstMatch(ctx, repos, inv, accounting.RuleKindModule)
	if err != nil || rule == nil {
		return nil, err
	}
	return rule.AssignModule, nil
}

func (s *AssignmentService) firstMatch(ctx context.Context, repos *Repositories, inv *accounting.Invoice, kind accounting.RuleKind) (*accounting.AssignmentRule, error) {
	rules, err := repos.Rules.FindActiveByKind(ctx, kind)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}

	input := accounting.RuleMatchInput{
		SearchText: accounting.BuildSearchText(inv, s.parser.Parse([]byte(inv.XMLBody))),
		FarmID:     inv.FarmID,
		Direction:  inv.Direction,
	}
	contractorID, err := s.lookupCounterparty(ctx, repos, inv)
	if err != nil {
		return nil, err
	}
	input.ContractorID = contractorID

	for i := range rules {
		if rules[i].Matches(input) {
			s.logger.Debug("assignment rule matched",
				zap.String("invoice_id", inv.ID.String()),
				zap.String("rule_id", rules[i].ID.String()),
				zap.String("kind", string(kind)))
			return &rules[i], nil
		}
	}
	return nil, nil
}

// lookupCounterparty resolves the invoice's counterparty tax id to a
// known contractor across all registries so contractor-scoped rules can
// fire. An unknown counterparty simply leaves the predicate unmatched.
func (s *AssignmentService) lookupCounterparty(ctx context.Context, repos *Repositories, inv *accounting.Invoice) (*uuid.UUID, error) {
	taxID := inv.SellerTaxID
	if inv.Direction == accounting.DirectionSales {
		taxID = inv.BuyerTaxID
	}
	normalized := contractor.NormalizeTaxID(taxID)
	if normalized == "" {
		return nil, nil
	}
	for _, kind := range []contractor.Kind{contractor.KindFeed, contractor.KindGas, contractor.KindExpense} {
		c, err := repos.Contractors.FindByTaxID(ctx, kind, normalized)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if c != nil {
			return &c.ID, nil
		}
	}
	return nil, nil
}

// CreateRule validates and persists a new assignment rule.
func (s *AssignmentService) CreateRule(ctx context.Context, repos *Repositories, req CreateRuleRequest) (*accounting.AssignmentRule, error) {
	rule, err := accounting.NewAssignmentRule(req.Kind, req.Priority)
	if err != nil {
		return nil, err
	}
	rule.Phrase = req.Phrase
	rule.ContractorID = req.ContractorID
	rule.FarmID = req.FarmID
	rule.Direction = req.Direction
	rule.AssignUserID = req.AssignUserID
	rule.AssignModule = req.AssignModule
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := repos.Rules.Save(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// ReorderRule moves an existing rule to a new priority.
func (s *AssignmentService) ReorderRule(ctx context.Context, repos *Repositories, ruleID uuid.UUID, priority int) error {
	rule, err := repos.Rules.FindByID(ctx, ruleID)
	if err != nil {
		return err
	}
	rule.SetPriority(priority)
	return repos.Rules.Save(ctx, rule)
}

// DeactivateRule removes a rule from evaluation without deleting it.
func (s *AssignmentService) DeactivateRule(ctx context.Context, repos *Repositories, ruleID uuid.UUID) error {
	rule, err := repos.Rules.FindByID(ctx, ruleID)
	if err != nil {
		return err
	}
	rule.Deactivate()
	return repos.Rules.Save(ctx, rule)
}
