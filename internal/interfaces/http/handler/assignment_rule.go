package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appaccounting "github.com/farmops/backend/internal/application/accounting"
	"github.com/farmops/backend/internal/domain/accounting"
)

// AssignmentRuleHandler handles the assignment rule endpoints. Rule
// mutations go through the unit of work so priority renumbering and
// the rule write commit together.
type AssignmentRuleHandler struct {
	BaseHandler
	uow     appaccounting.UnitOfWork
	service *appaccounting.AssignmentService
}

// NewAssignmentRuleHandler creates a new AssignmentRuleHandler
func NewAssignmentRuleHandler(uow appaccounting.UnitOfWork, service *appaccounting.AssignmentService) *AssignmentRuleHandler {
	return &AssignmentRuleHandler{uow: uow, service: service}
}

// AssignmentRuleResponse represents an assignment rule in API responses
type AssignmentRuleResponse struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	Priority     int     `json:"priority"`
	Phrase       string  `json:"phrase,omitempty"`
	ContractorID *string `json:"contractor_id,omitempty"`
	FarmID       *string `json:"farm_id,omitempty"`
	Direction    *string `json:"direction,omitempty"`
	AssignUserID *string `json:"assign_user_id,omitempty"`
	AssignModule *string `json:"assign_module,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateRuleRequest represents a new assignment rule
type CreateRuleRequest struct {
	Kind         string  `json:"kind" binding:"required,rule_kind"`
	Priority     int     `json:"priority" binding:"min=0"`
	Phrase       string  `json:"phrase"`
	ContractorID *string `json:"contractor_id" binding:"omitempty,uuid"`
	FarmID       *string `json:"farm_id" binding:"omitempty,uuid"`
	Direction    *string `json:"direction"`
	AssignUserID *string `json:"assign_user_id" binding:"omitempty,uuid"`
	AssignModule *string `json:"assign_module"`
}

// ReorderRuleRequest moves a rule to a new priority slot
type ReorderRuleRequest struct {
	Priority int `json:"priority" binding:"min=0"`
}

// List returns all assignment rules, optionally filtered by kind
func (h *AssignmentRuleHandler) List(c *gin.Context) {
	var kind *accounting.RuleKind
	if raw := c.Query("kind"); raw != "" {
		k := accounting.RuleKind(raw)
		if !k.IsValid() {
			h.BadRequest(c, "Unknown rule kind: "+raw)
			return
		}
		kind = &k
	}

	var rules []accounting.AssignmentRule
	err := h.uow.Run(c.Request.Context(), func(repos *appaccounting.Repositories) error {
		var err error
		rules, err = repos.Rules.FindAll(c.Request.Context(), kind)
		return err
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]AssignmentRuleResponse, 0, len(rules))
	for i := range rules {
		items = append(items, toRuleResponse(&rules[i]))
	}
	h.Success(c, items)
}

// Create adds a new assignment rule
func (h *AssignmentRuleHandler) Create(c *gin.Context) {
	var body CreateRuleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	req, err := body.toApplication()
	if err != nil {
		h.BadRequest(c, "Invalid identifier in payload")
		return
	}

	var rule *accounting.AssignmentRule
	err = h.uow.Run(c.Request.Context(), func(repos *appaccounting.Repositories) error {
		var err error
		rule, err = h.service.CreateRule(c.Request.Context(), repos, req)
		return err
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toRuleResponse(rule))
}

// Reorder moves a rule to a new priority
func (h *AssignmentRuleHandler) Reorder(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	var body ReorderRuleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	err = h.uow.Run(c.Request.Context(), func(repos *appaccounting.Repositories) error {
		return h.service.ReorderRule(c.Request.Context(), repos, ruleID, body.Priority)
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Deactivate turns a rule off without deleting it
func (h *AssignmentRuleHandler) Deactivate(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rule ID")
		return
	}

	err = h.uow.Run(c.Request.Context(), func(repos *appaccounting.Repositories) error {
		return h.service.DeactivateRule(c.Request.Context(), repos, ruleID)
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (r *CreateRuleRequest) toApplication() (appaccounting.CreateRuleRequest, error) {
	req := appaccounting.CreateRuleRequest{
		Kind:     accounting.RuleKind(r.Kind),
		Priority: r.Priority,
		Phrase:   r.Phrase,
	}

	var err error
	if req.ContractorID, err = parseUUIDPtr(r.ContractorID); err != nil {
		return req, err
	}
	if req.FarmID, err = parseUUIDPtr(r.FarmID); err != nil {
		return req, err
	}
	if req.AssignUserID, err = parseUUIDPtr(r.AssignUserID); err != nil {
		return req, err
	}
	if r.Direction != nil {
		dir := accounting.InvoiceDirection(*r.Direction)
		req.Direction = &dir
	}
	if r.AssignModule != nil {
		mod := accounting.ModuleType(*r.AssignModule)
		req.AssignModule = &mod
	}

	return req, nil
}

func toRuleResponse(rule *accounting.AssignmentRule) AssignmentRuleResponse {
	resp := AssignmentRuleResponse{
		ID:           rule.ID.String(),
		Kind:         string(rule.Kind),
		Priority:     rule.Priority,
		Phrase:       rule.Phrase,
		ContractorID: uuidPtrToString(rule.ContractorID),
		FarmID:       uuidPtrToString(rule.FarmID),
		AssignUserID: uuidPtrToString(rule.AssignUserID),
		Active:       rule.Active,
		CreatedAt:    rule.CreatedAt,
		UpdatedAt:    rule.UpdatedAt,
	}
	if rule.Direction != nil {
		dir := string(*rule.Direction)
		resp.Direction = &dir
	}
	if rule.AssignModule != nil {
		mod := string(*rule.AssignModule)
		resp.AssignModule = &mod
	}
	return resp
}
