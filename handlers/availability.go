package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erinpaul2002/careops-backend/middleware"
	"github.com/erinpaul2002/careops-backend/models"
	"github.com/erinpaul2002/careops-backend/services/availability"
	"github.com/erinpaul2002/careops-backend/utils"
)

// AvailabilityHandler exposes rule administration and the slot query.
type AvailabilityHandler struct {
	Svc availability.AvailabilityService
}

func NewAvailabilityHandler(svc availability.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{Svc: svc}
}

type ruleRequest struct {
	ServiceID           string `json:"service_id" binding:"required"`
	Kind                string `json:"kind" binding:"required"`
	Weekday             *int   `json:"weekday"`
	Date                string `json:"date"`
	Start               string `json:"start"` // HH:MM
	End                 string `json:"end"`   // HH:MM
	AllDay              bool   `json:"all_day"`
	BufferMinutes       int    `json:"buffer_minutes"`
	SlotIntervalMinutes int    `json:"slot_interval_minutes"`
}

// buildRule turns the request payload into a validated rule variant.
func buildRule(tenantID string, req ruleRequest) (*models.AvailabilityRule, error) {
	var start, end int
	var err error
	if req.Start != "" {
		if start, err = utils.ParseMinuteOfDay(req.Start); err != nil {
			return nil, err
		}
	}
	if req.End != "" {
		if end, err = utils.ParseMinuteOfDay(req.End); err != nil {
			return nil, err
		}
	}

	var rule *models.AvailabilityRule
	switch models.RuleKind(req.Kind) {
	case models.RuleKindWeekly:
		if req.Weekday == nil {
			return nil, utils.Validationf("weekday is required for weekly rules")
		}
		rule, err = models.NewWeeklyRule(tenantID, req.ServiceID, *req.Weekday, start, end)
	case models.RuleKindDateOverride:
		rule, err = models.NewDateOverrideRule(tenantID, req.ServiceID, req.Date, start, end)
	case models.RuleKindDateBlock:
		rule, err = models.NewDateBlockRule(tenantID, req.ServiceID, req.Date, req.AllDay, start, end)
	default:
		return nil, utils.Validationf("unknown rule kind %q", req.Kind)
	}
	if err != nil {
		return nil, err
	}
	rule.BufferMinutes = req.BufferMinutes
	rule.SlotIntervalMinutes = req.SlotIntervalMinutes
	return rule, nil
}

// AddRuleHandler creates an availability rule.
func (h *AvailabilityHandler) AddRuleHandler(c *gin.Context) {
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	rule, err := buildRule(middleware.TenantID(c), req)
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	if err := h.Svc.AddRule(rule); err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// UpdateRuleHandler replaces an existing rule.
func (h *AvailabilityHandler) UpdateRuleHandler(c *gin.Context) {
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	rule, err := buildRule(middleware.TenantID(c), req)
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	rule.ID = c.Param("id")
	if err := h.Svc.UpdateRule(rule); err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeleteRuleHandler removes a rule.
func (h *AvailabilityHandler) DeleteRuleHandler(c *gin.Context) {
	if err := h.Svc.RemoveRule(middleware.TenantID(c), c.Param("id")); err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListRulesHandler returns all rules of a service.
func (h *AvailabilityHandler) ListRulesHandler(c *gin.Context) {
	rules := h.Svc.ListRules(middleware.TenantID(c), c.Param("id"))
	if rules == nil {
		rules = []models.AvailabilityRule{}
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// GetSlotsHandler returns the open slots of a service on a date.
func (h *AvailabilityHandler) GetSlotsHandler(c *gin.Context) {
	date := c.Query("date")
	zone := c.Query("zone")
	slots, err := h.Svc.ResolveSlots(middleware.TenantID(c), c.Param("id"), date, zone)
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	if slots == nil {
		slots = []models.Slot{}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}
