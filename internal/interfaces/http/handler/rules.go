package handler

import (
	eligibilityapp "github.com/dropship/backend/internal/application/eligibility"
	"github.com/gin-gonic/gin"
)

// RulesHandler manages compliance rules. Every mutation swaps the rule
// snapshot before answering.
type RulesHandler struct {
	BaseHandler
	service *eligibilityapp.Service
}

// NewRulesHandler creates a new RulesHandler
func NewRulesHandler(service *eligibilityapp.Service) *RulesHandler {
	return &RulesHandler{service: service}
}

// List handles GET /rules
func (h *RulesHandler) List(c *gin.Context) {
	rules, err := h.service.ListRules(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rules)
}

// AddBrand handles POST /rules/brands
func (h *RulesHandler) AddBrand(c *gin.Context) {
	var req eligibilityapp.BrandRuleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rule, err := h.service.AddBrandRule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rule)
}

// RemoveBrand handles DELETE /rules/brands/:id
func (h *RulesHandler) RemoveBrand(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.RemoveBrandRule(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddKeyword handles POST /rules/keywords
func (h *RulesHandler) AddKeyword(c *gin.Context) {
	var req eligibilityapp.KeywordRuleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rule, err := h.service.AddKeywordRule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rule)
}

// RemoveKeyword handles DELETE /rules/keywords/:id
func (h *RulesHandler) RemoveKeyword(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.RemoveKeywordRule(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddRestriction handles POST /rules/restrictions
func (h *RulesHandler) AddRestriction(c *gin.Context) {
	var req eligibilityapp.CountryRestrictionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	restriction, err := h.service.AddCountryRestriction(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, restriction)
}

// SetRestrictionEnabled handles PATCH /rules/restrictions/:id
func (h *RulesHandler) SetRestrictionEnabled(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req eligibilityapp.SetRestrictionEnabledRequest
	if !h.BindJSON(c, &req) {
		return
	}
	restriction, err := h.service.SetCountryRestrictionEnabled(c.Request.Context(), id, *req.Enabled)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, restriction)
}

// RemoveRestriction handles DELETE /rules/restrictions/:id
func (h *RulesHandler) RemoveRestriction(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.RemoveCountryRestriction(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Reload handles POST /rules/reload: rules are re-read from the database
// and other instances are told to do the same
func (h *RulesHandler) Reload(c *gin.Context) {
	info, err := h.service.ReloadRules(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}
