package handler

import (
	eligibilityapp "github.com/dropship/backend/internal/application/eligibility"
	"github.com/gin-gonic/gin"
)

// EligibilityHandler serves evaluation, profit and compliance endpoints
type EligibilityHandler struct {
	BaseHandler
	service *eligibilityapp.Service
}

// NewEligibilityHandler creates a new EligibilityHandler
func NewEligibilityHandler(service *eligibilityapp.Service) *EligibilityHandler {
	return &EligibilityHandler{service: service}
}

// Evaluate handles POST /eligibility/evaluate
func (h *EligibilityHandler) Evaluate(c *gin.Context) {
	var req eligibilityapp.EvaluateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Evaluate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// EvaluateBatch handles POST /eligibility/evaluate/batch. Items that fail
// carry their own error; the request itself only fails when the batch is
// malformed.
func (h *EligibilityHandler) EvaluateBatch(c *gin.Context) {
	var req eligibilityapp.BatchEvaluateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.EvaluateBatch(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// EvaluateProduct handles POST /products/:id/evaluate
func (h *EligibilityHandler) EvaluateProduct(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req eligibilityapp.OfferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.EvaluateProduct(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CalculateProfit handles POST /profit/calculate
func (h *EligibilityHandler) CalculateProfit(c *gin.Context) {
	var req eligibilityapp.ProfitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.CalculateProfit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SuggestPrice handles POST /profit/suggest-price
func (h *EligibilityHandler) SuggestPrice(c *gin.Context) {
	var req eligibilityapp.SuggestPriceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.SuggestPrice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CheckCompliance handles POST /compliance/check
func (h *EligibilityHandler) CheckCompliance(c *gin.Context) {
	var req eligibilityapp.ComplianceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.CheckCompliance(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
