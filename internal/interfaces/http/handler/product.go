package handler

import (
	eligibilityapp "github.com/dropship/backend/internal/application/eligibility"
	"github.com/gin-gonic/gin"
)

// ProductHandler manages the stored product catalog
type ProductHandler struct {
	BaseHandler
	service *eligibilityapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(service *eligibilityapp.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// Import handles POST /products. A new supplier id answers 201, a known
// one updates the stored product and answers 200.
func (h *ProductHandler) Import(c *gin.Context) {
	var req eligibilityapp.ImportProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, created, err := h.service.Import(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if created {
		h.Created(c, product)
		return
	}
	h.Success(c, product)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var q eligibilityapp.ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.HandleError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	product, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UpdateStock handles PATCH /products/:id/stock
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req eligibilityapp.UpdateStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.service.UpdateStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Remove handles DELETE /products/:id. Products are marked removed, never
// deleted.
func (h *ProductHandler) Remove(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.MarkRemoved(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
