package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	invoiceapp "github.com/invoicehub/backend/internal/application/invoicing"
	"github.com/invoicehub/backend/internal/interfaces/http/middleware"
)

// BuyerHandler serves tenant-scoped buyer registry endpoints
type BuyerHandler struct {
	BaseHandler
	service *invoiceapp.BuyerService
}

// NewBuyerHandler creates a new BuyerHandler
func NewBuyerHandler(service *invoiceapp.BuyerService) *BuyerHandler {
	return &BuyerHandler{service: service}
}

// RegisterRoutes registers buyer routes
func (h *BuyerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	buyers := rg.Group("/buyers")
	buyers.Use(middleware.TenantExtraction())
	{
		buyers.POST("", h.Create)
		buyers.GET("", h.List)
		buyers.GET("/:id", h.Get)
		buyers.PUT("/:id", h.Update)
		buyers.DELETE("/:id", h.Delete)
	}
}

// Create adds a buyer to the tenant's registry
func (h *BuyerHandler) Create(c *gin.Context) {
	var input invoiceapp.BuyerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "businessName is required")
		return
	}

	resp, err := h.service.Create(c.Request.Context(), middleware.GetTenantID(c), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns all buyers for the tenant
func (h *BuyerHandler) List(c *gin.Context) {
	resp, err := h.service.List(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns one buyer
func (h *BuyerHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "invalid buyer id")
		return
	}

	resp, err := h.service.Get(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update changes a buyer's registry fields
func (h *BuyerHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "invalid buyer id")
		return
	}

	var input invoiceapp.BuyerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "businessName is required")
		return
	}

	resp, err := h.service.Update(c.Request.Context(), middleware.GetTenantID(c), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a buyer from the registry
func (h *BuyerHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "invalid buyer id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.GetTenantID(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"deleted": true})
}
