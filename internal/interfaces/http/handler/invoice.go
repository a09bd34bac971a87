package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	invoiceapp "github.com/invoicehub/backend/internal/application/invoicing"
	"github.com/invoicehub/backend/internal/interfaces/http/middleware"
)

// InvoiceHandler serves the tenant-scoped invoice lifecycle endpoints and the
// public cross-tenant lookup
type InvoiceHandler struct {
	BaseHandler
	service *invoiceapp.Service
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service *invoiceapp.Service) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// RegisterRoutes registers invoice routes. Lifecycle routes require a tenant
// identifier; the public lookup does not.
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	invoices.Use(middleware.TenantExtraction())
	{
		invoices.POST("", h.Create)
		invoices.POST("/draft", h.SaveDraft)
		invoices.POST("/validate", h.SaveAndValidate)
		invoices.POST("/submit", h.Submit)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
	}

	rg.GET("/public/invoices/:number", h.FindByNumber)
}

// Create posts an invoice directly, allocating the next display sequence
func (h *InvoiceHandler) Create(c *gin.Context) {
	var input invoiceapp.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "invalid invoice body")
		return
	}

	resp, err := h.service.Create(c.Request.Context(), middleware.GetTenantID(c), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// SaveDraft upserts a draft invoice
func (h *InvoiceHandler) SaveDraft(c *gin.Context) {
	var input invoiceapp.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "invalid invoice body")
		return
	}

	resp, err := h.service.SaveDraft(c.Request.Context(), middleware.GetTenantID(c), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SaveAndValidate validates the document and upserts it as a draft
func (h *InvoiceHandler) SaveAndValidate(c *gin.Context) {
	var input invoiceapp.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "invalid invoice body")
		return
	}

	resp, err := h.service.SaveAndValidate(c.Request.Context(), middleware.GetTenantID(c), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Submit sends a draft to the tax authority
func (h *InvoiceHandler) Submit(c *gin.Context) {
	var req invoiceapp.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invoiceId is required")
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), middleware.GetTenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns one invoice with its items
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "invalid invoice id")
		return
	}

	resp, err := h.service.Get(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns invoices matching the filter
func (h *InvoiceHandler) List(c *gin.Context) {
	var req invoiceapp.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "invalid list parameters")
		return
	}

	resp, err := h.service.List(c.Request.Context(), middleware.GetTenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Invoices, resp.Total, resp.Page, resp.PageSize)
}

// FindByNumber searches all active tenants for an invoice number. Public
// document-retrieval path; no tenant context.
func (h *InvoiceHandler) FindByNumber(c *gin.Context) {
	resp, err := h.service.FindByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
