package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	tenantapp "github.com/invoicehub/backend/internal/application/tenant"
	"github.com/invoicehub/backend/internal/infrastructure/auth"
	"github.com/invoicehub/backend/internal/interfaces/http/middleware"
)

// TenantHandler serves the administrator-only tenant provisioning surface
type TenantHandler struct {
	BaseHandler
	service *tenantapp.Service
	jwt     *auth.JWTService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(service *tenantapp.Service, jwt *auth.JWTService) *TenantHandler {
	return &TenantHandler{service: service, jwt: jwt}
}

// RegisterRoutes registers tenant admin routes behind admin auth
func (h *TenantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/tenants")
	admin.Use(middleware.AdminAuth(h.jwt))
	{
		admin.POST("", h.Create)
		admin.GET("", h.List)
		admin.GET("/:id", h.Get)
		admin.PATCH("/:id/credentials", h.UpdateCredentials)
		admin.POST("/:id/deactivate", h.Deactivate)
		admin.POST("/:id/reactivate", h.Reactivate)
		admin.POST("/:id/schema-check", h.SchemaCheck)
	}
}

// Create provisions a new tenant with its physical database
func (h *TenantHandler) Create(c *gin.Context) {
	var req tenantapp.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "businessName, ntn and province are required")
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns all active tenants
func (h *TenantHandler) List(c *gin.Context) {
	tenants, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenants)
}

// Get returns one tenant regardless of activation state
func (h *TenantHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid tenant id")
		return
	}

	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateCredentials changes a tenant's authority tokens or environment
func (h *TenantHandler) UpdateCredentials(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid tenant id")
		return
	}

	var req tenantapp.UpdateCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.service.UpdateCredentials(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deactivate soft-deletes a tenant
func (h *TenantHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid tenant id")
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"deactivated": true})
}

// Reactivate makes a deactivated tenant visible again
func (h *TenantHandler) Reactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid tenant id")
		return
	}

	if err := h.service.Reactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"reactivated": true})
}

// SchemaCheck runs the schema reconciler for one tenant
func (h *TenantHandler) SchemaCheck(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid tenant id")
		return
	}

	report, err := h.service.ReconcileOne(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
