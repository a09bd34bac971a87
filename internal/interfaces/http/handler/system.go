package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	tenantapp "github.com/invoicehub/backend/internal/application/tenant"
	"github.com/invoicehub/backend/internal/infrastructure/auth"
	"github.com/invoicehub/backend/internal/infrastructure/persistence"
	"github.com/invoicehub/backend/internal/interfaces/http/middleware"
)

// SystemHandler serves health checks and fleet-wide schema operations
type SystemHandler struct {
	BaseHandler
	master  *persistence.Database
	tenants *tenantapp.Service
	jwt     *auth.JWTService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(master *persistence.Database, tenants *tenantapp.Service, jwt *auth.JWTService) *SystemHandler {
	return &SystemHandler{master: master, tenants: tenants, jwt: jwt}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/healthz", h.Health)

	system := rg.Group("/system")
	system.Use(middleware.AdminAuth(h.jwt))
	{
		system.POST("/schema-check", h.SchemaCheck)
	}
}

// Health reports liveness and master database reachability
func (h *SystemHandler) Health(c *gin.Context) {
	if err := h.master.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  "master database unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SchemaCheck runs the schema reconciler across every active tenant and
// returns the per-tenant reports, including partial completions.
func (h *SystemHandler) SchemaCheck(c *gin.Context) {
	reports, err := h.tenants.ReconcileAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reports)
}
