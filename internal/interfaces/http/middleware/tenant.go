package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/invoicehub/backend/internal/interfaces/http/dto"
)

// TenantIDKey is the gin context key for the resolved tenant identifier
const TenantIDKey = "tenant_id"

// TenantHeader is the header carrying the tenant identifier
const TenantHeader = "X-Tenant-ID"

const maxBodySniffBytes = 1 << 20

// TenantExtraction pulls the tenant identifier from the request. Precedence:
// header, query parameter, body field, path parameter. The identifier is only
// extracted here; resolution against the directory happens in the service.
func TenantExtraction() gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := c.GetHeader(TenantHeader)
		if identifier == "" {
			identifier = c.Query("tenant")
		}
		if identifier == "" {
			identifier = tenantFromBody(c)
		}
		if identifier == "" {
			identifier = c.Param("tenantId")
		}

		if identifier == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "Tenant identifier is required", GetRequestID(c)))
			return
		}

		c.Set(TenantIDKey, identifier)
		c.Next()
	}
}

// GetTenantID returns the tenant identifier extracted by TenantExtraction
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}

// tenantFromBody peeks at a JSON body for a tenantId field, then restores the
// body so handlers can bind it normally.
func tenantFromBody(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	contentType := c.GetHeader("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySniffBytes))
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var probe struct {
		TenantID string `json:"tenantId"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	return probe.TenantID
}
