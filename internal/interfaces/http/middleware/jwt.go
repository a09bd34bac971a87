package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/invoicehub/backend/internal/infrastructure/auth"
	"github.com/invoicehub/backend/internal/interfaces/http/dto"
)

// AdminUserKey is the gin context key for the authenticated admin's id
const AdminUserKey = "admin_user_id"

// AdminEmailKey is the gin context key for the authenticated admin's email
const AdminEmailKey = "admin_email"

// AdminAuth guards the provisioning surface with admin bearer tokens
func AdminAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "Authorization header must be a bearer token")
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, "Token has expired")
				return
			}
			abortUnauthorized(c, "Invalid token")
			return
		}

		c.Set(AdminUserKey, claims.UserID)
		c.Set(AdminEmailKey, claims.Email)
		c.Next()
	}
}

// GetAdminUserID returns the authenticated admin's id
func GetAdminUserID(c *gin.Context) string {
	return c.GetString(AdminUserKey)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID("UNAUTHORIZED", message, GetRequestID(c)))
}
