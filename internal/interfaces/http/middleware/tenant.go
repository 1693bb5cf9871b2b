package middleware

import (
	"net/http"

	"github.com/fieldserve/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantIDHeader carries the caller's tenant. The upstream gateway
// authenticates the caller and stamps this header; the service trusts it.
const TenantIDHeader = "X-Tenant-ID"

// tenantIDKey is where the parsed tenant ID lives in the gin context
const tenantIDKey = "tenant_id"

// Tenant requires a valid tenant ID header on every request in the group
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TenantIDHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Missing "+TenantIDHeader+" header", GetRequestID(c)))
			return
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Invalid "+TenantIDHeader+" header", GetRequestID(c)))
			return
		}
		c.Set(tenantIDKey, tenantID)
		c.Next()
	}
}

// GetTenantID returns the tenant ID stored by the Tenant middleware
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(tenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	tenantID, ok := v.(uuid.UUID)
	return tenantID, ok
}
