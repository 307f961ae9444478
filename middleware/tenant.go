package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TenantHeader carries the workspace a request operates in. Tenant
// provisioning and authentication live outside this service; this middleware
// only enforces that every API call names its isolation boundary.
const TenantHeader = "X-Workspace-ID"

// CtxTenantID is the gin context key the tenant is stored under.
const CtxTenantID = "tenantID"

// TenantMiddleware requires the workspace header on every request.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader(TenantHeader)
		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + TenantHeader + " header"})
			return
		}
		c.Set(CtxTenantID, tenantID)
		c.Next()
	}
}

// TenantID reads the workspace set by TenantMiddleware.
func TenantID(c *gin.Context) string {
	return c.GetString(CtxTenantID)
}
