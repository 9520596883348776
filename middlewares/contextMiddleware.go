package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bitbucket.org/mmdatafocus/consign_backend/utils"
)

// ContextMiddleware lifts the identity headers set by the external auth layer
// into the request context. X-Organization-Id scopes every query downstream;
// x-correlation-id threads through logs and outbox rows.
func ContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if organizationId := c.GetHeader("X-Organization-Id"); organizationId != "" {
			ctx = utils.SetOrganizationIdInContext(ctx, organizationId)
		}
		if username := c.GetHeader("X-Username"); username != "" {
			ctx = utils.SetUsernameInContext(ctx, username)
		}

		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		ctx = utils.SetCorrelationIdInContext(ctx, cid)
		c.Header("x-correlation-id", cid)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireOrganization rejects requests that reached an app route without a
// tenant header.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		if organizationId, ok := utils.GetOrganizationIdFromContext(c.Request.Context()); !ok || organizationId == "" {
			c.AbortWithStatusJSON(400, gin.H{
				"success": false,
				"message": "X-Organization-Id header is required",
				"data":    nil,
			})
			return
		}
		c.Next()
	}
}
