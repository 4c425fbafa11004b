package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole is built once per protected route group with the role set
// that group demands. An empty set means any authenticated caller.
func (m *AuthMiddleware) RequireRole(required ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(required))

	for _, role := range required {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		if len(allowed) > 0 {
			if _, ok := allowed[role]; !ok {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": gin.H{
						"code":    "forbidden",
						"message": "Insufficient role",
					},
				})
				return
			}
		}
		c.Next()
	}
}
