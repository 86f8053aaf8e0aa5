// server/internal/api/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"gatepass-api-server/internal/auth"

	"github.com/gin-gonic/gin"
)

// Authenticate validates the JWT and puts the user's identity into the
// request context.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := auth.ParseJWT(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("user_service_no", claims.ServiceNo)
		c.Set("user_role", claims.Role)
		c.Set("user_branches", claims.Branches)
		c.Set("user_email", claims.Email)

		c.Next()
	}
}

// Authorize is a middleware factory that checks the user's role against an
// allow-list. Authenticate must run first.
func Authorize(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoleInterface, exists := c.Get("user_role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User role not found in context"})
			return
		}

		userRole, ok := userRoleInterface.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User role has an invalid type"})
			return
		}

		for _, role := range allowedRoles {
			if role == userRole {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
	}
}

// Branches extracts the caller's branch list from the context.
func Branches(c *gin.Context) []string {
	v, ok := c.Get("user_branches")
	if !ok {
		return nil
	}
	branches, _ := v.([]string)
	return branches
}
