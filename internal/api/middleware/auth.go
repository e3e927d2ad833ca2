package middleware

import (
	"context"
	"strings"

	"tours-backend/internal/apperror"
	"tours-backend/internal/models"
	"tours-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// principalKey is the gin context key the resolved identity is stored
// under.
const principalKey = "principal"

// Authenticator resolves a session token to a principal. Implemented by
// services.AuthService.
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (models.Principal, error)
}

// Auth resolves the session token into a principal and attaches it to the
// request context. The token is read from the "jwt" cookie first, then
// from the Authorization header.
func Auth(authService Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			utils.ErrorFrom(c, apperror.New(apperror.NotAuthenticated, "You are not logged in, please log in to get access"))
			c.Abort()
			return
		}

		principal, err := authService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			utils.ErrorFrom(c, err)
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRole allows the request through only when the authenticated
// principal holds one of the given roles. It must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			utils.ErrorFrom(c, apperror.New(apperror.NotAuthenticated, "You are not logged in, please log in to get access"))
			c.Abort()
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		utils.ErrorFrom(c, apperror.New(apperror.Forbidden, "You do not have permission to perform this action"))
		c.Abort()
	}
}

// PrincipalFrom returns the identity attached by Auth.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, false
	}
	principal, ok := value.(models.Principal)
	return principal, ok
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie("jwt"); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}
