// Package middleware holds the gin middleware shared by every route group.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/sharebnb/apierr"
	"github.com/Skryldev/sharebnb/auth"
)

const userContextKey = "user"

// TokenValidator is satisfied by *auth.TokenManager.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// AuthenticateJWT stores the claims of a valid bearer token on the context.
// Requests without a token, or with an invalid one, continue anonymously.
func AuthenticateJWT(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header != "" {
			token := header
			if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
				token = header[7:]
			}
			if claims, err := v.Validate(strings.TrimSpace(token)); err == nil {
				c.Set(userContextKey, claims)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the claims stored by AuthenticateJWT.
func CurrentUser(c *gin.Context) (*auth.Claims, bool) {
	val, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := val.(*auth.Claims)
	return claims, ok
}

// RequireLoggedIn rejects anonymous requests with 401.
func RequireLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			apierr.Abort(c, apierr.Unauthorized("Unauthorized"))
			return
		}
		c.Next()
	}
}

// RequireCorrectUserOrAdmin lets through admins and the user named by the
// :username path parameter. Anonymous requests get 401, others 403.
func RequireCorrectUserOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			apierr.Abort(c, apierr.Unauthorized("Unauthorized"))
			return
		}
		if !claims.IsAdmin && claims.Username != c.Param("username") {
			apierr.Abort(c, apierr.Forbidden("Forbidden"))
			return
		}
		c.Next()
	}
}
