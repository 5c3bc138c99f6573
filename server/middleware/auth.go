package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/nativefetch/auth"
	"github.com/kbukum/nativefetch/errors"
)

// AuthConfig configures the IPC token middleware.
type AuthConfig struct {
	// Validator checks bearer tokens.
	Validator auth.TokenValidator
	// CommandParam names the route parameter holding the command. Tokens
	// scoped to a command list are checked against it. Empty skips the check.
	CommandParam string
}

// Auth validates the bearer token, rejects commands outside the token's
// scope and stores the claims in the request context.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, errors.Unauthorized("Authorization header required."))
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abort(c, errors.Unauthorized("Invalid authorization header format."))
			return
		}

		claims, err := cfg.Validator.ValidateToken(token)
		if err != nil {
			abort(c, errors.Unauthorized("Invalid token."))
			return
		}
		if cfg.CommandParam != "" {
			cmd := strings.TrimPrefix(c.Param(cfg.CommandParam), "/")
			if !claims.Allows(cmd) {
				abort(c, errors.Forbidden(cmd))
				return
			}
		}

		c.Set("subject", claims.Subject)
		c.Request = c.Request.WithContext(auth.ContextWithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// SubjectKey keys rate limiting by the token subject, falling back to client IP.
func SubjectKey(c *gin.Context) string {
	if claims, ok := auth.ClaimsFromContext(c.Request.Context()); ok && claims.Subject != "" {
		return claims.Subject
	}
	return c.ClientIP()
}

func abort(c *gin.Context, err *errors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}
