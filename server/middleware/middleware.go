package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware wraps an http.Handler. Server-level middleware also sees the
// preflight requests Gin never routes.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares so the first one listed is outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := range middlewares {
			h = middlewares[len(middlewares)-1-i](h)
		}
		return h
	}
}

// GinWrap runs mw as a Gin handler; c.Next is called from inside mw.
func GinWrap(mw Middleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		inner := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})
		mw(inner).ServeHTTP(c.Writer, c.Request)
	}
}
