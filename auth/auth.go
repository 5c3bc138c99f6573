package auth

import (
	"context"
	"slices"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims of an IPC token.
type Claims struct {
	gojwt.RegisteredClaims
	// Commands limits the token to these bridge commands. Empty allows all.
	Commands []string `json:"cmds,omitempty"`
}

// Allows reports whether the token may invoke cmd.
func (c *Claims) Allows(cmd string) bool {
	return len(c.Commands) == 0 || slices.Contains(c.Commands, cmd)
}

// TokenValidator validates a token string and returns its claims.
// Middleware depends on this interface rather than on TokenService.
type TokenValidator interface {
	ValidateToken(token string) (*Claims, error)
}

// TokenValidatorFunc adapts an ordinary function to the TokenValidator interface.
type TokenValidatorFunc func(token string) (*Claims, error)

// ValidateToken implements TokenValidator.
func (f TokenValidatorFunc) ValidateToken(token string) (*Claims, error) {
	return f(token)
}

type claimsKey struct{}

// ContextWithClaims stores validated claims in ctx.
func ContextWithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by ContextWithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}
