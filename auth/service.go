package auth

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService issues and validates IPC tokens.
type TokenService struct {
	cfg Config
	now func() time.Time
}

// NewTokenService creates a token service. The config is defaulted and must
// carry a valid secret even when Enabled is false, since issuing always signs.
func NewTokenService(cfg Config) (*TokenService, error) {
	cfg.ApplyDefaults()
	cfg.Enabled = true
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TokenService{cfg: cfg, now: time.Now}, nil
}

// Issue signs a token for subject, optionally restricted to commands.
func (s *TokenService) Issue(subject string, commands ...string) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.cfg.Issuer,
			Audience:  gojwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  gojwt.NewNumericDate(now),
			NotBefore: gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
		Commands: commands,
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, expiry, issuer and audience.
func (s *TokenService) ValidateToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithIssuer(s.cfg.Issuer),
		gojwt.WithAudience(s.cfg.Audience),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("auth: invalid token")
	}
	return claims, nil
}

func (s *TokenService) keyFunc(token *gojwt.Token) (any, error) {
	if token.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("auth: unexpected signing method: %s", token.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}
