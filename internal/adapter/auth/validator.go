// Package auth implements the bearer-token contract against the external
// auth service: tokens are self-contained JWTs, so validation happens
// locally without calling out.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/Fodi999/ai-cook-beckend/internal/domain"
)

// Claims mirrors the access-token payload issued by the auth service.
type Claims struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// JWTValidator validates HS256 access tokens and resolves the subject to a
// user id. Reconnect storms present the same token from several tabs at
// once, so concurrent validations of one token are collapsed with
// singleflight.
type JWTValidator struct {
	secret []byte
	clock  clockwork.Clock
	group  singleflight.Group
}

// NewJWTValidator creates a validator with the shared signing secret.
func NewJWTValidator(secret string, clock clockwork.Clock) *JWTValidator {
	return &JWTValidator{secret: []byte(secret), clock: clock}
}

// Validate implements domain.TokenValidator. Every failure mode - bad
// signature, wrong algorithm, expiry, malformed subject - maps to
// domain.ErrUnauthorized; the cause is kept for logging only.
func (v *JWTValidator) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	result, err, _ := v.group.Do(token, func() (any, error) {
		return v.parse(token)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return result.(uuid.UUID), nil
}

func (v *JWTValidator) parse(token string) (uuid.UUID, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid subject: %w", domain.ErrUnauthorized, err)
	}
	return userID, nil
}

var _ domain.TokenValidator = (*JWTValidator)(nil)
