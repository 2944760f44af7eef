package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUnauthorized is returned by TokenValidator for a missing, malformed,
// or expired credential. The upgrade is rejected before any registry entry
// is created; the hub never retries.
var ErrUnauthorized = errors.New("unauthorized")

// TokenValidator is the contract with the external auth service: it resolves
// a bearer token to a user identity or fails with ErrUnauthorized.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (uuid.UUID, error)
}
