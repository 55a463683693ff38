// Package cache provides single-use, time-bounded storage for the CSRF state
// tokens that protect the authorization-code callback.
package cache

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// DefaultStateTTL bounds how long an issued state token stays redeemable.
const DefaultStateTTL = 10 * time.Minute

const stateTokenBytes = 32

// StateStore issues and consumes CSRF state tokens. A token is redeemable at
// most once and only within its TTL; concurrent Consume calls for the same
// token yield at most one success.
type StateStore interface {
	// Issue generates, records and returns a fresh state token.
	Issue(ctx context.Context) (string, error)

	// Consume atomically removes the token and reports whether it was
	// present and unexpired. An absent, expired or already-consumed token
	// all report false; the caller cannot and should not tell them apart.
	Consume(ctx context.Context, token string) (bool, error)

	// Close releases any background resources held by the store.
	Close() error
}

// NewStateToken returns an unguessable, URL-safe state token.
func NewStateToken() (string, error) {
	b := make([]byte, stateTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating state token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
