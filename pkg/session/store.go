// Package session defines the token store used to authenticate requests.
//
// Tokens are issued by an external authentication service, which writes
// auth_<token> -> userId with an expiry. This service only reads those
// keys; Set and Del exist because the contract includes them (tests and
// bootstrap tooling seed tokens through the same interface).
package session

import (
	"context"
	"time"
)

// AuthKeyPrefix is prepended to tokens to build the session key.
const AuthKeyPrefix = "auth_"

// Store is a key-value view over session state.
//
// Get returns ("", nil) for a missing or expired key: absence is an
// expected outcome, not an error. Errors are reserved for infrastructure
// failures.
type Store interface {
	// Get returns the value stored under key, or "" if absent or expired.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key with the given time to live.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes key. Removing an absent key is not an error.
	Del(ctx context.Context, key string) error

	// IsAlive reports whether the backing store is reachable.
	IsAlive(ctx context.Context) bool
}

// AuthKey builds the session key for a token.
func AuthKey(token string) string {
	return AuthKeyPrefix + token
}
