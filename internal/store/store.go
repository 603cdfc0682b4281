// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
)

// Repository defines the interface for the flat per-user key/value namespace
// that backs session persistence. Values are opaque strings; callers own
// serialization. A persisted payload that later fails to parse is treated as
// absent by callers, so no schema versioning happens at this layer.
type Repository interface {
	// Get retrieves a named value for a user. The boolean is false when the
	// key has never been written or was deleted.
	Get(ctx context.Context, userID, key string) (string, bool, error)

	// Set creates or replaces a named value for a user.
	Set(ctx context.Context, userID, key, value string) error

	// Delete removes a named value. Deleting an absent key is not an error.
	Delete(ctx context.Context, userID, key string) error

	// ValuesByKey returns the stored value under key for every user that has
	// one. Used by the background license re-verification worker to sweep
	// persisted keys.
	ValuesByKey(ctx context.Context, key string) (map[string]string, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
