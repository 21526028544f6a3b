// Package metadata is the local key-value store: string keys mapped to opaque
// byte values, kept in the `metadata` table of the client SQLite database.
//
// It plays the role browser storage plays for a web client. Higher layers
// decide the encoding of values (JSON documents, decimal counters).
package metadata

import (
	"context"
)

// Repository describes key-value operations.
type Repository interface {
	// Get returns the value stored under key, or (nil, nil) when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set inserts or replaces the value under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
