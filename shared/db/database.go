package db

import (
	"context"
)

// NoLimit makes List walk every entry in the database.
const NoLimit = -1

// Database is an embedded, ordered, byte-level key-value database.
// Implementations must be safe for concurrent use for single-key operations.
type Database interface {
	Connect() error
	Close() error

	// Get returns nil and no error when the key does not exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Put stores value under key, replacing whatever was there before.
	Put(ctx context.Context, key, value []byte) error

	// ForEach visits every entry in ascending key order. Returning
	// ErrStopIteration from fn ends the walk without an error; any other
	// error aborts it and is returned unchanged. fn runs inside the
	// engine's read view and must not write to the database.
	ForEach(ctx context.Context, fn func(key, value []byte) error) error
}
