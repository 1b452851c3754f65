package db

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreIO reports a device, open, read or write failure in the underlying database.
	ErrStoreIO = errors.New("store i/o error")
	// ErrEncoding reports a value that could not be serialized for storage.
	ErrEncoding = errors.New("encoding error")
	// ErrDecoding reports stored bytes that do not decode into the expected shape.
	ErrDecoding = errors.New("decoding error")

	ErrEmptyKey         = errors.New("key cannot be empty")
	ErrNotConnected     = fmt.Errorf("%w: database not connected", ErrStoreIO)
	ErrAlreadyConnected = errors.New("database already connected")

	// ErrStopIteration is returned by a ForEach callback to end the walk early.
	ErrStopIteration = errors.New("stop iteration")
)

// IOError wraps err as an ErrStoreIO failure for the described operation.
func IOError(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrStoreIO, op, err)
}
