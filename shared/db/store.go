package db

import (
	"context"
	"errors"
	"fmt"
)

// Store is a typed view over a Database. Keys are the raw bytes of the
// string key and values are whatever the codec produces for T.
//
// A Store is safe to share between goroutines. List does not see a
// consistent snapshot when writers run concurrently with it.
type Store[T any] struct {
	database Database
	codec    Codec[T]
}

// NewStore creates a Store of T values on top of database.
func NewStore[T any](database Database, codec Codec[T]) *Store[T] {
	return &Store[T]{
		database: database,
		codec:    codec,
	}
}

// Set encodes value and writes it under key, overwriting any previous value.
func (s *Store[T]) Set(ctx context.Context, key string, value T) error {
	if key == "" {
		return ErrEmptyKey
	}

	data, err := s.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("%w: failed to encode value for key %q: %w", ErrEncoding, key, err)
	}

	return s.database.Put(ctx, []byte(key), data)
}

// Get returns the value stored under key, or nil if there is none.
func (s *Store[T]) Get(ctx context.Context, key string) (*T, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	data, err := s.database.Get(ctx, []byte(key))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	value, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode value for key %q: %w", ErrDecoding, key, err)
	}

	return &value, nil
}

// List decodes values in the database's key order. A negative limit
// returns every value. One undecodable entry fails the whole call.
func (s *Store[T]) List(ctx context.Context, limit int) ([]T, error) {
	values := make([]T, 0)
	if limit == 0 {
		return values, nil
	}

	err := s.database.ForEach(ctx, func(key, data []byte) error {
		value, err := s.codec.Decode(data)
		if err != nil {
			return fmt.Errorf("%w: failed to decode value for key %q: %w", ErrDecoding, key, err)
		}

		values = append(values, value)
		if limit > 0 && len(values) >= limit {
			return ErrStopIteration
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrStopIteration) {
		return nil, err
	}

	return values, nil
}
