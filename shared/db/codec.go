package db

import (
	json "github.com/goccy/go-json"
)

// Codec converts values of type T to and from their stored byte form.
// Decode(Encode(v)) must reproduce a value equal to v.
type Codec[T any] interface {
	Encode(value T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// JSONCodec stores values as JSON documents.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(value T) ([]byte, error) {
	return json.Marshal(value)
}

func (JSONCodec[T]) Decode(data []byte) (T, error) {
	var value T
	err := json.Unmarshal(data, &value)
	return value, err
}
