// Package memory provides a process-local db.Database kept in an ordered B-tree.
// Nothing survives Close; it exists for tests and throwaway catalogs.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/dfryer1193/keta/shared/db"
	"github.com/tidwall/btree"
)

var _ db.Database = (*MemoryDB)(nil)

type MemoryDB struct {
	mu      sync.RWMutex
	entries *btree.Map[string, []byte]
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{}
}

func (m *MemoryDB) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries != nil {
		return db.ErrAlreadyConnected
	}
	m.entries = btree.NewMap[string, []byte](0)
	return nil
}

func (m *MemoryDB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	return nil
}

func (m *MemoryDB) Get(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.entries == nil {
		return nil, db.ErrNotConnected
	}

	value, ok := m.entries.Get(string(key))
	if !ok {
		return nil, nil
	}
	return clone(value), nil
}

func (m *MemoryDB) Put(ctx context.Context, key, value []byte) error {
	if len(key) == 0 {
		return db.ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries == nil {
		return db.ErrNotConnected
	}
	m.entries.Set(string(key), clone(value))
	return nil
}

func (m *MemoryDB) ForEach(ctx context.Context, fn func(key, value []byte) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.entries == nil {
		return db.ErrNotConnected
	}

	var fnErr error
	m.entries.Scan(func(key string, value []byte) bool {
		if err := ctx.Err(); err != nil {
			fnErr = err
			return false
		}
		fnErr = fn([]byte(key), clone(value))
		return fnErr == nil
	})

	if errors.Is(fnErr, db.ErrStopIteration) {
		return nil
	}
	return fnErr
}

func clone(value []byte) []byte {
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
