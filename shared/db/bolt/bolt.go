package bolt

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/dfryer1193/keta/shared/db"
	"go.etcd.io/bbolt"
)

const (
	defaultPath    = "/tmp/ketadb"
	defaultBucket  = "images"
	defaultTimeout = time.Second
)

var _ db.Database = (*BoltDB)(nil)

type BoltConfig struct {
	Path string
	// Bucket holds every entry; one bucket per database file.
	Bucket string
	// Timeout bounds how long Connect waits for the file lock.
	Timeout time.Duration
}

// NewBoltConfig reads BOLT_DB_PATH, falling back to /tmp/ketadb.
func NewBoltConfig() *BoltConfig {
	path := os.Getenv("BOLT_DB_PATH")
	if path == "" {
		path = defaultPath
	}

	return &BoltConfig{
		Path:    path,
		Bucket:  defaultBucket,
		Timeout: defaultTimeout,
	}
}

// BoltDB implements db.Database on a single bbolt file.
type BoltDB struct {
	dbPath  string
	bucket  []byte
	timeout time.Duration
	db      *bbolt.DB
}

func NewBoltDB(cfg *BoltConfig) *BoltDB {
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = defaultBucket
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &BoltDB{
		dbPath:  cfg.Path,
		bucket:  []byte(bucket),
		timeout: timeout,
	}
}

// Connect opens (or creates) the database file and its bucket.
func (b *BoltDB) Connect() error {
	if b.db != nil {
		return db.ErrAlreadyConnected
	}

	bdb, err := bbolt.Open(b.dbPath, 0600, &bbolt.Options{Timeout: b.timeout})
	if err != nil {
		return db.IOError("open database "+b.dbPath, err)
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(b.bucket)
		return err
	})
	if err != nil {
		bdb.Close()
		return db.IOError("create bucket "+string(b.bucket), err)
	}

	b.db = bdb
	return nil
}

func (b *BoltDB) Close() error {
	if b.db == nil {
		return nil
	}

	err := b.db.Close()
	b.db = nil
	return err
}

func (b *BoltDB) Get(ctx context.Context, key []byte) ([]byte, error) {
	if b.db == nil {
		return nil, db.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(b.bucket).Get(key)
		if v != nil {
			// v is only valid for the life of the transaction
			value = make([]byte, len(v))
			copy(value, v)
		}
		return nil
	})
	if err != nil {
		return nil, db.IOError("read key", err)
	}

	return value, nil
}

func (b *BoltDB) Put(ctx context.Context, key, value []byte) error {
	if b.db == nil {
		return db.ErrNotConnected
	}
	if len(key) == 0 {
		return db.ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).Put(key, value)
	})
	if err != nil {
		return db.IOError("write key", err)
	}

	return nil
}

func (b *BoltDB) ForEach(ctx context.Context, fn func(key, value []byte) error) error {
	if b.db == nil {
		return db.ErrNotConnected
	}

	var fnErr error
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				fnErr = err
				return err
			}
			if err := fn(k, v); err != nil {
				fnErr = err
				return err
			}
			return nil
		})
	})

	switch {
	case fnErr != nil && errors.Is(fnErr, db.ErrStopIteration):
		return nil
	case fnErr != nil:
		return fnErr
	case err != nil:
		return db.IOError("iterate bucket", err)
	}

	return nil
}
