package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dfryer1193/keta/shared/db"
	_ "modernc.org/sqlite"
)

const (
	// DefaultPath is the default path for the SQLite database
	defaultPath = "./keta.db"
	memoryPath  = ":memory:"
)

var _ db.Database = (*SQLiteDB)(nil)

type SQLiteConfig struct {
	Path string
}

func NewSQLiteConfig() *SQLiteConfig {
	path := os.Getenv("SQLITE_DB_PATH")
	if path == "" {
		path = defaultPath
	}

	return &SQLiteConfig{
		Path: path,
	}
}

// SQLiteDB implements db.Database on a single SQLite table ordered by key.
type SQLiteDB struct {
	dbPath string
	db     *sql.DB
}

// NewSQLiteDB creates a new SQLite database instance.
// Use ":memory:" as the path for a throwaway database.
func NewSQLiteDB(cfg *SQLiteConfig) *SQLiteDB {
	return &SQLiteDB{
		dbPath: cfg.Path,
	}
}

// Connect opens a connection to the SQLite database and runs migrations
func (s *SQLiteDB) Connect() error {
	if s.db != nil {
		return db.ErrAlreadyConnected
	}

	sqlDB, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return db.IOError("open database", err)
	}

	if s.dbPath == memoryPath {
		// every pooled connection to ":memory:" would be its own database
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return db.IOError("ping database", err)
	}

	if err := runMigrations(context.Background(), sqlDB); err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.db = sqlDB
	return nil
}

// pragmas are applied to every pooled connection through the DSN.
var pragmas = []string{
	"journal_mode(WAL)",   // Write-Ahead Logging for better concurrency
	"synchronous(NORMAL)", // Balance between safety and performance
	"busy_timeout(5000)",  // Wait up to 5 seconds if database is locked
	"cache_size(-64000)",  // Use 64MB cache (negative means KB)
}

func (s *SQLiteDB) dsn() string {
	params := make([]string, 0, len(pragmas))
	for _, pragma := range pragmas {
		params = append(params, "_pragma="+pragma)
	}
	return s.dbPath + "?" + strings.Join(params, "&")
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying *sql.DB instance
func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

const getValueQuery = `
	SELECT value FROM kv WHERE key = ?
`

func (s *SQLiteDB) Get(ctx context.Context, key []byte) ([]byte, error) {
	if s.db == nil {
		return nil, db.ErrNotConnected
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, getValueQuery, string(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, db.IOError("read key", err)
	}

	if value == nil {
		value = []byte{}
	}
	return value, nil
}

const putValueQuery = `
	INSERT INTO kv (key, value)
	VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value
`

func (s *SQLiteDB) Put(ctx context.Context, key, value []byte) error {
	if s.db == nil {
		return db.ErrNotConnected
	}
	if len(key) == 0 {
		return db.ErrEmptyKey
	}

	if _, err := s.db.ExecContext(ctx, putValueQuery, string(key), value); err != nil {
		return db.IOError("write key", err)
	}

	return nil
}

const listValuesQuery = `
	SELECT key, value FROM kv ORDER BY key
`

func (s *SQLiteDB) ForEach(ctx context.Context, fn func(key, value []byte) error) error {
	if s.db == nil {
		return db.ErrNotConnected
	}

	rows, err := s.db.QueryContext(ctx, listValuesQuery)
	if err != nil {
		return db.IOError("list keys", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return db.IOError("scan row", err)
		}

		if err := fn([]byte(key), value); err != nil {
			if errors.Is(err, db.ErrStopIteration) {
				return nil
			}
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return db.IOError("iterate rows", err)
	}

	return nil
}
