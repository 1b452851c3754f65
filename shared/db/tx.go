package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// txKey is the key type for storing a transaction in a context
type txKey struct{}

// Executor is the query surface shared by *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx returns a new context carrying tx.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTx retrieves the transaction from ctx if there is one.
func GetTx(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// GetExecutor returns the transaction carried by ctx, or sqlDB when there is none.
func GetExecutor(ctx context.Context, sqlDB *sql.DB) Executor {
	if tx, ok := GetTx(ctx); ok {
		return tx
	}
	return sqlDB
}

// RunInTransaction runs fn inside a transaction. A transaction already
// carried by ctx is reused and left for the outer caller to finish;
// otherwise a new one is committed when fn succeeds and rolled back when it fails.
func RunInTransaction(ctx context.Context, sqlDB *sql.DB, fn func(ctx context.Context) error) error {
	if _, ok := GetTx(ctx); ok {
		return fn(ctx)
	}

	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return IOError("begin transaction", err)
	}

	if err := fn(WithTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return IOError("commit transaction", err)
	}

	return nil
}
