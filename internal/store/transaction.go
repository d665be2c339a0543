package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/studyplan-api/internal/platform/logger"
)

// TxFn is a function that executes within a database transaction.
// The transaction is committed if the function returns nil, or rolled back if it returns an error.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction executes fn within a database transaction. The transaction is
// rolled back when fn returns an error or panics, and committed otherwise.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			if txErr := tx.Rollback(); txErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			} else {
				log.Error("rolled back transaction after panic",
					slog.Any("panic", p))
			}
			// ALLOW-PANIC: Propagating caught panic from transaction
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf(
				"error rolling back transaction: %v (original error: %w)",
				rollbackErr,
				err,
			)
		}
		log.Debug("rolled back transaction due to error",
			slog.String("error", err.Error()))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: failed to commit transaction: %w", ErrTransactionFailed, err)
	}

	log.Debug("transaction committed successfully")
	return nil
}

// Transactor runs a function inside one unit of work. Services depend on it
// instead of *sql.DB so that they can be exercised against in-memory stores.
type Transactor interface {
	InTx(ctx context.Context, fn TxFn) error
}

// SQLTransactor is the Transactor backed by a database connection pool.
type SQLTransactor struct {
	db *sql.DB
}

// NewSQLTransactor returns a Transactor that runs functions with RunInTransaction.
func NewSQLTransactor(db *sql.DB) *SQLTransactor {
	if db == nil {
		panic("db cannot be nil")
	}
	return &SQLTransactor{db: db}
}

// InTx implements Transactor.
func (t *SQLTransactor) InTx(ctx context.Context, fn TxFn) error {
	return RunInTransaction(ctx, t.db, fn)
}

var _ Transactor = (*SQLTransactor)(nil)
