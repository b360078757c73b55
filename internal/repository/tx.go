package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TxRunner runs a function inside a database transaction. The fulfillment
// dispatcher depends on this interface rather than *sql.DB directly so that
// tests can supply an in-memory implementation.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// SQLTxRunner is the production TxRunner backed by *sql.DB.
type SQLTxRunner struct {
	db *sql.DB
}

// NewSQLTxRunner returns a TxRunner bound to the given database.
func NewSQLTxRunner(db *sql.DB) *SQLTxRunner { return &SQLTxRunner{db: db} }

// RunInTx begins a transaction, invokes fn and commits if fn returns nil.
// Any error from fn rolls the transaction back and is returned unchanged so
// sentinel checks with errors.Is still work at the call site.
func (r *SQLTxRunner) RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
