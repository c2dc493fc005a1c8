package tx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Within runs fn inside a database transaction, committing when fn returns
// nil and rolling back otherwise.
func Within(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	txn, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(txn); err != nil {
		if rbErr := txn.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
