// Package engine holds the transactional core keeping reaction and comment
// counters consistent with their fact tables.
package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/farahadel/connectly/pkg/utils"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxTxAttempts = 5

// retryable classifies storage errors worth another transaction attempt:
// serialization failures, deadlocks, the unique-index violation raised when
// two first-time reactions race, and SQLite writer contention.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "23505":
			return true
		}
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// runInTx executes fn inside a transaction with bounded retry. Deterministic
// failures (anything already shaped as a CustomError) propagate immediately
// and are never retried.
func runInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}

		var appErr *utils.CustomError
		if utils.As(err, &appErr) {
			return err
		}
		if !retryable(err) {
			return utils.WrapError(err, utils.ErrServiceUnavailable.Code, "Storage operation failed")
		}
		if attempt < maxTxAttempts {
			time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
		}
	}
	return utils.WrapError(err, utils.ErrConflict.Code, "Transaction retries exhausted")
}

// lockForUpdate adds a row lock on dialects that support it. SQLite has a
// single writer and rejects FOR UPDATE, so it is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
