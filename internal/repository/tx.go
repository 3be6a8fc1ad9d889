// Package repository provides the data access layer. Every multi-record
// mutation runs inside a single database transaction so no caller can
// observe a partially applied debit, credit, or bet state change.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors for repository operations.
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrEventAlreadyFinished = errors.New("event already finished")
	ErrBetNotFound          = errors.New("bet not found")
)

// Querier is the query surface shared by *pgxpool.Pool and pgx.Tx. Methods
// that must participate in a caller-owned transaction accept it explicitly.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// InTx runs fn inside a transaction, committing on success and rolling back
// on error or panic.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
