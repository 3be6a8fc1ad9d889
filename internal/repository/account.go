package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sportsbook/internal/model"
)

// AccountRepository handles account persistence. Balance mutation funnels
// through the single ApplyLedgerEntry primitive: the balance column and the
// ledger are always written together, in the caller's transaction, so the
// conservation invariant (balance == sum of ledger amounts) cannot be
// bypassed by a shortcut write path.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository instance.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = "id, username, balance_cents, is_admin, created_at, updated_at"

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Username, &a.BalanceCents, &a.IsAdmin, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create creates a new account and credits the starting balance through the
// ledger, so the conservation invariant holds from the very first entry.
func (r *AccountRepository) Create(ctx context.Context, id, username string, startingBalanceCents int64) (*model.Account, error) {
	var created *model.Account
	err := InTx(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
			INSERT INTO accounts (id, username, balance_cents, is_admin, created_at, updated_at)
			VALUES ($1, $2, 0, FALSE, NOW(), NOW())
			RETURNING ` + accountColumns

		a, err := scanAccount(tx.QueryRow(ctx, query, id, username))
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		if startingBalanceCents > 0 {
			a, _, err = r.ApplyLedgerEntry(ctx, tx, id, startingBalanceCents, model.TxTypeInitial, nil, nil)
			if err != nil {
				return err
			}
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves an account by ID.
// Returns ErrAccountNotFound if the account does not exist.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// GetOrCreate retrieves an account by ID, creating one with the starting
// balance if it doesn't exist. Returns the account and whether it was newly
// created.
func (r *AccountRepository) GetOrCreate(ctx context.Context, id, username string, startingBalanceCents int64) (*model.Account, bool, error) {
	a, err := r.GetByID(ctx, id)
	if err == nil {
		return a, false, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, false, err
	}

	a, err = r.Create(ctx, id, username, startingBalanceCents)
	if err != nil {
		// Another request may have created the account concurrently.
		a, err = r.GetByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		return a, false, nil
	}
	return a, true, nil
}

// GetForUpdate loads an account inside the caller's transaction, holding a
// row lock until the transaction ends. Funds checks and the debit that
// depends on them must both happen under this lock.
func (r *AccountRepository) GetForUpdate(ctx context.Context, q Querier, id string) (*model.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`

	a, err := scanAccount(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return a, nil
}

// ApplyLedgerEntry atomically adjusts the account balance and appends the
// matching ledger row recording the balance after the mutation. amountCents
// is negative for debits. It must run inside a transaction (q is the
// caller's pgx.Tx); the accounts CHECK constraint rejects any mutation that
// would drive the balance negative.
func (r *AccountRepository) ApplyLedgerEntry(ctx context.Context, q Querier, accountID string, amountCents int64, txType string, betID, eventID *string) (*model.Account, *model.Transaction, error) {
	const update = `
		UPDATE accounts
		SET balance_cents = balance_cents + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns

	a, err := scanAccount(q.QueryRow(ctx, update, accountID, amountCents))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to apply balance change: %w", err)
	}

	const insert = `
		INSERT INTO ledger (id, account_id, type, amount_cents, balance_after_cents, bet_id, event_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, account_id, type, amount_cents, balance_after_cents, bet_id, event_id, created_at
	`

	var entry model.Transaction
	err = q.QueryRow(ctx, insert, uuid.NewString(), accountID, txType, amountCents, a.BalanceCents, betID, eventID).Scan(
		&entry.ID,
		&entry.AccountID,
		&entry.Type,
		&entry.AmountCents,
		&entry.BalanceAfterCents,
		&entry.BetID,
		&entry.EventID,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return a, &entry, nil
}

// SetAdmin sets the admin flag on an account.
func (r *AccountRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	const query = `UPDATE accounts SET is_admin = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, isAdmin)
	if err != nil {
		return fmt.Errorf("failed to set admin flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ListTopByBalance retrieves the top N accounts by balance.
func (r *AccountRepository) ListTopByBalance(ctx context.Context, limit int) ([]*model.Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY balance_cents DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		var a model.Account
		err := rows.Scan(&a.ID, &a.Username, &a.BalanceCents, &a.IsAdmin, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}
