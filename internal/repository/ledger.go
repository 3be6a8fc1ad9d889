package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"sportsbook/internal/model"
)

// LedgerRepository reads the append-only transaction log. All writes go
// through AccountRepository.ApplyLedgerEntry; this repository only queries.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository instance.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

const ledgerColumns = "id, account_id, type, amount_cents, balance_after_cents, bet_id, event_id, created_at"

// ListByAccount retrieves an account's ledger entries, newest first.
func (r *LedgerRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*model.Transaction, error) {
	const query = `
		SELECT ` + ledgerColumns + `
		FROM ledger
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.Transaction
	for rows.Next() {
		var e model.Transaction
		err := rows.Scan(&e.ID, &e.AccountID, &e.Type, &e.AmountCents, &e.BalanceAfterCents, &e.BetID, &e.EventID, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}
	return entries, nil
}

// SumByAccount returns the sum of all signed ledger amounts for an account.
// The starting balance is itself a ledger entry, so by the conservation
// invariant the sum must equal the account balance exactly.
func (r *LedgerRepository) SumByAccount(ctx context.Context, accountID string) (int64, error) {
	const query = `SELECT COALESCE(SUM(amount_cents), 0) FROM ledger WHERE account_id = $1`

	var sum int64
	if err := r.pool.QueryRow(ctx, query, accountID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum ledger: %w", err)
	}
	return sum, nil
}

// PayoutTotals returns the total credited back to bettors via settlements
// and push refunds.
func (r *LedgerRepository) PayoutTotals(ctx context.Context) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM ledger
		WHERE type IN ('bet_settle', 'bet_refund')
	`

	var total int64
	if err := r.pool.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to total payouts: %w", err)
	}
	return total, nil
}

// DailyPayout is one day's worth of settlement credits.
type DailyPayout struct {
	Day         time.Time
	AmountCents int64
}

// PayoutsByDay aggregates settlement and refund credits per calendar day.
func (r *LedgerRepository) PayoutsByDay(ctx context.Context) ([]DailyPayout, error) {
	const query = `
		SELECT DATE(created_at) AS day, SUM(amount_cents)
		FROM ledger
		WHERE type IN ('bet_settle', 'bet_refund')
		GROUP BY DATE(created_at)
		ORDER BY day ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payouts: %w", err)
	}
	defer rows.Close()

	var out []DailyPayout
	for rows.Next() {
		var d DailyPayout
		if err := rows.Scan(&d.Day, &d.AmountCents); err != nil {
			return nil, fmt.Errorf("failed to scan daily payout: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily payouts: %w", err)
	}
	return out, nil
}
