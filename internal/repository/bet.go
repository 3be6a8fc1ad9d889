package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sportsbook/internal/model"
)

// BetRepository handles wager persistence. Bets are created open and become
// settled exactly once; MarkSettled is checked-and-set on the open status so
// concurrent settlement runs cannot grade the same bet twice.
type BetRepository struct {
	pool *pgxpool.Pool
}

// NewBetRepository creates a new BetRepository instance.
func NewBetRepository(pool *pgxpool.Pool) *BetRepository {
	return &BetRepository{pool: pool}
}

const betColumns = `
	id, account_id, event_id, sport, home_team, away_team, event_start_time,
	market, side, line, american_odds, stake_cents,
	status, result, profit_cents, payout_cents, placed_at, settled_at`

func scanBet(row pgx.Row) (*model.Bet, error) {
	var (
		b            model.Bet
		market, side string
		line         *float64
	)
	err := row.Scan(
		&b.ID, &b.AccountID, &b.EventID, &b.Sport, &b.HomeTeam, &b.AwayTeam, &b.EventStartTime,
		&market, &side, &line, &b.AmericanOdds, &b.StakeCents,
		&b.Status, &b.Result, &b.ProfitCents, &b.PayoutCents, &b.PlacedAt, &b.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBetNotFound
		}
		return nil, err
	}

	var lineVal float64
	if line != nil {
		lineVal = *line
	}
	pick, err := model.NewPick(market, side, lineVal)
	if err != nil {
		return nil, fmt.Errorf("stored bet %s has invalid pick %s/%s: %w", b.ID, market, side, err)
	}
	b.Pick = pick
	return &b, nil
}

// Create persists a new open bet inside the caller's transaction and
// returns it with generated id and placement time.
func (r *BetRepository) Create(ctx context.Context, q Querier, b *model.Bet) (*model.Bet, error) {
	const query = `
		INSERT INTO bets (
			id, account_id, event_id, sport, home_team, away_team, event_start_time,
			market, side, line, american_odds, stake_cents, status, placed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'open', NOW())
		RETURNING` + betColumns

	var line *float64
	if l, ok := b.Pick.Line(); ok {
		line = &l
	}

	created, err := scanBet(q.QueryRow(ctx, query,
		uuid.NewString(), b.AccountID, b.EventID, b.Sport, b.HomeTeam, b.AwayTeam, b.EventStartTime,
		b.Pick.Market(), b.Pick.Side(), line, b.AmericanOdds, b.StakeCents,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}
	return created, nil
}

// GetByID retrieves a bet by ID.
func (r *BetRepository) GetByID(ctx context.Context, id string) (*model.Bet, error) {
	const query = `SELECT` + betColumns + ` FROM bets WHERE id = $1`

	b, err := scanBet(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrBetNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	return b, nil
}

func (r *BetRepository) list(ctx context.Context, query string, args ...any) ([]*model.Bet, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	defer rows.Close()

	var bets []*model.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bets: %w", err)
	}
	return bets, nil
}

// ListByAccount retrieves all bets for an account, newest first.
func (r *BetRepository) ListByAccount(ctx context.Context, accountID string) ([]*model.Bet, error) {
	const query = `SELECT` + betColumns + ` FROM bets WHERE account_id = $1 ORDER BY placed_at DESC`
	return r.list(ctx, query, accountID)
}

// ListByAccountAndStatus retrieves an account's bets filtered by status,
// newest first.
func (r *BetRepository) ListByAccountAndStatus(ctx context.Context, accountID, status string) ([]*model.Bet, error) {
	const query = `SELECT` + betColumns + ` FROM bets WHERE account_id = $1 AND status = $2 ORDER BY placed_at DESC`
	return r.list(ctx, query, accountID, status)
}

// ListOpenByEvent retrieves all open bets on an event, oldest first so
// settlement grades them in placement order.
func (r *BetRepository) ListOpenByEvent(ctx context.Context, eventID string) ([]*model.Bet, error) {
	const query = `SELECT` + betColumns + ` FROM bets WHERE event_id = $1 AND status = 'open' ORDER BY placed_at ASC`
	return r.list(ctx, query, eventID)
}

// ListAll retrieves every bet, newest first. Used by the admin overview.
func (r *BetRepository) ListAll(ctx context.Context) ([]*model.Bet, error) {
	const query = `SELECT` + betColumns + ` FROM bets ORDER BY placed_at DESC`
	return r.list(ctx, query)
}

// MarkSettled transitions an open bet to settled inside the caller's
// transaction, storing the grade. The guard on status = 'open' makes
// settlement at-most-once per bet: a false return means another run already
// settled it and the caller must not move any money for it.
func (r *BetRepository) MarkSettled(ctx context.Context, q Querier, betID, result string, profitCents, payoutCents int64, settledAt time.Time) (*model.Bet, bool, error) {
	const query = `
		UPDATE bets
		SET status = 'settled', result = $2, profit_cents = $3, payout_cents = $4, settled_at = $5
		WHERE id = $1 AND status = 'open'
		RETURNING` + betColumns

	b, err := scanBet(q.QueryRow(ctx, query, betID, result, profitCents, payoutCents, settledAt))
	if err != nil {
		if errors.Is(err, ErrBetNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to mark bet settled: %w", err)
	}
	return b, true, nil
}
