package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"sportsbook/internal/model"
	"sportsbook/internal/money"
	"sportsbook/internal/pkg/lock"
	"sportsbook/internal/repository"
)

// SettlementService grades and pays out open bets on finished events.
// Each bet settles in its own transaction: the status flip, the payout
// credit, and the ledger entry commit together. The checked-and-set on
// the bet's open status makes settlement safe to re-run after a crash;
// already-settled bets are skipped without moving money.
type SettlementService struct {
	pool     *pgxpool.Pool
	accounts *repository.AccountRepository
	bets     *repository.BetRepository
	events   *repository.EventRepository
	locks    *lock.KeyLock
}

// NewSettlementService creates a new SettlementService instance.
func NewSettlementService(
	pool *pgxpool.Pool,
	accounts *repository.AccountRepository,
	bets *repository.BetRepository,
	events *repository.EventRepository,
	locks *lock.KeyLock,
) *SettlementService {
	return &SettlementService{
		pool:     pool,
		accounts: accounts,
		bets:     bets,
		events:   events,
		locks:    locks,
	}
}

// SettlementResult summarizes one settlement run over an event.
type SettlementResult struct {
	EventID        string
	Settled        int
	Skipped        int
	Wins           int
	Losses         int
	Pushes         int
	TotalPaidCents int64
	FailedBetIDs   []string

	// Bets newly settled by this run, in the order they were graded.
	Bets []*model.Bet
}

// SettleEvent grades every open bet on a finished event. A per-event lock
// keeps concurrent runs in this process from racing each other; across
// processes the per-bet checked-and-set carries the guarantee. A failure
// on one bet is logged and does not block the rest; re-running settles
// whatever remains open.
func (s *SettlementService) SettleEvent(ctx context.Context, eventID string) (*SettlementResult, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if !event.Finished() {
		return nil, ErrEventNotFinished
	}

	result := &SettlementResult{EventID: eventID}
	err = s.locks.WithLock("settle:"+eventID, func() error {
		bets, err := s.bets.ListOpenByEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("failed to list open bets: %w", err)
		}

		for _, bet := range bets {
			if err := s.settleBet(ctx, event, bet, result); err != nil {
				log.Error().Err(err).
					Str("bet_id", bet.ID).
					Str("event_id", eventID).
					Msg("failed to settle bet")
				result.FailedBetIDs = append(result.FailedBetIDs, bet.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("event_id", eventID).
		Int("settled", result.Settled).
		Int("skipped", result.Skipped).
		Int("failed", len(result.FailedBetIDs)).
		Int64("total_paid_cents", result.TotalPaidCents).
		Msg("event settled")

	return result, nil
}

// settleBet grades a single bet and commits its outcome atomically. Payout
// is the full return for the result: stake plus profit on a win, the stake
// back on a push, zero on a loss.
func (s *SettlementService) settleBet(ctx context.Context, event *model.Event, bet *model.Bet, result *SettlementResult) error {
	grade := gradeBet(bet.Pick, event.Result.HomeScore, event.Result.AwayScore)

	var profit, payout int64
	switch grade {
	case model.ResultWin:
		profit = money.ProfitFromAmericanOdds(bet.StakeCents, bet.AmericanOdds)
		payout = bet.StakeCents + profit
	case model.ResultPush:
		payout = bet.StakeCents
	}

	txType := model.TxTypeBetSettle
	if grade == model.ResultPush {
		txType = model.TxTypeBetRefund
	}

	return s.locks.WithLock(bet.AccountID, func() error {
		return repository.InTx(ctx, s.pool, func(tx pgx.Tx) error {
			settled, ok, err := s.bets.MarkSettled(ctx, tx, bet.ID, grade, profit, payout, time.Now())
			if err != nil {
				return err
			}
			if !ok {
				result.Skipped++
				return nil
			}

			if payout > 0 {
				if _, _, err := s.accounts.ApplyLedgerEntry(
					ctx, tx, settled.AccountID, payout, txType, &settled.ID, &event.ID); err != nil {
					return err
				}
			}

			result.Settled++
			result.TotalPaidCents += payout
			result.Bets = append(result.Bets, settled)
			switch grade {
			case model.ResultWin:
				result.Wins++
			case model.ResultLoss:
				result.Losses++
			case model.ResultPush:
				result.Pushes++
			}
			return nil
		})
	})
}
