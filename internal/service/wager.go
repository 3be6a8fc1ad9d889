package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"sportsbook/internal/model"
	"sportsbook/internal/money"
	"sportsbook/internal/pkg/lock"
	"sportsbook/internal/repository"
)

// WagerService prices and places bets. Placement is atomic: the stake
// debit, the ledger entry, and the bet row land in one database
// transaction or not at all.
type WagerService struct {
	pool     *pgxpool.Pool
	accounts *repository.AccountRepository
	bets     *repository.BetRepository
	events   *repository.EventRepository
	locks    *lock.KeyLock

	minStakeCents int64
	maxStakeCents int64
}

// NewWagerService creates a new WagerService instance.
func NewWagerService(
	pool *pgxpool.Pool,
	accounts *repository.AccountRepository,
	bets *repository.BetRepository,
	events *repository.EventRepository,
	locks *lock.KeyLock,
	minStakeCents, maxStakeCents int64,
) *WagerService {
	return &WagerService{
		pool:          pool,
		accounts:      accounts,
		bets:          bets,
		events:        events,
		locks:         locks,
		minStakeCents: minStakeCents,
		maxStakeCents: maxStakeCents,
	}
}

// PlacedBet is the result of a successful placement, including the payout
// preview computed from the same arithmetic settlement will use.
type PlacedBet struct {
	Bet                  *model.Bet
	BalanceCents         int64
	PotentialProfitCents int64
	PotentialPayoutCents int64
}

// PlaceBet validates the request against the event's posted odds, then
// atomically debits the stake, appends the bet_place ledger entry, and
// records the open bet. The stake is reserved immediately and
// irrevocably; money only comes back through settlement.
func (s *WagerService) PlaceBet(ctx context.Context, accountID, eventID, market, side string, stakeCents int64) (*PlacedBet, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if event.Status != model.EventScheduled {
		return nil, ErrBettingClosed
	}

	americanOdds, pick, err := resolvePick(event, market, side)
	if err != nil {
		return nil, err
	}

	if stakeCents < s.minStakeCents || stakeCents > s.maxStakeCents {
		return nil, ErrInvalidStake
	}

	var placed *PlacedBet
	err = s.locks.WithLock(accountID, func() error {
		return repository.InTx(ctx, s.pool, func(tx pgx.Tx) error {
			account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
			if err != nil {
				if errors.Is(err, repository.ErrAccountNotFound) {
					return ErrAccountNotFound
				}
				return err
			}
			if account.BalanceCents < stakeCents {
				return ErrInsufficientFunds
			}

			bet, err := s.bets.Create(ctx, tx, &model.Bet{
				AccountID:      accountID,
				EventID:        event.ID,
				Sport:          event.Sport,
				HomeTeam:       event.HomeTeam,
				AwayTeam:       event.AwayTeam,
				EventStartTime: event.StartTime,
				Pick:           pick,
				AmericanOdds:   americanOdds,
				StakeCents:     stakeCents,
			})
			if err != nil {
				return err
			}

			account, _, err = s.accounts.ApplyLedgerEntry(
				ctx, tx, accountID, -stakeCents, model.TxTypeBetPlace, &bet.ID, &event.ID)
			if err != nil {
				return err
			}

			profit := money.ProfitFromAmericanOdds(stakeCents, americanOdds)
			placed = &PlacedBet{
				Bet:                  bet,
				BalanceCents:         account.BalanceCents,
				PotentialProfitCents: profit,
				PotentialPayoutCents: stakeCents + profit,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("bet_id", placed.Bet.ID).
		Str("account_id", accountID).
		Str("event_id", eventID).
		Str("market", market).
		Str("side", side).
		Int64("stake_cents", stakeCents).
		Int64("odds", americanOdds).
		Msg("bet placed")

	return placed, nil
}

// ListBets returns an account's bets, newest first, optionally filtered
// by status. An empty status returns everything.
func (s *WagerService) ListBets(ctx context.Context, accountID, status string) ([]*model.Bet, error) {
	if status == "" {
		return s.bets.ListByAccount(ctx, accountID)
	}
	if status != model.BetOpen && status != model.BetSettled {
		return nil, fmt.Errorf("unknown bet status %q", status)
	}
	return s.bets.ListByAccountAndStatus(ctx, accountID, status)
}

// ListAllBets returns every bet on record, newest first. Admin only.
func (s *WagerService) ListAllBets(ctx context.Context) ([]*model.Bet, error) {
	return s.bets.ListAll(ctx)
}

// GetBet returns a single bet if it belongs to the account.
func (s *WagerService) GetBet(ctx context.Context, accountID, betID string) (*model.Bet, error) {
	bet, err := s.bets.GetByID(ctx, betID)
	if err != nil {
		if errors.Is(err, repository.ErrBetNotFound) {
			return nil, ErrBetNotFound
		}
		return nil, err
	}
	if bet.AccountID != accountID {
		return nil, ErrBetNotFound
	}
	return bet, nil
}

// resolvePick maps the requested market and side to the event's posted
// odds, capturing the current line into the pick.
func resolvePick(event *model.Event, market, side string) (int64, model.Pick, error) {
	switch market {
	case model.MarketMoneyline:
		if side != model.SideHome && side != model.SideAway {
			return 0, nil, ErrInvalidSide
		}
		ml := event.Odds.Moneyline
		if ml == nil {
			return 0, nil, ErrMarketUnavailable
		}
		odds := ml.Away
		if side == model.SideHome {
			odds = ml.Home
		}
		return odds, model.MoneylinePick{Team: side}, nil

	case model.MarketSpread:
		if side != model.SideHome && side != model.SideAway {
			return 0, nil, ErrInvalidSide
		}
		sp := event.Odds.Spread
		if sp == nil {
			return 0, nil, ErrMarketUnavailable
		}
		if side == model.SideHome {
			return sp.HomeOdds, model.SpreadPick{Team: side, PointLine: sp.HomeLine}, nil
		}
		return sp.AwayOdds, model.SpreadPick{Team: side, PointLine: sp.AwayLine}, nil

	case model.MarketTotal:
		if side != model.SideOver && side != model.SideUnder {
			return 0, nil, ErrInvalidSide
		}
		tot := event.Odds.Total
		if tot == nil {
			return 0, nil, ErrMarketUnavailable
		}
		odds := tot.UnderOdds
		if side == model.SideOver {
			odds = tot.OverOdds
		}
		return odds, model.TotalPick{OverUnder: side, PointLine: tot.Line}, nil

	default:
		return 0, nil, ErrMarketUnavailable
	}
}
