package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"sportsbook/internal/model"
	"sportsbook/internal/repository"
)

// AccountService manages accounts and their ledgers.
type AccountService struct {
	accounts *repository.AccountRepository
	ledger   *repository.LedgerRepository

	startingBalanceCents int64
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(accounts *repository.AccountRepository, ledger *repository.LedgerRepository, startingBalanceCents int64) *AccountService {
	return &AccountService{
		accounts:             accounts,
		ledger:               ledger,
		startingBalanceCents: startingBalanceCents,
	}
}

// EnsureAccount returns the account, creating it with the starting balance
// on first sight. Creation writes the opening ledger entry so the ledger
// explains the balance from the first cent.
func (s *AccountService) EnsureAccount(ctx context.Context, id, username string) (*model.Account, error) {
	account, created, err := s.accounts.GetOrCreate(ctx, id, username, s.startingBalanceCents)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure account: %w", err)
	}
	if created {
		log.Info().
			Str("account_id", id).
			Int64("starting_balance_cents", s.startingBalanceCents).
			Msg("account created")
	}
	return account, nil
}

// GetAccount retrieves an account by ID.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetTransactions returns an account's most recent ledger entries, newest
// first.
func (s *AccountService) GetTransactions(ctx context.Context, accountID string, limit int) ([]*model.Transaction, error) {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.ledger.ListByAccount(ctx, accountID, limit)
}

// Leaderboard returns the richest accounts.
func (s *AccountService) Leaderboard(ctx context.Context, limit int) ([]*model.Account, error) {
	return s.accounts.ListTopByBalance(ctx, limit)
}

// VerifyConservation checks that the account's balance equals the sum of
// its ledger entries. A mismatch means money was created or destroyed
// outside the ledger and is logged loudly.
func (s *AccountService) VerifyConservation(ctx context.Context, accountID string) (bool, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return false, err
	}
	sum, err := s.ledger.SumByAccount(ctx, accountID)
	if err != nil {
		return false, err
	}
	if sum != account.BalanceCents {
		log.Error().
			Str("account_id", accountID).
			Int64("balance_cents", account.BalanceCents).
			Int64("ledger_sum_cents", sum).
			Msg("ledger does not explain balance")
		return false, nil
	}
	return true, nil
}
