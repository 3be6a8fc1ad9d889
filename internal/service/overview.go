package service

import (
	"context"
	"fmt"

	"sportsbook/internal/model"
	"sportsbook/internal/money"
	"sportsbook/internal/repository"
)

// OverviewService computes the house-side KPIs for the admin overview.
type OverviewService struct {
	bets     *repository.BetRepository
	ledger   *repository.LedgerRepository
	accounts *repository.AccountRepository
}

// NewOverviewService creates a new OverviewService instance.
func NewOverviewService(bets *repository.BetRepository, ledger *repository.LedgerRepository, accounts *repository.AccountRepository) *OverviewService {
	return &OverviewService{bets: bets, ledger: ledger, accounts: accounts}
}

// SportBreakdown summarizes betting activity on one sport.
type SportBreakdown struct {
	Sport       string `json:"sport"`
	Bets        int    `json:"bets"`
	HandleCents int64  `json:"handleCents"`
}

// DailyPayout is one day's settlement credits.
type DailyPayout struct {
	Day         string `json:"day"`
	AmountCents int64  `json:"amountCents"`
}

// Overview is the house ledger at a glance. Handle is everything staked,
// payouts everything credited back, profit their difference. Exposure is
// the worst case: what the house owes if every open bet wins.
type Overview struct {
	TotalBets     int   `json:"totalBets"`
	OpenBets      int   `json:"openBets"`
	SettledBets   int   `json:"settledBets"`
	Wins          int   `json:"wins"`
	Losses        int   `json:"losses"`
	Pushes        int   `json:"pushes"`
	HandleCents   int64 `json:"handleCents"`
	PayoutCents   int64 `json:"payoutCents"`
	ProfitCents   int64 `json:"profitCents"`
	ExposureCents int64 `json:"exposureCents"`

	BySport []SportBreakdown `json:"bySport"`
	ByDay   []DailyPayout    `json:"byDay"`

	TopAccounts []*model.Account `json:"topAccounts"`
}

// Compute builds the overview from every bet on record plus the ledger's
// payout aggregates.
func (s *OverviewService) Compute(ctx context.Context) (*Overview, error) {
	bets, err := s.bets.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}

	o := &Overview{TotalBets: len(bets)}
	bySport := make(map[string]*SportBreakdown)

	for _, b := range bets {
		o.HandleCents += b.StakeCents

		sb, ok := bySport[b.Sport]
		if !ok {
			sb = &SportBreakdown{Sport: b.Sport}
			bySport[b.Sport] = sb
		}
		sb.Bets++
		sb.HandleCents += b.StakeCents

		if b.Status == model.BetOpen {
			o.OpenBets++
			o.ExposureCents += b.StakeCents + money.ProfitFromAmericanOdds(b.StakeCents, b.AmericanOdds)
			continue
		}

		o.SettledBets++
		if b.Result == nil {
			continue
		}
		switch *b.Result {
		case model.ResultWin:
			o.Wins++
		case model.ResultLoss:
			o.Losses++
		case model.ResultPush:
			o.Pushes++
		}
	}

	for _, sport := range model.Sports() {
		if sb, ok := bySport[sport]; ok {
			o.BySport = append(o.BySport, *sb)
		}
	}

	payouts, err := s.ledger.PayoutTotals(ctx)
	if err != nil {
		return nil, err
	}
	o.PayoutCents = payouts
	o.ProfitCents = o.HandleCents - payouts

	daily, err := s.ledger.PayoutsByDay(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range daily {
		o.ByDay = append(o.ByDay, DailyPayout{
			Day:         d.Day.Format("2006-01-02"),
			AmountCents: d.AmountCents,
		})
	}

	top, err := s.accounts.ListTopByBalance(ctx, 10)
	if err != nil {
		return nil, err
	}
	o.TopAccounts = top

	return o, nil
}
