// End-to-end engine tests against a real PostgreSQL container: place,
// finalize, settle, and check the ledger explains every cent.
package service

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"sportsbook/internal/model"
	"sportsbook/internal/money"
	"sportsbook/internal/pkg/lock"
	"sportsbook/internal/repository"
)

func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id VARCHAR(64) PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			balance_cents BIGINT NOT NULL DEFAULT 0 CHECK (balance_cents >= 0),
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS events (
			id VARCHAR(128) PRIMARY KEY,
			sport VARCHAR(16) NOT NULL,
			home_team VARCHAR(255) NOT NULL,
			away_team VARCHAR(255) NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'scheduled',
			source VARCHAR(16) NOT NULL,
			ml_home BIGINT,
			ml_away BIGINT,
			spread_home_line DOUBLE PRECISION,
			spread_home_odds BIGINT,
			spread_away_line DOUBLE PRECISION,
			spread_away_odds BIGINT,
			total_line DOUBLE PRECISION,
			total_over_odds BIGINT,
			total_under_odds BIGINT,
			home_score INT,
			away_score INT,
			finished_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS bets (
			id VARCHAR(64) PRIMARY KEY,
			account_id VARCHAR(64) NOT NULL REFERENCES accounts(id),
			event_id VARCHAR(128) NOT NULL REFERENCES events(id),
			sport VARCHAR(16) NOT NULL,
			home_team VARCHAR(255) NOT NULL,
			away_team VARCHAR(255) NOT NULL,
			event_start_time TIMESTAMPTZ NOT NULL,
			market VARCHAR(16) NOT NULL,
			side VARCHAR(16) NOT NULL,
			line DOUBLE PRECISION,
			american_odds BIGINT NOT NULL,
			stake_cents BIGINT NOT NULL CHECK (stake_cents > 0),
			status VARCHAR(16) NOT NULL DEFAULT 'open',
			result VARCHAR(16),
			profit_cents BIGINT,
			payout_cents BIGINT,
			placed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			settled_at TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS ledger (
			id VARCHAR(64) PRIMARY KEY,
			account_id VARCHAR(64) NOT NULL REFERENCES accounts(id),
			type VARCHAR(32) NOT NULL,
			amount_cents BIGINT NOT NULL,
			balance_after_cents BIGINT NOT NULL,
			bet_id VARCHAR(64),
			event_id VARCHAR(128),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

type engine struct {
	accounts   *AccountService
	catalog    *CatalogService
	wagers     *WagerService
	settlement *SettlementService
	overview   *OverviewService
}

func newTestEngine(pool *pgxpool.Pool) *engine {
	accountRepo := repository.NewAccountRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	betRepo := repository.NewBetRepository(pool)
	ledgerRepo := repository.NewLedgerRepository(pool)
	keyLock := lock.New()

	return &engine{
		accounts:   NewAccountService(accountRepo, ledgerRepo, 100_000),
		catalog:    NewCatalogService(eventRepo, nil),
		wagers:     NewWagerService(pool, accountRepo, betRepo, eventRepo, keyLock, 100, 5_000_000),
		settlement: NewSettlementService(pool, accountRepo, betRepo, eventRepo, keyLock),
		overview:   NewOverviewService(betRepo, ledgerRepo, accountRepo),
	}
}

func scheduledEvent(id string) *model.Event {
	return &model.Event{
		ID:        id,
		Sport:     model.SportNBA,
		HomeTeam:  "Boston Celtics",
		AwayTeam:  "Los Angeles Lakers",
		StartTime: time.Now().Add(24 * time.Hour),
		Status:    model.EventScheduled,
		Source:    model.SourceManual,
		Odds: model.EventOdds{
			Moneyline: &model.MoneylineOdds{Home: -110, Away: -110},
			Spread:    &model.SpreadOdds{HomeLine: -3.5, HomeOdds: -110, AwayLine: 3.5, AwayOdds: -110},
			Total:     &model.TotalOdds{Line: 214.5, OverOdds: -110, UnderOdds: -110},
		},
	}
}

func TestEngine_PlaceSettleRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	e := newTestEngine(pool)
	ctx := context.Background()

	account, err := e.accounts.EnsureAccount(ctx, "bettor-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), account.BalanceCents)

	require.NoError(t, e.catalog.Upsert(ctx, scheduledEvent("evt-1")))

	// $25 on the away moneyline at -110.
	placed, err := e.wagers.PlaceBet(ctx, "bettor-1", "evt-1", model.MarketMoneyline, model.SideAway, 2_500)
	require.NoError(t, err)
	assert.Equal(t, int64(97_500), placed.BalanceCents)
	assert.Equal(t, int64(2_273), placed.PotentialProfitCents)
	assert.Equal(t, int64(4_773), placed.PotentialPayoutCents)

	// Away team wins.
	_, err = e.catalog.Finalize(ctx, "evt-1", 98, 100)
	require.NoError(t, err)

	result, err := e.settlement.SettleEvent(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Settled)
	assert.Equal(t, 1, result.Wins)
	assert.Equal(t, int64(4_773), result.TotalPaidCents)
	require.Len(t, result.Bets, 1)
	assert.Equal(t, model.BetSettled, result.Bets[0].Status)
	assert.Equal(t, model.ResultWin, *result.Bets[0].Result)
	assert.Equal(t, int64(2_273), *result.Bets[0].ProfitCents)

	account, err = e.accounts.GetAccount(ctx, "bettor-1")
	require.NoError(t, err)
	assert.Equal(t, int64(102_273), account.BalanceCents)
	assert.Equal(t, "$1,022.73", money.FormatUSD(account.BalanceCents))

	ok, err := e.accounts.VerifyConservation(ctx, "bettor-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Re-running settlement finds nothing open and pays nothing.
	result, err = e.settlement.SettleEvent(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Settled)
	assert.Equal(t, int64(0), result.TotalPaidCents)

	account, err = e.accounts.GetAccount(ctx, "bettor-1")
	require.NoError(t, err)
	assert.Equal(t, int64(102_273), account.BalanceCents)
}

func TestEngine_PushRefundsStake(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	e := newTestEngine(pool)
	ctx := context.Background()

	_, err := e.accounts.EnsureAccount(ctx, "bettor-1", "alice")
	require.NoError(t, err)

	event := scheduledEvent("evt-1")
	event.Odds.Spread = &model.SpreadOdds{HomeLine: -2, HomeOdds: -110, AwayLine: 2, AwayOdds: -110}
	require.NoError(t, e.catalog.Upsert(ctx, event))

	_, err = e.wagers.PlaceBet(ctx, "bettor-1", "evt-1", model.MarketSpread, model.SideHome, 5_000)
	require.NoError(t, err)

	// Home wins by exactly the line.
	_, err = e.catalog.Finalize(ctx, "evt-1", 100, 98)
	require.NoError(t, err)

	result, err := e.settlement.SettleEvent(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pushes)
	assert.Equal(t, int64(5_000), result.TotalPaidCents)

	account, err := e.accounts.GetAccount(ctx, "bettor-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), account.BalanceCents)

	txs, err := e.accounts.GetTransactions(ctx, "bettor-1", 10)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, model.TxTypeBetRefund, txs[0].Type)
}

func TestEngine_PlacementRejections(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	e := newTestEngine(pool)
	ctx := context.Background()

	_, err := e.accounts.EnsureAccount(ctx, "bettor-1", "alice")
	require.NoError(t, err)

	event := scheduledEvent("evt-1")
	event.Odds.Total = nil
	require.NoError(t, e.catalog.Upsert(ctx, event))

	tests := []struct {
		name    string
		eventID string
		market  string
		side    string
		stake   int64
		wantErr error
	}{
		{"unknown event", "no-such-event", model.MarketMoneyline, model.SideHome, 2_500, ErrEventNotFound},
		{"market not offered", "evt-1", model.MarketTotal, model.SideOver, 2_500, ErrMarketUnavailable},
		{"unknown market", "evt-1", "parlay", model.SideHome, 2_500, ErrMarketUnavailable},
		{"wrong side for market", "evt-1", model.MarketMoneyline, model.SideOver, 2_500, ErrInvalidSide},
		{"stake below minimum", "evt-1", model.MarketMoneyline, model.SideHome, 99, ErrInvalidStake},
		{"stake above maximum", "evt-1", model.MarketMoneyline, model.SideHome, 5_000_001, ErrInvalidStake},
		{"stake above balance", "evt-1", model.MarketMoneyline, model.SideHome, 100_001, ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.wagers.PlaceBet(ctx, "bettor-1", tt.eventID, tt.market, tt.side, tt.stake)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Every rejection left the balance untouched and the ledger consistent.
	account, err := e.accounts.GetAccount(ctx, "bettor-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), account.BalanceCents)

	ok, err := e.accounts.VerifyConservation(ctx, "bettor-1")
	require.NoError(t, err)
	assert.True(t, ok)

	bets, err := e.wagers.ListBets(ctx, "bettor-1", "")
	require.NoError(t, err)
	assert.Empty(t, bets)
}

func TestEngine_CanStakeEntireBalance(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	e := newTestEngine(pool)
	ctx := context.Background()

	_, err := e.accounts.EnsureAccount(ctx, "bettor-1", "alice")
	require.NoError(t, err)
	require.NoError(t, e.catalog.Upsert(ctx, scheduledEvent("evt-1")))

	placed, err := e.wagers.PlaceBet(ctx, "bettor-1", "evt-1", model.MarketMoneyline, model.SideHome, 100_000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), placed.BalanceCents)

	ok, err := e.accounts.VerifyConservation(ctx, "bettor-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEngine_FinalizeClosesBettingAndCatalog(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	e := newTestEngine(pool)
	ctx := context.Background()

	_, err := e.accounts.EnsureAccount(ctx, "bettor-1", "alice")
	require.NoError(t, err)
	require.NoError(t, e.catalog.Upsert(ctx, scheduledEvent("evt-1")))

	// Settlement before the final score is recorded is rejected.
	_, err = e.settlement.SettleEvent(ctx, "evt-1")
	assert.ErrorIs(t, err, ErrEventNotFinished)

	_, err = e.catalog.Finalize(ctx, "evt-1", 110, 104)
	require.NoError(t, err)

	// No more bets, no edits, no second result.
	_, err = e.wagers.PlaceBet(ctx, "bettor-1", "evt-1", model.MarketMoneyline, model.SideHome, 2_500)
	assert.ErrorIs(t, err, ErrBettingClosed)

	err = e.catalog.Upsert(ctx, scheduledEvent("evt-1"))
	assert.ErrorIs(t, err, ErrCannotEditFinished)

	_, err = e.catalog.Finalize(ctx, "evt-1", 0, 0)
	assert.ErrorIs(t, err, ErrEventAlreadyFinished)
}

func TestEngine_OverviewTracksTheBook(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	e := newTestEngine(pool)
	ctx := context.Background()

	_, err := e.accounts.EnsureAccount(ctx, "bettor-1", "alice")
	require.NoError(t, err)
	_, err = e.accounts.EnsureAccount(ctx, "bettor-2", "bob")
	require.NoError(t, err)

	require.NoError(t, e.catalog.Upsert(ctx, scheduledEvent("evt-1")))

	_, err = e.wagers.PlaceBet(ctx, "bettor-1", "evt-1", model.MarketMoneyline, model.SideHome, 2_500)
	require.NoError(t, err)
	_, err = e.wagers.PlaceBet(ctx, "bettor-2", "evt-1", model.MarketMoneyline, model.SideAway, 10_000)
	require.NoError(t, err)

	overview, err := e.overview.Compute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, overview.TotalBets)
	assert.Equal(t, 2, overview.OpenBets)
	assert.Equal(t, int64(12_500), overview.HandleCents)
	// Worst case: both moneyline bets win at -110.
	wantExposure := int64(2_500+10_000) +
		money.ProfitFromAmericanOdds(2_500, -110) +
		money.ProfitFromAmericanOdds(10_000, -110)
	assert.Equal(t, wantExposure, overview.ExposureCents)

	_, err = e.catalog.Finalize(ctx, "evt-1", 100, 98)
	require.NoError(t, err)
	_, err = e.settlement.SettleEvent(ctx, "evt-1")
	require.NoError(t, err)

	overview, err = e.overview.Compute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, overview.OpenBets)
	assert.Equal(t, 2, overview.SettledBets)
	assert.Equal(t, 1, overview.Wins)
	assert.Equal(t, 1, overview.Losses)
	assert.Equal(t, int64(0), overview.ExposureCents)
	// Home won: the book pays 2500 + 2273 and keeps bob's 10000.
	assert.Equal(t, int64(4_773), overview.PayoutCents)
	assert.Equal(t, int64(12_500-4_773), overview.ProfitCents)
	require.Len(t, overview.BySport, 1)
	assert.Equal(t, model.SportNBA, overview.BySport[0].Sport)
}
