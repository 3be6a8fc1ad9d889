// Package main is the entry point for the sportsbook server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sportsbook/internal/cache"
	"sportsbook/internal/config"
	"sportsbook/internal/feed"
	"sportsbook/internal/pkg/db"
	"sportsbook/internal/pkg/lock"
	"sportsbook/internal/repository"
	"sportsbook/internal/server"
	"sportsbook/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(dbPool.Pool)
	eventRepo := repository.NewEventRepository(dbPool.Pool)
	betRepo := repository.NewBetRepository(dbPool.Pool)
	ledgerRepo := repository.NewLedgerRepository(dbPool.Pool)

	// Optional redis odds cache
	var oddsCache service.OddsCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer client.Close()
		oddsCache = cache.New(client, cfg.Redis.OddsTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Odds cache enabled")
	}

	// Initialize key lock
	keyLock := lock.New()

	// Initialize services
	accountService := service.NewAccountService(accountRepo, ledgerRepo, cfg.Account.StartingBalanceCents)
	catalogService := service.NewCatalogService(eventRepo, oddsCache)
	wagerService := service.NewWagerService(
		dbPool.Pool, accountRepo, betRepo, eventRepo, keyLock,
		cfg.Wager.MinStakeCents, cfg.Wager.MaxStakeCents,
	)
	settlementService := service.NewSettlementService(dbPool.Pool, accountRepo, betRepo, eventRepo, keyLock)
	overviewService := service.NewOverviewService(betRepo, ledgerRepo, accountRepo)

	// Select the odds provider once at startup
	var provider feed.Provider
	switch cfg.Odds.Provider {
	case "mock":
		provider = feed.NewMockProvider(nil, nil)
	case "theoddsapi":
		if cfg.Odds.APIKey == "" {
			log.Fatal().Msg("odds.api_key is required for the theoddsapi provider")
		}
		provider = feed.NewOddsAPIClient(cfg.Odds.APIKey)
	default:
		log.Fatal().Str("provider", cfg.Odds.Provider).Msg("Unknown odds provider")
	}

	syncer := feed.NewSyncer(provider, catalogService, cfg.Odds.SyncInterval, nil)
	catalogService.SetRefresher(syncer)
	log.Info().Str("provider", provider.Name()).Msg("Odds provider selected")

	// Background odds ticking keeps the catalog moving even with no reads.
	if cfg.Odds.TickInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Odds.TickInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := syncer.Refresh(ctx); err != nil {
						log.Warn().Err(err).Msg("Background odds refresh failed")
					}
				}
			}
		}()
	}

	// Seed the catalog
	if err := catalogService.Seed(ctx, cfg.Seed.Mode, time.Now()); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed event catalog")
	}

	// Grant the configured admin accounts
	for _, id := range cfg.Admin.IDs {
		if _, err := accountService.EnsureAccount(ctx, id, id); err != nil {
			log.Fatal().Err(err).Str("account_id", id).Msg("Failed to provision admin account")
		}
		if err := accountRepo.SetAdmin(ctx, id, true); err != nil {
			log.Fatal().Err(err).Str("account_id", id).Msg("Failed to set admin flag")
		}
	}

	srv := server.New(dbPool, accountService, catalogService, wagerService, settlementService, overviewService)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router(),
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Server is starting...")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	log.Info().Msg("Server stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create accounts table. The CHECK constraint is the last
	// line of defense against a debit driving a balance negative.
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id VARCHAR(64) PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			balance_cents BIGINT NOT NULL DEFAULT 0 CHECK (balance_cents >= 0),
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_accounts_balance ON accounts(balance_cents DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: accounts table created")

	// Migration 2: Create events table. Markets are nullable column groups.
	_, err = pool.Exec(ctx, `
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
		CREATE INDEX IF NOT EXISTS idx_events_sport_start ON events(sport, start_time ASC);
		CREATE INDEX IF NOT EXISTS idx_events_status ON events(status);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: events table created")

	// Migration 3: Create bets table.
	_, err = pool.Exec(ctx, `
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
		CREATE INDEX IF NOT EXISTS idx_bets_account_placed ON bets(account_id, placed_at DESC);
		CREATE INDEX IF NOT EXISTS idx_bets_event_open ON bets(event_id) WHERE status = 'open';
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: bets table created")

	// Migration 4: Create ledger table. Append-only; no UPDATE or DELETE
	// path exists in the code.
	_, err = pool.Exec(ctx, `
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
		CREATE INDEX IF NOT EXISTS idx_ledger_account_time ON ledger(account_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_ledger_type_time ON ledger(type, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 4: ledger table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
