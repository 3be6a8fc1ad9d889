package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sportsbook/internal/model"
)

// EventRepository handles sporting event persistence. Markets are stored as
// nullable column groups; a NULL group means the market is not offered.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository instance.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `
	id, sport, home_team, away_team, start_time, status, source,
	ml_home, ml_away,
	spread_home_line, spread_home_odds, spread_away_line, spread_away_odds,
	total_line, total_over_odds, total_under_odds,
	home_score, away_score, finished_at,
	created_at, updated_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e model.Event

		mlHome, mlAway *int64

		spreadHomeLine, spreadAwayLine *float64
		spreadHomeOdds, spreadAwayOdds *int64

		totalLine            *float64
		overOdds, underOdds  *int64
		homeScore, awayScore *int
		finishedAt           *time.Time
	)
	err := row.Scan(
		&e.ID, &e.Sport, &e.HomeTeam, &e.AwayTeam, &e.StartTime, &e.Status, &e.Source,
		&mlHome, &mlAway,
		&spreadHomeLine, &spreadHomeOdds, &spreadAwayLine, &spreadAwayOdds,
		&totalLine, &overOdds, &underOdds,
		&homeScore, &awayScore, &finishedAt,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if mlHome != nil && mlAway != nil {
		e.Odds.Moneyline = &model.MoneylineOdds{Home: *mlHome, Away: *mlAway}
	}
	if spreadHomeLine != nil && spreadHomeOdds != nil && spreadAwayLine != nil && spreadAwayOdds != nil {
		e.Odds.Spread = &model.SpreadOdds{
			HomeLine: *spreadHomeLine,
			HomeOdds: *spreadHomeOdds,
			AwayLine: *spreadAwayLine,
			AwayOdds: *spreadAwayOdds,
		}
	}
	if totalLine != nil && overOdds != nil && underOdds != nil {
		e.Odds.Total = &model.TotalOdds{Line: *totalLine, OverOdds: *overOdds, UnderOdds: *underOdds}
	}
	if homeScore != nil && awayScore != nil && finishedAt != nil {
		e.Result = &model.EventResult{
			HomeScore:  *homeScore,
			AwayScore:  *awayScore,
			FinishedAt: *finishedAt,
		}
	}
	return &e, nil
}

// GetByID retrieves an event by ID.
// Returns ErrEventNotFound if the event does not exist.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	const query = `SELECT` + eventColumns + ` FROM events WHERE id = $1`

	e, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// List retrieves events, optionally filtered by sport, scheduled first and
// soonest first within each status.
func (r *EventRepository) List(ctx context.Context, sport string) ([]*model.Event, error) {
	query := `SELECT` + eventColumns + ` FROM events`
	args := []any{}
	if sport != "" {
		query += ` WHERE sport = $1`
		args = append(args, sport)
	}
	query += ` ORDER BY status DESC, start_time ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// Upsert inserts the event or refreshes a stored scheduled copy. Finished
// events are immutable through this path: the update is guarded on
// status = 'scheduled' and the returned bool reports whether the row was
// written. Result fields are never touched here; only Finalize sets them.
func (r *EventRepository) Upsert(ctx context.Context, e *model.Event) (bool, error) {
	const query = `
		INSERT INTO events (
			id, sport, home_team, away_team, start_time, status, source,
			ml_home, ml_away,
			spread_home_line, spread_home_odds, spread_away_line, spread_away_odds,
			total_line, total_over_odds, total_under_odds,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, 'scheduled', $6,
			$7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			sport = EXCLUDED.sport,
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			start_time = EXCLUDED.start_time,
			source = EXCLUDED.source,
			ml_home = EXCLUDED.ml_home,
			ml_away = EXCLUDED.ml_away,
			spread_home_line = EXCLUDED.spread_home_line,
			spread_home_odds = EXCLUDED.spread_home_odds,
			spread_away_line = EXCLUDED.spread_away_line,
			spread_away_odds = EXCLUDED.spread_away_odds,
			total_line = EXCLUDED.total_line,
			total_over_odds = EXCLUDED.total_over_odds,
			total_under_odds = EXCLUDED.total_under_odds,
			updated_at = NOW()
		WHERE events.status = 'scheduled'
	`

	var (
		mlHome, mlAway                 *int64
		spreadHomeLine, spreadAwayLine *float64
		spreadHomeOdds, spreadAwayOdds *int64
		totalLine                      *float64
		overOdds, underOdds            *int64
	)
	if m := e.Odds.Moneyline; m != nil {
		mlHome, mlAway = &m.Home, &m.Away
	}
	if s := e.Odds.Spread; s != nil {
		spreadHomeLine, spreadHomeOdds = &s.HomeLine, &s.HomeOdds
		spreadAwayLine, spreadAwayOdds = &s.AwayLine, &s.AwayOdds
	}
	if t := e.Odds.Total; t != nil {
		totalLine, overOdds, underOdds = &t.Line, &t.OverOdds, &t.UnderOdds
	}

	tag, err := r.pool.Exec(ctx, query,
		e.ID, e.Sport, e.HomeTeam, e.AwayTeam, e.StartTime, e.Source,
		mlHome, mlAway,
		spreadHomeLine, spreadHomeOdds, spreadAwayLine, spreadAwayOdds,
		totalLine, overOdds, underOdds,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Finalize transitions a scheduled event to finished, recording the final
// score. The transition is checked-and-set on status = 'scheduled' so a
// second call cannot re-apply a result. Returns ErrEventNotFound for an
// unknown id and ErrEventAlreadyFinished when the transition already
// happened.
func (r *EventRepository) Finalize(ctx context.Context, id string, homeScore, awayScore int) (*model.Event, error) {
	const query = `
		UPDATE events
		SET status = 'finished', home_score = $2, away_score = $3, finished_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'scheduled'
		RETURNING` + eventColumns

	e, err := scanEvent(r.pool.QueryRow(ctx, query, id, homeScore, awayScore))
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, ErrEventNotFound) {
		return nil, fmt.Errorf("failed to finalize event: %w", err)
	}

	// Zero rows: either the event is unknown or it was already finished.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrEventAlreadyFinished
}
