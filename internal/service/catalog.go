package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"sportsbook/internal/feed"
	"sportsbook/internal/model"
	"sportsbook/internal/repository"
)

// OddsCache is a read-through cache for event listings. Implementations
// must treat the database as the source of truth; a miss or a cache error
// just falls back to the repository.
type OddsCache interface {
	GetEvents(ctx context.Context, sport string) ([]*model.Event, bool)
	SetEvents(ctx context.Context, sport string, events []*model.Event)
	Invalidate(ctx context.Context)
}

// Refresher pulls fresh events from the upstream odds feed. RefreshIfStale
// is throttled by the implementation, so the catalog can call it on every
// listing without hammering the provider.
type Refresher interface {
	RefreshIfStale(ctx context.Context) error
}

// CatalogService manages the event catalog: listings served through the
// odds cache, feed-driven updates, manual admin events, and finalization.
type CatalogService struct {
	events    *repository.EventRepository
	cache     OddsCache
	refresher Refresher
}

// NewCatalogService creates a new CatalogService instance. cache may be
// nil to serve listings straight from the database.
func NewCatalogService(events *repository.EventRepository, cache OddsCache) *CatalogService {
	return &CatalogService{events: events, cache: cache}
}

// SetRefresher attaches the feed refresher. The syncer needs the catalog
// to store events and the catalog needs the syncer for on-demand refresh,
// so this side is wired after construction.
func (s *CatalogService) SetRefresher(r Refresher) {
	s.refresher = r
}

// List returns events for a sport, or all sports when sport is empty.
// Scheduled events sort before finished ones. The feed is refreshed first
// if it has gone stale; a refresh failure degrades to serving whatever is
// already stored.
func (s *CatalogService) List(ctx context.Context, sport string) ([]*model.Event, error) {
	if sport != "" && !model.ValidSport(sport) {
		return nil, ErrInvalidEventPayload
	}

	if s.refresher != nil {
		if err := s.refresher.RefreshIfStale(ctx); err != nil {
			log.Warn().Err(err).Msg("odds refresh failed, serving stored events")
		}
	}

	if s.cache != nil {
		if events, ok := s.cache.GetEvents(ctx, sport); ok {
			return events, nil
		}
	}

	events, err := s.events.List(ctx, sport)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	if s.cache != nil {
		s.cache.SetEvents(ctx, sport, events)
	}
	return events, nil
}

// Get retrieves a single event.
func (s *CatalogService) Get(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// Upsert stores one event, inserting or updating by id. Finished events
// are immutable: an update aimed at one is rejected and nothing changes.
func (s *CatalogService) Upsert(ctx context.Context, event *model.Event) error {
	if err := validateEvent(event); err != nil {
		return err
	}

	applied, err := s.events.Upsert(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to upsert event: %w", err)
	}
	if !applied {
		return ErrCannotEditFinished
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return nil
}

// UpsertFromFeed stores a batch of feed events. Events that have finished
// locally are skipped rather than failing the batch; the feed has no say
// over settled results.
func (s *CatalogService) UpsertFromFeed(ctx context.Context, events []*model.Event) (int, error) {
	var stored int
	for _, event := range events {
		err := s.Upsert(ctx, event)
		if errors.Is(err, ErrCannotEditFinished) {
			continue
		}
		if err != nil {
			return stored, fmt.Errorf("failed to store feed event %s: %w", event.ID, err)
		}
		stored++
	}
	return stored, nil
}

// Finalize records the final score and closes the event to betting. It is
// one-shot: a second call fails with ErrEventAlreadyFinished and leaves
// the recorded result untouched.
func (s *CatalogService) Finalize(ctx context.Context, id string, homeScore, awayScore int) (*model.Event, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, ErrInvalidEventPayload
	}

	event, err := s.events.Finalize(ctx, id, homeScore, awayScore)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return nil, ErrEventNotFound
		case errors.Is(err, repository.ErrEventAlreadyFinished):
			return nil, ErrEventAlreadyFinished
		}
		return nil, fmt.Errorf("failed to finalize event: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}

	log.Info().
		Str("event_id", id).
		Int("home_score", homeScore).
		Int("away_score", awayScore).
		Msg("event finalized")

	return event, nil
}

// Seed loads starter events per the configured mode: "none" skips,
// "minimal" stores one predictable event, "mock" stores the full mock
// slate. Seeding goes through the feed path so finished events survive
// restarts untouched.
func (s *CatalogService) Seed(ctx context.Context, mode string, now time.Time) error {
	var events []*model.Event
	switch mode {
	case "", "none":
		return nil
	case "minimal":
		events = feed.MinimalSeed(now)
	case "mock":
		events = feed.MockSeed(now)
	default:
		return fmt.Errorf("unknown seed mode %q", mode)
	}

	stored, err := s.UpsertFromFeed(ctx, events)
	if err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}
	log.Info().Str("mode", mode).Int("events", stored).Msg("catalog seeded")
	return nil
}

func validateEvent(e *model.Event) error {
	if e.ID == "" || e.HomeTeam == "" || e.AwayTeam == "" || e.StartTime.IsZero() {
		return ErrInvalidEventPayload
	}
	if !model.ValidSport(e.Sport) {
		return ErrInvalidEventPayload
	}
	if !e.Odds.HasAnyMarket() {
		return ErrInvalidEventPayload
	}
	return nil
}
