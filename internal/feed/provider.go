// Package feed supplies the event catalog with upstream odds: a real
// provider backed by The Odds API, a mock provider for local play, and a
// throttled syncer that pulls whichever one was chosen at startup.
package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"sportsbook/internal/model"
)

// Provider fetches the current slate of events for one sport. The
// implementation is chosen once at startup; nothing downstream inspects
// which one is running.
type Provider interface {
	Name() string
	FetchEvents(ctx context.Context, sport string) ([]*model.Event, error)
}

// EventStore receives fetched events. Satisfied by the catalog service.
type EventStore interface {
	UpsertFromFeed(ctx context.Context, events []*model.Event) (int, error)
}

// Syncer pulls all sports from the provider at most once per interval.
// The clock is injected so tests can drive the throttle directly.
type Syncer struct {
	provider Provider
	store    EventStore
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastSync time.Time
}

// NewSyncer creates a Syncer. now may be nil to use the wall clock.
func NewSyncer(provider Provider, store EventStore, interval time.Duration, now func() time.Time) *Syncer {
	if now == nil {
		now = time.Now
	}
	return &Syncer{
		provider: provider,
		store:    store,
		interval: interval,
		now:      now,
	}
}

// RefreshIfStale fetches and stores fresh events if the last sync is older
// than the interval. Concurrent callers serialize; the ones that arrive
// while a sync runs see it as fresh and return immediately.
func (s *Syncer) RefreshIfStale(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.now().Sub(s.lastSync) < s.interval {
		return nil
	}

	if err := s.refresh(ctx); err != nil {
		return err
	}
	s.lastSync = s.now()
	return nil
}

// Refresh fetches and stores fresh events unconditionally.
func (s *Syncer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return err
	}
	s.lastSync = s.now()
	return nil
}

func (s *Syncer) refresh(ctx context.Context) error {
	var total int
	for _, sport := range model.Sports() {
		events, err := s.provider.FetchEvents(ctx, sport)
		if err != nil {
			return fmt.Errorf("provider %s failed for %s: %w", s.provider.Name(), sport, err)
		}
		stored, err := s.store.UpsertFromFeed(ctx, events)
		if err != nil {
			return err
		}
		total += stored
	}

	log.Debug().
		Str("provider", s.provider.Name()).
		Int("events", total).
		Msg("odds feed refreshed")
	return nil
}
