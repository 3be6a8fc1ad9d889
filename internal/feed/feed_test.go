package feed

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportsbook/internal/model"
)

type fakeProvider struct {
	fetches int
	events  []*model.Event
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) FetchEvents(_ context.Context, sport string) ([]*model.Event, error) {
	p.fetches++
	var out []*model.Event
	for _, e := range p.events {
		if e.Sport == sport {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeStore struct {
	stored []*model.Event
}

func (s *fakeStore) UpsertFromFeed(_ context.Context, events []*model.Event) (int, error) {
	s.stored = append(s.stored, events...)
	return len(events), nil
}

func TestSyncerThrottlesByInterval(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	provider := &fakeProvider{events: MinimalSeed(now)}
	store := &fakeStore{}
	syncer := NewSyncer(provider, store, 10*time.Second, clock)

	ctx := context.Background()

	// First call syncs every sport.
	require.NoError(t, syncer.RefreshIfStale(ctx))
	assert.Equal(t, len(model.Sports()), provider.fetches)
	assert.Len(t, store.stored, 1)

	// Within the interval nothing happens.
	now = now.Add(5 * time.Second)
	require.NoError(t, syncer.RefreshIfStale(ctx))
	assert.Equal(t, len(model.Sports()), provider.fetches)

	// Past the interval it syncs again.
	now = now.Add(6 * time.Second)
	require.NoError(t, syncer.RefreshIfStale(ctx))
	assert.Equal(t, 2*len(model.Sports()), provider.fetches)
}

func TestSyncerRefreshIgnoresThrottle(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	provider := &fakeProvider{}
	syncer := NewSyncer(provider, &fakeStore{}, time.Hour, func() time.Time { return now })

	ctx := context.Background()
	require.NoError(t, syncer.Refresh(ctx))
	require.NoError(t, syncer.Refresh(ctx))
	assert.Equal(t, 2*len(model.Sports()), provider.fetches)

	// But a throttled call right after sees a fresh sync.
	require.NoError(t, syncer.RefreshIfStale(ctx))
	assert.Equal(t, 2*len(model.Sports()), provider.fetches)
}

func TestManualEventIDIsStable(t *testing.T) {
	start := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	id1 := ManualEventID(model.SportNFL, "Kansas City Chiefs", "Buffalo Bills", start)
	id2 := ManualEventID(model.SportNFL, "Kansas City Chiefs", "Buffalo Bills", start)
	assert.Equal(t, id1, id2)
	assert.Contains(t, id1, "nfl-")

	// Any identity change produces a different id.
	assert.NotEqual(t, id1, ManualEventID(model.SportNFL, "Kansas City Chiefs", "Miami Dolphins", start))
	assert.NotEqual(t, id1, ManualEventID(model.SportNBA, "Kansas City Chiefs", "Buffalo Bills", start))
	assert.NotEqual(t, id1, ManualEventID(model.SportNFL, "Kansas City Chiefs", "Buffalo Bills", start.Add(time.Hour)))

	// The same instant in another zone is the same identity.
	assert.Equal(t, id1, ManualEventID(model.SportNFL, "Kansas City Chiefs", "Buffalo Bills",
		start.In(time.FixedZone("EST", -5*3600))))
}

func TestMockProviderStableIDs(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewMockProvider(func() time.Time { return now }, rand.New(rand.NewSource(1)))

	ctx := context.Background()
	first, err := p.FetchEvents(ctx, model.SportNFL)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := p.FetchEvents(ctx, model.SportNFL)
	require.NoError(t, err)
	require.Len(t, second, len(first))

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, model.SourceMock, first[i].Source)
		assert.Equal(t, model.EventScheduled, first[i].Status)
		assert.True(t, first[i].Odds.HasAnyMarket())
	}
}

func TestTickOddsStaysInBand(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := model.EventOdds{
		Moneyline: &model.MoneylineOdds{Home: -110, Away: -110},
		Spread:    &model.SpreadOdds{HomeLine: -2.5, HomeOdds: -110, AwayLine: 2.5, AwayOdds: -110},
		Total:     &model.TotalOdds{Line: 47.5, OverOdds: -110, UnderOdds: -110},
	}

	checkBand := func(odds int64) {
		mag := odds
		if mag < 0 {
			mag = -mag
		}
		assert.GreaterOrEqual(t, mag, int64(100))
		assert.LessOrEqual(t, mag, int64(500))
	}

	odds := base
	for i := 0; i < 1000; i++ {
		odds = TickOdds(odds, rng)
		checkBand(odds.Moneyline.Home)
		checkBand(odds.Moneyline.Away)
		checkBand(odds.Spread.HomeOdds)
		checkBand(odds.Spread.AwayOdds)
		checkBand(odds.Total.OverOdds)
		checkBand(odds.Total.UnderOdds)

		// Spread lines stay mirrored.
		assert.Equal(t, odds.Spread.HomeLine, -odds.Spread.AwayLine)
	}

	// The input is never mutated.
	assert.Equal(t, int64(-110), base.Moneyline.Home)
	assert.Equal(t, -2.5, base.Spread.HomeLine)
}

func TestTickOddsDeterministicForSeed(t *testing.T) {
	base := model.EventOdds{
		Moneyline: &model.MoneylineOdds{Home: -135, Away: 115},
		Total:     &model.TotalOdds{Line: 47.5, OverOdds: -110, UnderOdds: -110},
	}

	a := TickOdds(base, rand.New(rand.NewSource(7)))
	b := TickOdds(base, rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
}
