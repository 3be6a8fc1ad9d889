package feed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"sportsbook/internal/model"
)

type mockMatchup struct {
	sport    string
	homeTeam string
	awayTeam string
	hoursOut int
	odds     model.EventOdds
}

var mockSlate = []mockMatchup{
	{model.SportNFL, "Kansas City Chiefs", "Buffalo Bills", 26, model.EventOdds{
		Moneyline: &model.MoneylineOdds{Home: -135, Away: 115},
		Spread:    &model.SpreadOdds{HomeLine: -2.5, HomeOdds: -110, AwayLine: 2.5, AwayOdds: -110},
		Total:     &model.TotalOdds{Line: 47.5, OverOdds: -110, UnderOdds: -110},
	}},
	{model.SportNFL, "Philadelphia Eagles", "Dallas Cowboys", 50, model.EventOdds{
		Moneyline: &model.MoneylineOdds{Home: -180, Away: 155},
		Spread:    &model.SpreadOdds{HomeLine: -4, HomeOdds: -108, AwayLine: 4, AwayOdds: -112},
		Total:     &model.TotalOdds{Line: 44.5, OverOdds: -105, UnderOdds: -115},
	}},
	{model.SportNBA, "Boston Celtics", "Los Angeles Lakers", 8, model.EventOdds{
		Moneyline: &model.MoneylineOdds{Home: -220, Away: 185},
		Spread:    &model.SpreadOdds{HomeLine: -5.5, HomeOdds: -110, AwayLine: 5.5, AwayOdds: -110},
		Total:     &model.TotalOdds{Line: 221.5, OverOdds: -110, UnderOdds: -110},
	}},
	{model.SportNBA, "Denver Nuggets", "Milwaukee Bucks", 32, model.EventOdds{
		Moneyline: &model.MoneylineOdds{Home: -150, Away: 130},
		Spread:    &model.SpreadOdds{HomeLine: -3.5, HomeOdds: -112, AwayLine: 3.5, AwayOdds: -108},
		Total:     &model.TotalOdds{Line: 228, OverOdds: -110, UnderOdds: -110},
	}},
	{model.SportMLB, "New York Yankees", "Los Angeles Dodgers", 14, model.EventOdds{
		Moneyline: &model.MoneylineOdds{Home: 110, Away: -130},
		Total:     &model.TotalOdds{Line: 8.5, OverOdds: -115, UnderOdds: -105},
	}},
	{model.SportUFC, "Alex Pereira", "Magomed Ankalaev", 74, model.EventOdds{
		Moneyline: &model.MoneylineOdds{Home: -125, Away: 105},
	}},
	{model.SportEPL, "Arsenal", "Liverpool", 20, model.EventOdds{
		Moneyline: &model.MoneylineOdds{Home: 140, Away: 190},
		Total:     &model.TotalOdds{Line: 2.5, OverOdds: -130, UnderOdds: 110},
	}},
	{model.SportEPL, "Manchester City", "Chelsea", 44, model.EventOdds{
		Moneyline: &model.MoneylineOdds{Home: -175, Away: 425},
		Total:     &model.TotalOdds{Line: 3.5, OverOdds: 120, UnderOdds: -140},
	}},
}

// MockProvider serves a fixed slate of matchups with odds that drift a
// little on every fetch, enough to make the catalog feel alive without any
// upstream dependency.
type MockProvider struct {
	now func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockProvider creates a MockProvider. now and rng may be nil for the
// wall clock and a time-seeded generator.
func NewMockProvider(now func() time.Time, rng *rand.Rand) *MockProvider {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &MockProvider{now: now, rng: rng}
}

func (p *MockProvider) Name() string { return "mock" }

// FetchEvents returns the slate for one sport with freshly ticked odds.
// Event ids are stable across fetches so repeated syncs update in place.
func (p *MockProvider) FetchEvents(_ context.Context, sport string) ([]*model.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var events []*model.Event
	n := 0
	for _, m := range mockSlate {
		if m.sport != sport {
			continue
		}
		n++
		events = append(events, &model.Event{
			ID:        fmt.Sprintf("mock-%s-%03d", strings.ToLower(sport), n),
			Sport:     m.sport,
			HomeTeam:  m.homeTeam,
			AwayTeam:  m.awayTeam,
			StartTime: p.now().Add(time.Duration(m.hoursOut) * time.Hour).Truncate(time.Minute),
			Status:    model.EventScheduled,
			Source:    model.SourceMock,
			Odds:      TickOdds(m.odds, p.rng),
		})
	}
	return events, nil
}

// TickOdds returns a copy of odds with prices jittered and lines
// occasionally moved by half a point. Prices stay in the conventional
// american bands, magnitude 100 to 500.
func TickOdds(odds model.EventOdds, rng *rand.Rand) model.EventOdds {
	var out model.EventOdds
	if ml := odds.Moneyline; ml != nil {
		out.Moneyline = &model.MoneylineOdds{
			Home: tickAmerican(ml.Home, rng),
			Away: tickAmerican(ml.Away, rng),
		}
	}
	if sp := odds.Spread; sp != nil {
		homeLine := tickLine(sp.HomeLine, rng)
		out.Spread = &model.SpreadOdds{
			HomeLine: homeLine,
			HomeOdds: tickAmerican(sp.HomeOdds, rng),
			AwayLine: -homeLine,
			AwayOdds: tickAmerican(sp.AwayOdds, rng),
		}
	}
	if tot := odds.Total; tot != nil {
		out.Total = &model.TotalOdds{
			Line:      tickLine(tot.Line, rng),
			OverOdds:  tickAmerican(tot.OverOdds, rng),
			UnderOdds: tickAmerican(tot.UnderOdds, rng),
		}
	}
	return out
}

func tickAmerican(odds int64, rng *rand.Rand) int64 {
	odds += int64(rng.Intn(41) - 20)
	switch {
	case odds >= 0 && odds < 100:
		odds = 100
	case odds < 0 && odds > -100:
		odds = -100
	case odds > 500:
		odds = 500
	case odds < -500:
		odds = -500
	}
	return odds
}

func tickLine(line float64, rng *rand.Rand) float64 {
	if rng.Float64() < 0.15 {
		if rng.Intn(2) == 0 {
			return line + 0.5
		}
		return line - 0.5
	}
	return line
}
