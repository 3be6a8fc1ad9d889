package feed

import (
	"context"
	"time"

	"sportsbook/internal/model"
)

// MinimalSeed returns a single predictable event, enough to place and
// settle a bet end to end.
func MinimalSeed(now time.Time) []*model.Event {
	return []*model.Event{
		{
			ID:        "test-001",
			Sport:     model.SportNFL,
			HomeTeam:  "Home Team",
			AwayTeam:  "Away Team",
			StartTime: now.Add(24 * time.Hour).Truncate(time.Minute),
			Status:    model.EventScheduled,
			Source:    model.SourceManual,
			Odds: model.EventOdds{
				Moneyline: &model.MoneylineOdds{Home: -110, Away: -110},
				Spread:    &model.SpreadOdds{HomeLine: -1.5, HomeOdds: -110, AwayLine: 1.5, AwayOdds: -110},
				Total:     &model.TotalOdds{Line: 42.5, OverOdds: -110, UnderOdds: -110},
			},
		},
	}
}

// MockSeed returns the full mock slate with unticked odds.
func MockSeed(now time.Time) []*model.Event {
	p := NewMockProvider(func() time.Time { return now }, nil)
	var events []*model.Event
	for _, sport := range model.Sports() {
		slate, _ := p.FetchEvents(context.Background(), sport)
		events = append(events, slate...)
	}
	return events
}
