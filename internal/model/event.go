package model

import "time"

// Sport keys supported by the catalog.
const (
	SportNFL = "NFL"
	SportNBA = "NBA"
	SportMLB = "MLB"
	SportUFC = "UFC"
	SportEPL = "EPL"
)

// Sports lists all supported sport keys.
func Sports() []string {
	return []string{SportNFL, SportNBA, SportMLB, SportUFC, SportEPL}
}

// ValidSport reports whether s is a supported sport key.
func ValidSport(s string) bool {
	switch s {
	case SportNFL, SportNBA, SportMLB, SportUFC, SportEPL:
		return true
	}
	return false
}

// Event lifecycle statuses. The scheduled -> finished transition is one-way.
const (
	EventScheduled = "scheduled"
	EventFinished  = "finished"
)

// Event sources.
const (
	SourceMock   = "mock"
	SourceManual = "manual"
	SourceAPI    = "api"
)

// MoneylineOdds holds the straight-winner prices for both teams.
type MoneylineOdds struct {
	Home int64 `json:"home"`
	Away int64 `json:"away"`
}

// SpreadOdds holds the point-spread lines and prices for both teams.
type SpreadOdds struct {
	HomeLine float64 `json:"homeLine"`
	HomeOdds int64   `json:"homeOdds"`
	AwayLine float64 `json:"awayLine"`
	AwayOdds int64   `json:"awayOdds"`
}

// TotalOdds holds the over/under line and prices.
type TotalOdds struct {
	Line      float64 `json:"line"`
	OverOdds  int64   `json:"overOdds"`
	UnderOdds int64   `json:"underOdds"`
}

// EventOdds holds the posted markets for an event. Each market is
// independently optional; a nil market cannot be bet on.
type EventOdds struct {
	Moneyline *MoneylineOdds `json:"moneyline,omitempty"`
	Spread    *SpreadOdds    `json:"spread,omitempty"`
	Total     *TotalOdds     `json:"total,omitempty"`
}

// HasAnyMarket reports whether at least one market is populated.
func (o EventOdds) HasAnyMarket() bool {
	return o.Moneyline != nil || o.Spread != nil || o.Total != nil
}

// EventResult is the final score recorded when an event is finalized.
type EventResult struct {
	HomeScore  int       `json:"homeScore"`
	AwayScore  int       `json:"awayScore"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Event represents a sporting event with its posted odds and lifecycle
// status. Once finished, odds are immutable: graded bets depend on them.
type Event struct {
	ID        string       `db:"id" json:"id"`
	Sport     string       `db:"sport" json:"sport"`
	HomeTeam  string       `db:"home_team" json:"homeTeam"`
	AwayTeam  string       `db:"away_team" json:"awayTeam"`
	StartTime time.Time    `db:"start_time" json:"startTime"`
	Status    string       `db:"status" json:"status"`
	Source    string       `db:"source" json:"source"`
	Odds      EventOdds    `db:"-" json:"odds"`
	Result    *EventResult `db:"-" json:"result,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}

// Finished reports whether the event has a recorded final score.
func (e *Event) Finished() bool {
	return e.Status == EventFinished && e.Result != nil
}
