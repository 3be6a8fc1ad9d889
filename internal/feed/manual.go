package feed

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"sportsbook/internal/model"
)

// ManualEventID derives a stable id from the event's identity, so an admin
// posting the same matchup twice updates one event instead of duplicating
// it.
func ManualEventID(sport, homeTeam, awayTeam string, startTime time.Time) string {
	h := sha1.Sum([]byte(sport + "|" + homeTeam + "|" + awayTeam + "|" + startTime.UTC().Format(time.RFC3339)))
	return strings.ToLower(sport) + "-" + hex.EncodeToString(h[:5])
}

// BuildManualEvent assembles an admin-entered event with a stable id.
func BuildManualEvent(sport, homeTeam, awayTeam string, startTime time.Time, odds model.EventOdds) *model.Event {
	return &model.Event{
		ID:        ManualEventID(sport, homeTeam, awayTeam, startTime),
		Sport:     sport,
		HomeTeam:  homeTeam,
		AwayTeam:  awayTeam,
		StartTime: startTime,
		Status:    model.EventScheduled,
		Source:    model.SourceManual,
		Odds:      odds,
	}
}
