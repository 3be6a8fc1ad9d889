package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"sportsbook/internal/model"
)

const oddsAPIBaseURL = "https://api.the-odds-api.com/v4"

// oddsAPISportKeys maps catalog sports to The Odds API sport keys.
var oddsAPISportKeys = map[string]string{
	model.SportNFL: "americanfootball_nfl",
	model.SportNBA: "basketball_nba",
	model.SportMLB: "baseball_mlb",
	model.SportUFC: "mma_mixed_martial_arts",
	model.SportEPL: "soccer_epl",
}

// OddsAPIClient fetches live odds from The Odds API v4.
type OddsAPIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOddsAPIClient creates a client with the given API key.
func NewOddsAPIClient(apiKey string) *OddsAPIClient {
	return &OddsAPIClient{
		apiKey:  apiKey,
		baseURL: oddsAPIBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *OddsAPIClient) Name() string { return "the-odds-api" }

type oddsAPIOutcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point"`
}

type oddsAPIMarket struct {
	Key      string           `json:"key"`
	Outcomes []oddsAPIOutcome `json:"outcomes"`
}

type oddsAPIBookmaker struct {
	Key     string          `json:"key"`
	Markets []oddsAPIMarket `json:"markets"`
}

type oddsAPIEvent struct {
	ID           string             `json:"id"`
	CommenceTime time.Time          `json:"commence_time"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	Bookmakers   []oddsAPIBookmaker `json:"bookmakers"`
}

// FetchEvents pulls upcoming events with h2h, spread, and total markets for
// one sport. Odds come from the first bookmaker on each event; events with
// no bookmaker or no usable market are dropped.
func (c *OddsAPIClient) FetchEvents(ctx context.Context, sport string) ([]*model.Event, error) {
	sportKey, ok := oddsAPISportKeys[sport]
	if !ok {
		return nil, fmt.Errorf("no odds api key for sport %q", sport)
	}

	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("regions", "us")
	q.Set("markets", "h2h,spreads,totals")
	q.Set("oddsFormat", "american")
	reqURL := fmt.Sprintf("%s/sports/%s/odds?%s", c.baseURL, sportKey, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("odds api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("odds api returned status %d", resp.StatusCode)
	}

	var raw []oddsAPIEvent
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode odds api response: %w", err)
	}

	var events []*model.Event
	for _, e := range raw {
		if len(e.Bookmakers) == 0 {
			continue
		}
		odds := extractOdds(e.Bookmakers[0].Markets, e.HomeTeam, e.AwayTeam)
		if !odds.HasAnyMarket() {
			continue
		}
		events = append(events, &model.Event{
			ID:        "api-" + e.ID,
			Sport:     sport,
			HomeTeam:  e.HomeTeam,
			AwayTeam:  e.AwayTeam,
			StartTime: e.CommenceTime,
			Status:    model.EventScheduled,
			Source:    model.SourceAPI,
			Odds:      odds,
		})
	}
	return events, nil
}

func extractOdds(markets []oddsAPIMarket, homeTeam, awayTeam string) model.EventOdds {
	var odds model.EventOdds
	for _, m := range markets {
		switch m.Key {
		case "h2h":
			home, hok := findOutcome(m.Outcomes, homeTeam)
			away, aok := findOutcome(m.Outcomes, awayTeam)
			if hok && aok {
				odds.Moneyline = &model.MoneylineOdds{
					Home: americanPrice(home.Price),
					Away: americanPrice(away.Price),
				}
			}
		case "spreads":
			home, hok := findOutcome(m.Outcomes, homeTeam)
			away, aok := findOutcome(m.Outcomes, awayTeam)
			if hok && aok && home.Point != nil && away.Point != nil {
				odds.Spread = &model.SpreadOdds{
					HomeLine: *home.Point,
					HomeOdds: americanPrice(home.Price),
					AwayLine: *away.Point,
					AwayOdds: americanPrice(away.Price),
				}
			}
		case "totals":
			over, ook := findOutcome(m.Outcomes, "Over")
			under, uok := findOutcome(m.Outcomes, "Under")
			if ook && uok && over.Point != nil {
				odds.Total = &model.TotalOdds{
					Line:      *over.Point,
					OverOdds:  americanPrice(over.Price),
					UnderOdds: americanPrice(under.Price),
				}
			}
		}
	}
	return odds
}

func findOutcome(outcomes []oddsAPIOutcome, name string) (oddsAPIOutcome, bool) {
	for _, o := range outcomes {
		if o.Name == name {
			return o, true
		}
	}
	return oddsAPIOutcome{}, false
}

// americanPrice rounds the wire price to whole american odds, falling back
// to the conventional -110 when the book omitted one.
func americanPrice(price float64) int64 {
	if price == 0 {
		return -110
	}
	return int64(math.Round(price))
}
