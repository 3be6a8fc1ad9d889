package model

import (
	"errors"
	"time"
)

// Bet markets.
const (
	MarketMoneyline = "moneyline"
	MarketSpread    = "spread"
	MarketTotal     = "total"
)

// Bet sides. Moneyline and spread admit home/away; total admits over/under.
const (
	SideHome  = "home"
	SideAway  = "away"
	SideOver  = "over"
	SideUnder = "under"
)

// Bet statuses. A bet is created open and transitions to settled exactly
// once; settlement is terminal.
const (
	BetOpen    = "open"
	BetSettled = "settled"
)

// Bet results.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultPush = "push"
)

// ErrInvalidPick is returned when a market/side/line combination does not
// form a valid pick.
var ErrInvalidPick = errors.New("invalid market/side combination")

// Pick is the wager selection captured at placement time. It is a sealed
// sum type: exactly MoneylinePick, SpreadPick, and TotalPick implement it,
// so grading can type-switch exhaustively.
type Pick interface {
	// Market returns the market this pick belongs to.
	Market() string
	// Side returns the picked side.
	Side() string
	// Line returns the captured line and whether the pick carries one.
	Line() (float64, bool)
}

// MoneylinePick is a straight winner pick.
type MoneylinePick struct {
	Team string // home or away
}

func (p MoneylinePick) Market() string        { return MarketMoneyline }
func (p MoneylinePick) Side() string          { return p.Team }
func (p MoneylinePick) Line() (float64, bool) { return 0, false }

// SpreadPick is a point-spread pick. PointLine is the line captured at
// placement and is applied to the picked side's score when grading.
type SpreadPick struct {
	Team      string // home or away
	PointLine float64
}

func (p SpreadPick) Market() string        { return MarketSpread }
func (p SpreadPick) Side() string          { return p.Team }
func (p SpreadPick) Line() (float64, bool) { return p.PointLine, true }

// TotalPick is an over/under pick on the combined final score.
type TotalPick struct {
	OverUnder string // over or under
	PointLine float64
}

func (p TotalPick) Market() string        { return MarketTotal }
func (p TotalPick) Side() string          { return p.OverUnder }
func (p TotalPick) Line() (float64, bool) { return p.PointLine, true }

// NewPick builds a Pick from its stored parts, validating that the side is
// legal for the market. line is ignored for moneyline picks.
func NewPick(market, side string, line float64) (Pick, error) {
	switch market {
	case MarketMoneyline:
		if side != SideHome && side != SideAway {
			return nil, ErrInvalidPick
		}
		return MoneylinePick{Team: side}, nil
	case MarketSpread:
		if side != SideHome && side != SideAway {
			return nil, ErrInvalidPick
		}
		return SpreadPick{Team: side, PointLine: line}, nil
	case MarketTotal:
		if side != SideOver && side != SideUnder {
			return nil, ErrInvalidPick
		}
		return TotalPick{OverUnder: side, PointLine: line}, nil
	default:
		return nil, ErrInvalidPick
	}
}

// Bet represents a single wager. The sport/team/start-time fields snapshot
// the event identity at placement so the bet stays displayable even if the
// catalog copy of the event later changes.
type Bet struct {
	ID        string `db:"id"`
	AccountID string `db:"account_id"`

	EventID        string    `db:"event_id"`
	Sport          string    `db:"sport"`
	HomeTeam       string    `db:"home_team"`
	AwayTeam       string    `db:"away_team"`
	EventStartTime time.Time `db:"event_start_time"`

	Pick         Pick  `db:"-"`
	AmericanOdds int64 `db:"american_odds"`
	StakeCents   int64 `db:"stake_cents"`

	Status      string     `db:"status"`
	Result      *string    `db:"result"`
	ProfitCents *int64     `db:"profit_cents"`
	PayoutCents *int64     `db:"payout_cents"`
	PlacedAt    time.Time  `db:"placed_at"`
	SettledAt   *time.Time `db:"settled_at"`
}
