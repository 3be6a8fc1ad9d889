package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sportsbook/internal/model"
	"sportsbook/internal/money"
)

// betResponse flattens the pick into market/side/line for the wire.
type betResponse struct {
	ID             string     `json:"id"`
	EventID        string     `json:"eventId"`
	Sport          string     `json:"sport"`
	HomeTeam       string     `json:"homeTeam"`
	AwayTeam       string     `json:"awayTeam"`
	EventStartTime time.Time  `json:"eventStartTime"`
	Market         string     `json:"market"`
	Side           string     `json:"side"`
	Line           *float64   `json:"line,omitempty"`
	AmericanOdds   int64      `json:"americanOdds"`
	StakeCents     int64      `json:"stakeCents"`
	Stake          string     `json:"stake"`
	Status         string     `json:"status"`
	Result         *string    `json:"result,omitempty"`
	ProfitCents    *int64     `json:"profitCents,omitempty"`
	PayoutCents    *int64     `json:"payoutCents,omitempty"`
	PlacedAt       time.Time  `json:"placedAt"`
	SettledAt      *time.Time `json:"settledAt,omitempty"`
}

func toBetResponse(b *model.Bet) betResponse {
	resp := betResponse{
		ID:             b.ID,
		EventID:        b.EventID,
		Sport:          b.Sport,
		HomeTeam:       b.HomeTeam,
		AwayTeam:       b.AwayTeam,
		EventStartTime: b.EventStartTime,
		Market:         b.Pick.Market(),
		Side:           b.Pick.Side(),
		AmericanOdds:   b.AmericanOdds,
		StakeCents:     b.StakeCents,
		Stake:          money.FormatUSD(b.StakeCents),
		Status:         b.Status,
		Result:         b.Result,
		ProfitCents:    b.ProfitCents,
		PayoutCents:    b.PayoutCents,
		PlacedAt:       b.PlacedAt,
		SettledAt:      b.SettledAt,
	}
	if line, ok := b.Pick.Line(); ok {
		resp.Line = &line
	}
	return resp
}

func toBetResponses(bets []*model.Bet) []betResponse {
	out := make([]betResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, toBetResponse(b))
	}
	return out
}

type placeBetRequest struct {
	EventID    string `json:"eventId"`
	Market     string `json:"market"`
	Side       string `json:"side"`
	StakeCents int64  `json:"stakeCents"`
	Stake      string `json:"stake"` // display form, used when stakeCents is absent
}

func (s *Server) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	var req placeBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.EventID == "" {
		respondBadRequest(w, "eventId is required")
		return
	}

	stakeCents := req.StakeCents
	if stakeCents == 0 && req.Stake != "" {
		stakeCents = money.ParseCurrencyToCents(req.Stake)
	}

	account := accountFromContext(r.Context())
	placed, err := s.wagers.PlaceBet(r.Context(), account.ID, req.EventID, req.Market, req.Side, stakeCents)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"bet":                  toBetResponse(placed.Bet),
		"balanceCents":         placed.BalanceCents,
		"balance":              money.FormatUSD(placed.BalanceCents),
		"potentialProfitCents": placed.PotentialProfitCents,
		"potentialPayoutCents": placed.PotentialPayoutCents,
		"potentialPayout":      money.FormatUSD(placed.PotentialPayoutCents),
	})
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request, status string) {
	account := accountFromContext(r.Context())
	bets, err := s.wagers.ListBets(r.Context(), account.ID, status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"bets": toBetResponses(bets)})
}

func (s *Server) handleListBets(w http.ResponseWriter, r *http.Request) {
	s.listBets(w, r, "")
}

func (s *Server) handleListOpenBets(w http.ResponseWriter, r *http.Request) {
	s.listBets(w, r, model.BetOpen)
}

func (s *Server) handleListSettledBets(w http.ResponseWriter, r *http.Request) {
	s.listBets(w, r, model.BetSettled)
}

func (s *Server) handleGetBet(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())
	bet, err := s.wagers.GetBet(r.Context(), account.ID, chi.URLParam(r, "betID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toBetResponse(bet))
}
