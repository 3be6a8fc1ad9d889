package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sportsbook/internal/feed"
	"sportsbook/internal/model"
)

type createEventRequest struct {
	ID        string          `json:"id"` // optional, derived from the matchup when empty
	Sport     string          `json:"sport"`
	HomeTeam  string          `json:"homeTeam"`
	AwayTeam  string          `json:"awayTeam"`
	StartTime time.Time       `json:"startTime"`
	Odds      model.EventOdds `json:"odds"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	event := feed.BuildManualEvent(req.Sport, req.HomeTeam, req.AwayTeam, req.StartTime, req.Odds)
	if req.ID != "" {
		event.ID = req.ID
	}

	if err := s.catalog.Upsert(r.Context(), event); err != nil {
		respondServiceError(w, err)
		return
	}

	stored, err := s.catalog.Get(r.Context(), event.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, stored)
}

type finalizeEventRequest struct {
	HomeScore int `json:"homeScore"`
	AwayScore int `json:"awayScore"`
}

func (s *Server) handleFinalizeEvent(w http.ResponseWriter, r *http.Request) {
	var req finalizeEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	event, err := s.catalog.Finalize(r.Context(), chi.URLParam(r, "eventID"), req.HomeScore, req.AwayScore)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

func (s *Server) handleSettleEvent(w http.ResponseWriter, r *http.Request) {
	result, err := s.settlement.SettleEvent(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"eventId":        result.EventID,
		"settled":        result.Settled,
		"skipped":        result.Skipped,
		"wins":           result.Wins,
		"losses":         result.Losses,
		"pushes":         result.Pushes,
		"totalPaidCents": result.TotalPaidCents,
		"failedBetIds":   result.FailedBetIDs,
		"bets":           toBetResponses(result.Bets),
	})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.overview.Compute(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

func (s *Server) handleAllBets(w http.ResponseWriter, r *http.Request) {
	bets, err := s.wagers.ListAllBets(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"bets": toBetResponses(bets)})
}
