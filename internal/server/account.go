package server

import (
	"net/http"
	"strconv"

	"sportsbook/internal/money"
)

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"accountId":    account.ID,
		"balanceCents": account.BalanceCents,
		"balance":      money.FormatUSD(account.BalanceCents),
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	account := accountFromContext(r.Context())
	txs, err := s.accounts.GetTransactions(r.Context(), account.ID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	accounts, err := s.accounts.Leaderboard(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
