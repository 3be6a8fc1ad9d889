// Package server exposes the wagering engine over HTTP. Handlers are thin
// glue: decode, call a service, encode. All rules live in the services.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sportsbook/internal/pkg/db"
	"sportsbook/internal/service"
)

// Server holds the HTTP routes and their service dependencies.
type Server struct {
	pool       *db.Pool
	accounts   *service.AccountService
	catalog    *service.CatalogService
	wagers     *service.WagerService
	settlement *service.SettlementService
	overview   *service.OverviewService
}

// New creates the Server and wires its routes.
func New(
	pool *db.Pool,
	accounts *service.AccountService,
	catalog *service.CatalogService,
	wagers *service.WagerService,
	settlement *service.SettlementService,
	overview *service.OverviewService,
) *Server {
	return &Server{
		pool:       pool,
		accounts:   accounts,
		catalog:    catalog,
		wagers:     wagers,
		settlement: settlement,
		overview:   overview,
	}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.withIdentity)

		r.Get("/events", s.handleListEvents)
		r.Get("/events/{eventID}", s.handleGetEvent)

		r.Post("/bets", s.handlePlaceBet)
		r.Get("/bets", s.handleListBets)
		r.Get("/bets/open", s.handleListOpenBets)
		r.Get("/bets/history", s.handleListSettledBets)
		r.Get("/bets/{betID}", s.handleGetBet)

		r.Get("/account/balance", s.handleBalance)
		r.Get("/account/transactions", s.handleTransactions)
		r.Get("/account/leaderboard", s.handleLeaderboard)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Post("/events", s.handleCreateEvent)
			r.Post("/events/{eventID}/finalize", s.handleFinalizeEvent)
			r.Post("/events/{eventID}/settle", s.handleSettleEvent)
			r.Get("/overview", s.handleOverview)
			r.Get("/bets", s.handleAllBets)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pool.HealthCheck(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
