package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"sportsbook/internal/model"
)

type contextKey string

const accountContextKey contextKey = "account"

// accountFromContext returns the authenticated account. Handlers behind
// the identity middleware can rely on it being present.
func accountFromContext(ctx context.Context) *model.Account {
	account, _ := ctx.Value(accountContextKey).(*model.Account)
	return account
}

// withIdentity resolves the caller from the X-Account-ID header, creating
// the account with the starting balance on first sight. Identity is
// trusted as-is; real authentication sits in front of this service.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID := r.Header.Get("X-Account-ID")
		if accountID == "" {
			respondJSON(w, http.StatusUnauthorized, errorBody{Kind: "unauthorized", Message: "missing X-Account-ID header"})
			return
		}

		username := r.Header.Get("X-Account-Name")
		if username == "" {
			username = accountID
		}

		account, err := s.accounts.EnsureAccount(r.Context(), accountID, username)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), accountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates admin routes on the stored admin flag.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := accountFromContext(r.Context())
		if account == nil || !account.IsAdmin {
			respondJSON(w, http.StatusForbidden, errorBody{Kind: "forbidden", Message: "admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request with status and latency.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
