package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportsbook/internal/service"
)

func TestRespondServiceErrorMapsSentinels(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"insufficient funds", service.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds"},
		{"betting closed", service.ErrBettingClosed, http.StatusConflict, "betting_closed"},
		{"invalid stake", service.ErrInvalidStake, http.StatusUnprocessableEntity, "invalid_stake"},
		{"event not found", service.ErrEventNotFound, http.StatusNotFound, "event_not_found"},
		{"already finished", service.ErrEventAlreadyFinished, http.StatusConflict, "event_already_finished"},
		{"wrapped sentinel", fmt.Errorf("placing bet: %w", service.ErrMarketUnavailable), http.StatusUnprocessableEntity, "market_unavailable"},
		{"unknown error", errors.New("pool exhausted"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Kind)
		})
	}
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"missing uses default", "", 50},
		{"valid value", "limit=5", 5},
		{"zero falls back", "limit=0", 50},
		{"negative falls back", "limit=-3", 50},
		{"garbage falls back", "limit=abc", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			assert.Equal(t, tt.want, queryInt(r, "limit", 50))
		})
	}
}
