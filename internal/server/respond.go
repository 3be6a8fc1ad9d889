package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"sportsbook/internal/service"
)

// errorBody is the JSON shape of every error response. Kind is the
// machine-readable taxonomy; message is for humans.
type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

var errorKinds = map[error]struct {
	status int
	kind   string
}{
	service.ErrAccountNotFound:      {http.StatusNotFound, "account_not_found"},
	service.ErrEventNotFound:        {http.StatusNotFound, "event_not_found"},
	service.ErrBetNotFound:          {http.StatusNotFound, "bet_not_found"},
	service.ErrEventNotFinished:     {http.StatusConflict, "event_not_finished"},
	service.ErrEventAlreadyFinished: {http.StatusConflict, "event_already_finished"},
	service.ErrCannotEditFinished:   {http.StatusConflict, "cannot_edit_finished"},
	service.ErrBettingClosed:        {http.StatusConflict, "betting_closed"},
	service.ErrMarketUnavailable:    {http.StatusUnprocessableEntity, "market_unavailable"},
	service.ErrInvalidSide:          {http.StatusUnprocessableEntity, "invalid_side"},
	service.ErrInvalidStake:         {http.StatusUnprocessableEntity, "invalid_stake"},
	service.ErrInsufficientFunds:    {http.StatusUnprocessableEntity, "insufficient_funds"},
	service.ErrInvalidEventPayload:  {http.StatusBadRequest, "invalid_event_payload"},
}

// respondServiceError maps engine sentinels onto HTTP statuses and kinds.
// Anything unmapped is an internal error and gets logged with its cause.
func respondServiceError(w http.ResponseWriter, err error) {
	for sentinel, m := range errorKinds {
		if errors.Is(err, sentinel) {
			respondJSON(w, m.status, errorBody{Kind: m.kind, Message: sentinel.Error()})
			return
		}
	}
	log.Error().Err(err).Msg("internal error")
	respondJSON(w, http.StatusInternalServerError, errorBody{Kind: "internal", Message: "internal error"})
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorBody{Kind: "bad_request", Message: message})
}
