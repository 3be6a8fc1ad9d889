// Package service provides the wagering engine: catalog management, bet
// placement, and settlement.
package service

import "errors"

// Error kinds returned by engine operations. Every rejected operation
// leaves all state unchanged.
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrEventNotFinished     = errors.New("event is not finished")
	ErrEventAlreadyFinished = errors.New("event already finished")
	ErrCannotEditFinished   = errors.New("cannot edit a finished event")
	ErrBettingClosed        = errors.New("event is not open for betting")
	ErrMarketUnavailable    = errors.New("market not available for this event")
	ErrInvalidSide          = errors.New("invalid side for market")
	ErrInvalidStake         = errors.New("stake out of bounds")
	ErrInsufficientFunds    = errors.New("insufficient balance")
	ErrInvalidEventPayload  = errors.New("invalid event payload")
	ErrBetNotFound          = errors.New("bet not found")
)
