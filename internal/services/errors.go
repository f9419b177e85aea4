package services

import "errors"

// Service-level errors. Handlers map these onto HTTP statuses:
// not-found errors become 404, the rest of the named conditions 400.
var (
	ErrPersonNotFound   = errors.New("person not found")
	ErrClientNotFound   = errors.New("client not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrMovementNotFound = errors.New("movement not found")

	// ErrInsufficientFunds is returned when a movement would drive the
	// running balance below zero. Nothing is written in that case.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrMissingParameter is returned by the statement report when any of
	// startDate, endDate or clientId is absent.
	ErrMissingParameter = errors.New("startDate, endDate and clientId are required")
)
