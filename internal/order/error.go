package order

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidTracking   = errors.New("tracking number must be exactly 12 digits")
	ErrMissingTxnID      = errors.New("transaction id required to mark order paid")
)
