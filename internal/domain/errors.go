package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")

	// Checkout hand-off.
	ErrCheckoutFailed   = errors.New("checkout request failed")
	ErrNoCheckoutURL    = errors.New("checkout response without url")
	ErrCheckoutInFlight = errors.New("checkout already in progress")
	ErrEmptyCheckout    = errors.New("no checkout lines")

	// ErrSlotOverflow is returned by a storage slot that cannot hold the snapshot.
	ErrSlotOverflow = errors.New("snapshot too large for slot")
)
