package models

import "errors"

var (
	// ErrInvalidQuery is returned when query attributes carry nothing to match on
	ErrInvalidQuery = errors.New("invalid query attributes")

	// ErrUnknownGame is returned for a game with no configured resolver or pricer
	ErrUnknownGame = errors.New("unknown game")

	// ErrPricingDisabled is returned when no pricing API key is configured
	ErrPricingDisabled = errors.New("pricing API not configured")

	// ErrProductNotFound is returned when a pricing product id does not exist
	ErrProductNotFound = errors.New("pricing product not found")
)
