package core

import "errors"

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrMalformedPrice   = errors.New("malformed price field")
	ErrInvalidLevel     = errors.New("price level must be positive and finite")
)
