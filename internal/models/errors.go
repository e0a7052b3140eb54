package models

import "errors"

// Custom errors
var (
	ErrDataUnavailable  = errors.New("data unavailable after retries")
	ErrMalformedMatchup = errors.New("matchup missing required identity fields")
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key violation")
)
