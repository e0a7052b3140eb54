// Package model provides the HTTP client for the external gradient-boosted
// scoring service and a Scorer that falls back to the rule-based engine when
// the service is unreachable.
package model

import "errors"

var (
	// ErrServiceUnavailable indicates the model service cannot be reached.
	ErrServiceUnavailable = errors.New("model service unavailable")
	// ErrConnectionFailed indicates a request-level connection failure.
	ErrConnectionFailed = errors.New("model service connection failed")
	// ErrPredictionFailed indicates the service answered but could not score.
	ErrPredictionFailed = errors.New("model prediction failed")
)
