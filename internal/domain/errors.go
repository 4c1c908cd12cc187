// Package domain contains the core business entities for Fuzzle: study
// sessions, the points accumulator, the countdown engine, the duration dial
// and the screen state machine. It has no knowledge of storage or rendering.
package domain

import "errors"

// Common domain errors.
var (
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrInvalidPoints      = errors.New("points must be a non-negative whole number")
	ErrNoIdentity         = errors.New("no user identity available")
	ErrSessionNotFound    = errors.New("session not found")
	ErrPointsNotFound     = errors.New("points total not found")
	ErrSessionFinalized   = errors.New("session already finalized")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrTransitionInFlight = errors.New("transition already in progress")
	ErrStaleTransition    = errors.New("state changed while the request was in flight")
)
