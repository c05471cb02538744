package services

import "errors"

var (
	// ErrInsufficientCandidates means fewer than four eligible colleagues
	// exist; no session is created and the user is told to check back later.
	ErrInsufficientCandidates = errors.New("not enough colleagues for a quiz")

	// ErrSessionAlreadyActive means the user still has an unanswered
	// question. Not a failure state; the existing question stands.
	ErrSessionAlreadyActive = errors.New("user already has an active quiz")

	// ErrSessionExpired means an answer arrived with no matching session.
	ErrSessionExpired = errors.New("quiz session has expired")
)
