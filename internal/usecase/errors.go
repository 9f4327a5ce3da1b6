package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrAlreadyJoined         = errors.New("already joined")
	ErrActivityFull          = errors.New("activity is full")
	ErrActivityNotEnded      = errors.New("activity has not ended")
)
