package session

import "errors"

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionAlreadyEnded = errors.New("session already ended")
	ErrDeviceBusy          = errors.New("device already holds an active session")
	ErrInvalidBytes        = errors.New("total bytes shared must be non-negative")
)
