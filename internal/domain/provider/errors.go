package provider

import "errors"

var (
	ErrAvailabilityNotFound = errors.New("provider availability not found")
	ErrNoProvidersNearby    = errors.New("no providers available in radius")
	ErrInvalidSpeed         = errors.New("speed values must be non-negative")
)
