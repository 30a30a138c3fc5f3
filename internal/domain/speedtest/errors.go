package speedtest

import "errors"

var (
	ErrInvalidSample = errors.New("speed sample values must be non-negative")
	ErrNoSamples     = errors.New("no speed samples recorded")
)
