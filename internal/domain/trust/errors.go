package trust

import "errors"

var (
	ErrScoreNotFound = errors.New("trust score not found")
)
