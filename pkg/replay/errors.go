package replay

import "errors"

var (
	ErrCodeReused = errors.New("one-time code has already been used")
	ErrEmptyKey   = errors.New("replay key is empty")

	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
)
