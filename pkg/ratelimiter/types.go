package ratelimiter

import "time"

// Result contains the result of a rate limit check.
type Result struct {
	Limit     int       // Maximum tokens (bucket capacity)
	Remaining int       // Tokens remaining; negative when the attempt was refused
	ResetAt   time.Time // Time when tokens will be refilled
}

// Allowed returns whether the request is allowed based on remaining tokens.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait at now before the next attempt.
// Returns 0 if the attempt was allowed.
func (r *Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed() || !r.ResetAt.After(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}

// Config defines the token bucket configuration.
type Config struct {
	Capacity       int           `env:"TWOFACTOR_ATTEMPTS_CAPACITY" envDefault:"5"`         // Attempts allowed in a burst
	RefillRate     int           `env:"TWOFACTOR_ATTEMPTS_REFILL_RATE" envDefault:"1"`      // Attempts given back per interval
	RefillInterval time.Duration `env:"TWOFACTOR_ATTEMPTS_REFILL_INTERVAL" envDefault:"1m"` // How often attempts are given back
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Minute}
}
