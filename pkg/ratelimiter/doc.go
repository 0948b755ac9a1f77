// Package ratelimiter implements a token bucket used to throttle second-factor
// code submissions.
//
// Every key (usually the owner reference) starts with Capacity tokens; each
// attempt takes one and RefillRate tokens come back every RefillInterval.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//
//	result, err := limiter.Allow(ctx, owner.String())
//	if err != nil {
//		return err
//	}
//	if !result.Allowed() {
//		// answer 429 with result.RetryAfter(now)
//	}
//
// A successful verification should call Reset so the next login starts with a
// full bucket.
package ratelimiter
