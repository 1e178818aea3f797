// Package resilience provides token bucket rate limiting for the HTTP
// credential endpoint.
//
// RateLimiter guards a single resource. KeyedRateLimiter keeps one bucket per
// key, typically the client address, and forgets buckets that have been idle
// long enough to refill.
//
//	rl := resilience.NewKeyedRateLimiter(resilience.RateLimiterConfig{Rate: 5, Burst: 10})
//	if !rl.Allow(clientIP) {
//		return apperrors.RateLimited()
//	}
package resilience
