package resilience

import (
	"sync"
	"time"
)

// RateLimiterConfig configures a rate limiter.
type RateLimiterConfig struct {
	// Name identifies the limiter in OnLimit.
	Name string
	// Rate is the number of requests allowed per second.
	Rate float64
	// Burst is the maximum burst size.
	Burst int
	// OnLimit is called when a request is rejected.
	OnLimit func(name, key string)
}

// DefaultRateLimiterConfig returns 10 requests per second with bursts of 20.
func DefaultRateLimiterConfig(name string) RateLimiterConfig {
	return RateLimiterConfig{
		Name:  name,
		Rate:  10.0,
		Burst: 20,
	}
}

func (c *RateLimiterConfig) applyDefaults() {
	if c.Rate <= 0 {
		c.Rate = 10.0
	}
	if c.Burst <= 0 {
		c.Burst = int(c.Rate)
		if c.Burst < 1 {
			c.Burst = 1
		}
	}
}

// RateLimiter implements a token bucket.
type RateLimiter struct {
	config RateLimiterConfig
	now    func() time.Time

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	config.applyDefaults()
	return newBucket(config, time.Now)
}

func newBucket(config RateLimiterConfig, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		config:     config,
		now:        now,
		tokens:     float64(config.Burst),
		lastRefill: now(),
	}
}

// Allow takes one token if available.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowN(1)
}

// AllowN takes n tokens if available.
func (rl *RateLimiter) AllowN(n int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens >= float64(n) {
		rl.tokens -= float64(n)
		return true
	}
	return false
}

// Tokens returns the number of available tokens.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}

// Rate returns the refill rate in tokens per second.
func (rl *RateLimiter) Rate() float64 { return rl.config.Rate }

// Burst returns the bucket size.
func (rl *RateLimiter) Burst() int { return rl.config.Burst }

func (rl *RateLimiter) refill() {
	now := rl.now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.lastRefill = now

	rl.tokens += elapsed * rl.config.Rate
	if rl.tokens > float64(rl.config.Burst) {
		rl.tokens = float64(rl.config.Burst)
	}
}

// full reports whether the bucket has refilled completely.
func (rl *RateLimiter) full() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens >= float64(rl.config.Burst)
}

// KeyedRateLimiter keeps one token bucket per key.
type KeyedRateLimiter struct {
	config RateLimiterConfig
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string]*RateLimiter
	lastSweep time.Time
}

// NewKeyedRateLimiter creates an empty keyed limiter.
func NewKeyedRateLimiter(config RateLimiterConfig) *KeyedRateLimiter {
	config.applyDefaults()
	return &KeyedRateLimiter{
		config:    config,
		now:       time.Now,
		buckets:   make(map[string]*RateLimiter),
		lastSweep: time.Now(),
	}
}

// Allow takes one token from key's bucket.
func (k *KeyedRateLimiter) Allow(key string) bool {
	if k.bucket(key).Allow() {
		return true
	}
	if k.config.OnLimit != nil {
		k.config.OnLimit(k.config.Name, key)
	}
	return false
}

// Len returns the number of tracked keys.
func (k *KeyedRateLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

func (k *KeyedRateLimiter) bucket(key string) *RateLimiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	if now := k.now(); now.Sub(k.lastSweep) > time.Minute {
		k.lastSweep = now
		for name, b := range k.buckets {
			if b.full() {
				delete(k.buckets, name)
			}
		}
	}

	b, ok := k.buckets[key]
	if !ok {
		b = newBucket(k.config, k.now)
		k.buckets[key] = b
	}
	return b
}
