// Package ratelimit throttles clients per endpoint with token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// idleAfter is how long a bucket may go unused before cleanup drops it.
const idleAfter = time.Hour

// tokenBucket refills at a steady rate up to capacity.
type tokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

func newTokenBucket(capacity int, refillRate float64, now time.Time) *tokenBucket {
	return &tokenBucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastAccess: now,
	}
}

// take refills for the time elapsed since the last call, then consumes a token if one is
// available. It reports the remaining whole tokens and when the bucket will be full again.
func (b *tokenBucket) take(now time.Time) (allowed bool, remaining int, full time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.lastRefill); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed.Seconds()*b.refillRate)
	}
	b.lastRefill = now
	b.lastAccess = now

	if b.tokens >= 1 {
		b.tokens--
		allowed = true
	}

	full = now
	if b.tokens < b.capacity {
		full = now.Add(time.Duration((b.capacity - b.tokens) / b.refillRate * float64(time.Second)))
	}
	return allowed, int(b.tokens), full
}

// retryAfter is how long until one token is available.
func (b *tokenBucket) retryAfter() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tokens >= 1 {
		return 0
	}
	return time.Duration((1 - b.tokens) / b.refillRate * float64(time.Second))
}

func (b *tokenBucket) idleSince(cutoff time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAccess.Before(cutoff)
}

// Info describes the outcome of one Allow call.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Limiter keeps one bucket per client, endpoint and method.
type Limiter struct {
	config  *Config
	now     func() time.Time
	mu      sync.RWMutex
	buckets map[string]*tokenBucket
	stop    chan struct{}
	once    sync.Once
	done    sync.WaitGroup
}

// NewLimiter starts a limiter. A nil config uses 1000 requests per minute for every route.
// Call Stop to end the cleanup goroutine.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	l := &Limiter{
		config:  config,
		now:     now,
		buckets: make(map[string]*tokenBucket),
		stop:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		l.done.Add(1)
		go l.cleanup(config.CleanupInterval)
	}
	return l
}

// Allow reports whether clientID may call method on endpoint now.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	switch {
	case !l.config.Enabled, l.config.Whitelist[clientID]:
		return true, Info{Allowed: true}
	case l.config.Blacklist[clientID]:
		return false, Info{}
	}

	ec := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if ec == nil {
		ec = &EndpointConfig{Limit: l.config.DefaultLimit, Window: l.config.DefaultWindow}
	}
	if ec.Limit <= 0 || ec.Window <= 0 {
		return true, Info{Allowed: true}
	}

	bucket := l.bucket(clientID+":"+endpoint+":"+method, ec)
	allowed, remaining, full := bucket.take(l.now())

	info := Info{
		Allowed:   allowed,
		Limit:     ec.Limit,
		Remaining: remaining,
		ResetTime: full,
	}
	if !allowed {
		info.RetryAfter = bucket.retryAfter()
	}
	return allowed, info
}

func (l *Limiter) bucket(key string, ec *EndpointConfig) *tokenBucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	capacity := ec.Burst
	if capacity <= 0 {
		capacity = ec.Limit
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.buckets[key]; ok {
		return b
	}
	b = newTokenBucket(capacity, float64(ec.Limit)/ec.Window.Seconds(), l.now())
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanup(interval time.Duration) {
	defer l.done.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.prune()
		case <-l.stop:
			return
		}
	}
}

// prune drops buckets idle for longer than idleAfter.
func (l *Limiter) prune() {
	cutoff := l.now().Add(-idleAfter)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.idleSince(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
	l.done.Wait()
}
