package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testConfig(clock *fakeClock) *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  60,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/enhance", Method: "POST", Limit: 6, Window: time.Minute, Burst: 2},
			{Path: "/docs/", Method: "GET", Limit: 10, Window: time.Minute},
		},
		Now: clock.Now,
	}
}

func TestTokenBucket_TakeAndRefill(t *testing.T) {
	clock := newFakeClock()
	b := newTokenBucket(3, 1.0, clock.Now())

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := b.take(clock.Now())
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 2-i, remaining)
	}
	allowed, _, full := b.take(clock.Now())
	assert.False(t, allowed)
	assert.Equal(t, clock.Now().Add(3*time.Second), full)
	assert.Equal(t, time.Second, b.retryAfter())

	clock.Advance(1500 * time.Millisecond)
	allowed, _, _ = b.take(clock.Now())
	assert.True(t, allowed)
	allowed, _, _ = b.take(clock.Now())
	assert.False(t, allowed)
}

func TestTokenBucket_NeverExceedsCapacity(t *testing.T) {
	clock := newFakeClock()
	b := newTokenBucket(2, 10.0, clock.Now())
	clock.Advance(time.Hour)

	_, remaining, _ := b.take(clock.Now())
	assert.Equal(t, 1, remaining)
}

func TestLimiter_EndpointBurst(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(testConfig(clock))
	defer l.Stop()

	allowed, info := l.Allow("10.0.0.1", "/enhance", "POST")
	require.True(t, allowed)
	assert.Equal(t, 6, info.Limit)
	assert.Equal(t, 1, info.Remaining)

	allowed, _ = l.Allow("10.0.0.1", "/enhance", "POST")
	require.True(t, allowed)

	allowed, info = l.Allow("10.0.0.1", "/enhance", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 10*time.Second, info.RetryAfter)

	clock.Advance(10 * time.Second)
	allowed, _ = l.Allow("10.0.0.1", "/enhance", "POST")
	assert.True(t, allowed)
}

func TestLimiter_BucketsAreIndependent(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(testConfig(clock))
	defer l.Stop()

	for i := 0; i < 2; i++ {
		l.Allow("10.0.0.1", "/enhance", "POST")
	}
	allowed, _ := l.Allow("10.0.0.1", "/enhance", "POST")
	require.False(t, allowed)

	allowed, _ = l.Allow("10.0.0.2", "/enhance", "POST")
	assert.True(t, allowed, "other client has its own bucket")

	allowed, info := l.Allow("10.0.0.1", "/classify", "POST")
	assert.True(t, allowed, "other endpoint has its own bucket")
	assert.Equal(t, 60, info.Limit, "unmatched endpoint uses the default")
}

func TestLimiter_Lists(t *testing.T) {
	clock := newFakeClock()
	cfg := testConfig(clock)
	cfg.Whitelist = map[string]bool{"10.0.0.9": true}
	cfg.Blacklist = map[string]bool{"10.0.0.6": true}
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := l.Allow("10.0.0.9", "/enhance", "POST")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("10.0.0.6", "/health", "GET")
	assert.False(t, allowed)
	assert.Zero(t, l.Len())
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := l.Allow("10.0.0.1", "/enhance", "POST")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(testConfig(clock))
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/health", "GET")
		require.True(t, allowed)
		allowed, _ = l.Allow("10.0.0.1", "/enhance", "OPTIONS")
		require.True(t, allowed)
	}
	assert.Zero(t, l.Len())
}

func TestLimiter_Prune(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(testConfig(clock))
	defer l.Stop()

	l.Allow("10.0.0.1", "/enhance", "POST")
	clock.Advance(30 * time.Minute)
	l.Allow("10.0.0.2", "/enhance", "POST")
	require.Equal(t, 2, l.Len())

	clock.Advance(45 * time.Minute)
	l.prune()
	assert.Equal(t, 1, l.Len())

	clock.Advance(time.Hour)
	l.prune()
	assert.Zero(t, l.Len())
}

func TestLimiter_Concurrent(t *testing.T) {
	clock := newFakeClock()
	cfg := testConfig(clock)
	cfg.EndpointConfigs = []EndpointConfig{{Path: "/enhance", Method: "POST", Limit: 50, Window: time.Minute}}
	l := NewLimiter(cfg)
	defer l.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("10.0.0.1", "/enhance", "POST"); ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, granted)
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Second, CleanupInterval: time.Millisecond})
	l.Stop()
	l.Stop()
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	allowed, info := l.Allow("10.0.0.1", "/anything", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/docs/", Method: "GET", Limit: 1},
		{Path: "/docs/special", Method: "GET", Limit: 2},
		{Path: "/enhance", Method: "POST", Limit: 3},
	}

	tests := []struct {
		path, method string
		want         int
		wantNil      bool
	}{
		{path: "/enhance", method: "POST", want: 3},
		{path: "/docs/special", method: "GET", want: 2},
		{path: "/docs/react", method: "GET", want: 1},
		{path: "/health", method: "GET", want: 0},
		{path: "/enhance", method: "OPTIONS", want: 0},
		{path: "/enhance", method: "GET", wantNil: true},
		{path: "/enhance/extra", method: "POST", wantNil: true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Limit)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	env := map[string]string{
		"RATE_LIMIT_DEFAULT_LIMIT":  "120",
		"RATE_LIMIT_ENHANCE_LIMIT":  "12",
		"RATE_LIMIT_WHITELIST":      "10.0.0.1, 10.0.0.2,",
		"RATE_LIMIT_DEFAULT_WINDOW": "bogus",
	}
	cfg := loadConfig(func(k string) string { return env[k] })

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 120, cfg.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.Empty(t, cfg.Blacklist)
	require.NotEmpty(t, cfg.EndpointConfigs)
	assert.Equal(t, 12, cfg.EndpointConfigs[0].Limit)
	assert.Equal(t, 2, cfg.EndpointConfigs[0].Burst)

	disabled := loadConfig(func(k string) string {
		if k == "RATE_LIMIT_ENABLED" {
			return "false"
		}
		return ""
	})
	assert.False(t, disabled.Enabled)
}
