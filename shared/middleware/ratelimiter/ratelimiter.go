package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// bucket is a token bucket for one key.
type bucket struct {
	tokens     float64
	lastRefill time.Time
	timer      *time.Timer
}

// KeyRateLimiter keeps one token bucket per key (an ip, a board+ip pair, ...).
// Idle buckets are dropped after expirationTime.
type KeyRateLimiter struct {
	mu             sync.Mutex
	buckets        map[string]*bucket
	rate           float64 // tokens per second
	capacity       float64
	expirationTime time.Duration
	now            func() time.Time
}

func New(rate float64, capacity float64, expirationTime time.Duration) *KeyRateLimiter {
	return &KeyRateLimiter{
		buckets:        make(map[string]*bucket),
		rate:           rate,
		capacity:       capacity,
		expirationTime: expirationTime,
		now:            time.Now,
	}
}

// Allow takes a token from key's bucket if one is available.
func (l *KeyRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[key] = b
	}
	l.touch(key, b)

	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Refund puts back a token taken by Allow, up to capacity.
func (l *KeyRateLimiter) Refund(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.buckets[key]; ok {
		b.tokens = min(b.tokens+1, l.capacity)
	}
}

// touch pushes back the bucket's expiry. Caller holds l.mu.
func (l *KeyRateLimiter) touch(key string, b *bucket) {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(l.expirationTime, func() {
		l.mu.Lock()
		if l.buckets[key] == b {
			delete(l.buckets, key)
		}
		l.mu.Unlock()
	})
}

// Stop cleans up all timers
func (l *KeyRateLimiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.buckets {
		if b.timer != nil {
			b.timer.Stop()
		}
	}
}

func Rps100() *KeyRateLimiter { return New(100, 100, time.Hour) }
func Rps10() *KeyRateLimiter  { return New(10, 10, time.Hour) }

// Cooldown admits one event per key per interval.
type Cooldown struct {
	limiter *KeyRateLimiter // nil admits everything
}

// NewCooldown builds an in-process posting cooldown. It satisfies the
// ledger's flood guard when no redis is configured. A non-positive
// interval disables it.
func NewCooldown(interval time.Duration) *Cooldown {
	if interval <= 0 {
		return &Cooldown{}
	}
	return &Cooldown{limiter: New(1/interval.Seconds(), 1, interval+time.Minute)}
}

func (c *Cooldown) Allow(_ context.Context, key string) (bool, error) {
	if c.limiter == nil {
		return true, nil
	}
	return c.limiter.Allow(key), nil
}

func (c *Cooldown) Release(_ context.Context, key string) error {
	if c.limiter != nil {
		c.limiter.Refund(key)
	}
	return nil
}

func (c *Cooldown) Stop() {
	if c.limiter != nil {
		c.limiter.Stop()
	}
}
