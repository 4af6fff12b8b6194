package voice

import (
	"sync"
	"time"
)

const (
	breakerFailureThreshold = 3
	breakerCooldown         = 2 * time.Minute
	breakerNoticeInterval   = time.Minute
)

// circuitBreaker guards the optional remote intent parser. Three consecutive
// failures disable remote calls for two minutes; while disabled, a user-facing
// notice is emitted at most once per minute.
type circuitBreaker struct {
	mu            sync.Mutex
	now           func() time.Time
	failures      int
	disabledUntil time.Time
	lastNotice    time.Time
}

func newCircuitBreaker(now func() time.Time) *circuitBreaker {
	if now == nil {
		now = time.Now
	}
	return &circuitBreaker{now: now}
}

// Allow reports whether a remote call may be attempted.
func (b *circuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.now().Before(b.disabledUntil)
}

// RecordFailure counts one remote failure and trips the breaker on the third
// consecutive one.
func (b *circuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= breakerFailureThreshold {
		b.disabledUntil = b.now().Add(breakerCooldown)
		b.failures = 0
	}
}

// RecordSuccess resets the consecutive failure count.
func (b *circuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}

// ShouldNotify reports whether a "voice assistant offline" notice may be shown
// now. It returns true at most once per minute and only while the breaker is
// open.
func (b *circuitBreaker) ShouldNotify() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if now.After(b.disabledUntil) || now.Equal(b.disabledUntil) {
		return false
	}
	if now.Sub(b.lastNotice) < breakerNoticeInterval {
		return false
	}
	b.lastNotice = now
	return true
}
