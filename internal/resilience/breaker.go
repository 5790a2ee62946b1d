package resilience

import (
	"sync"
	"time"
)

// BreakerConfig configures an optional circuit breaker: threshold failures
// within window trips the circuit open for cooldown, after which a single
// half-open probe is allowed through.
type BreakerConfig struct {
	FailureThreshold int
	Window           time.Duration
	Cooldown         time.Duration
}

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// Breaker is a minimal failure-window circuit breaker shared across attempts
// of a single call. It is not safe to reuse across unrelated requests
// without resetting, since "window" failures are a rolling count of recent
// attempts, not calendar time since process start.
type Breaker struct {
	mu           sync.Mutex
	cfg          BreakerConfig
	state        breakerState
	failures     []time.Time
	openedAt     time.Time
	halfOpenUsed bool
}

// NewBreaker returns a closed breaker for cfg. A nil/zero-value cfg disables
// tripping entirely (Allow always returns true).
func NewBreaker(cfg BreakerConfig) *Breaker {
	return &Breaker{cfg: cfg, state: stateClosed}
}

// Allow reports whether a request attempt may proceed.
func (b *Breaker) Allow() bool {
	if b == nil || b.cfg.FailureThreshold <= 0 {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case stateOpen:
		if time.Since(b.openedAt) >= b.cfg.Cooldown {
			b.state = stateHalfOpen
			b.halfOpenUsed = true
		} else {
			return false
		}
	case stateHalfOpen:
		if b.halfOpenUsed {
			return false
		}
		b.halfOpenUsed = true
	}
	return true
}

// RecordFailure registers a failed attempt, possibly tripping the breaker.
func (b *Breaker) RecordFailure() {
	if b == nil || b.cfg.FailureThreshold <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	if b.state == stateHalfOpen {
		b.state = stateOpen
		b.openedAt = now
		b.failures = nil
		return
	}
	b.failures = append(b.failures, now)
	cutoff := now.Add(-b.cfg.Window)
	kept := b.failures[:0]
	for _, t := range b.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.failures = kept
	if len(b.failures) >= b.cfg.FailureThreshold {
		b.state = stateOpen
		b.openedAt = now
		b.failures = nil
	}
}

// RecordSuccess closes the breaker again after a successful half-open probe.
func (b *Breaker) RecordSuccess() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == stateHalfOpen {
		b.state = stateClosed
	}
	b.failures = nil
}
