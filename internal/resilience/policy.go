// Package resilience turns a per-profile Policy into an apiclient.Config
// retry decider: exponential backoff with jitter, a configurable retry-on
// status set, Retry-After override, and an optional circuit breaker.
package resilience

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"redisctl/internal/apiclient"
)

// Policy is the resilience configuration attached to a profile, with
// defaults matching the ones named in the spec.
type Policy struct {
	RequestTimeout      time.Duration
	ConnectTimeout      time.Duration
	MaxAttempts         int
	InitialBackoff      time.Duration
	MaxBackoff          time.Duration
	Multiplier          float64
	JitterFraction      float64
	RetryOnStatus       map[int]bool
	RetryOnNetworkError bool
	Breaker             *BreakerConfig
}

// Default returns the policy used when a profile carries no [profiles.x.resilience]
// table.
func Default() Policy {
	return Policy{
		RequestTimeout:      30 * time.Second,
		ConnectTimeout:      10 * time.Second,
		MaxAttempts:         3,
		InitialBackoff:      300 * time.Millisecond,
		MaxBackoff:          10 * time.Second,
		Multiplier:          2.0,
		JitterFraction:      0.2,
		RetryOnStatus:       defaultRetryStatuses(),
		RetryOnNetworkError: true,
	}
}

func defaultRetryStatuses() map[int]bool {
	return map[int]bool{
		http.StatusRequestTimeout:     true,
		http.StatusTooManyRequests:    true,
		http.StatusInternalServerError: true,
		http.StatusBadGateway:         true,
		http.StatusServiceUnavailable: true,
		http.StatusGatewayTimeout:     true,
	}
}

// BackoffDelay computes the delay before the given attempt (1-indexed),
// applying the configured multiplier, ceiling, and jitter.
func (p Policy) BackoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2.0
	}
	base := p.InitialBackoff
	if base <= 0 {
		base = 300 * time.Millisecond
	}
	d := float64(base)
	for i := 1; i < attempt; i++ {
		d *= mult
	}
	if max := p.MaxBackoff; max > 0 && time.Duration(d) > max {
		d = float64(max)
	}
	if p.JitterFraction > 0 {
		jitter := d * p.JitterFraction
		d += (rand.Float64()*2 - 1) * jitter
		if d < 0 {
			d = 0
		}
	}
	return time.Duration(d)
}

// retryable reports whether method/status combination is safe to retry per
// the spec: GET/PUT/DELETE are idempotent; POST is only retried when the
// response status is itself in the retry set (no partial-write risk is
// assumed once the server has actually answered).
func retryable(method string, hasResponse bool) bool {
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodHead, http.MethodOptions:
		return true
	case http.MethodPost:
		return hasResponse
	default:
		return false
	}
}

// RetryDecider builds an apiclient.RetryDecider that applies this policy,
// consulting breaker (if non-nil) before allowing any attempt beyond the
// first.
func (p Policy) RetryDecider(breaker *Breaker) apiclient.RetryDecider {
	return func(ctx context.Context, attempt int, req apiclient.Request, resp *http.Response, _ []byte, callErr error) apiclient.RetryDecision {
		attempts := p.MaxAttempts
		if attempts < 1 {
			attempts = 1
		}
		if attempt >= attempts {
			return apiclient.RetryDecision{}
		}
		if callErr != nil {
			if !p.RetryOnNetworkError || !retryable(req.Method, false) {
				return apiclient.RetryDecision{}
			}
			if breaker != nil {
				breaker.RecordFailure()
				if !breaker.Allow() {
					return apiclient.RetryDecision{}
				}
			}
			return apiclient.RetryDecision{Retry: true, Wait: p.BackoffDelay(attempt)}
		}
		if resp == nil {
			return apiclient.RetryDecision{}
		}
		if breaker != nil {
			if resp.StatusCode >= 500 {
				breaker.RecordFailure()
			} else {
				breaker.RecordSuccess()
			}
			if !breaker.Allow() {
				return apiclient.RetryDecision{}
			}
		}
		if !retryable(req.Method, true) {
			return apiclient.RetryDecision{}
		}
		if !p.RetryOnStatus[resp.StatusCode] {
			return apiclient.RetryDecision{}
		}
		if d, ok := apiclient.RetryAfterDelay(resp.Header); ok {
			return apiclient.RetryDecision{Retry: true, Wait: d}
		}
		return apiclient.RetryDecision{Retry: true, Wait: p.BackoffDelay(attempt)}
	}
}
