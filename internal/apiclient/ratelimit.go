package apiclient

import (
	"strconv"
	"time"
)

// defaultRateLimitWait is used when the upstream reports rate limiting
// without saying how long to wait.
const defaultRateLimitWait = 60 * time.Second

// RateLimitState is a read-only snapshot of the upstream's rate-limit
// signals. All fields start unknown at client construction and are refreshed
// on every response that carries signals; the state is never reset mid-run.
type RateLimitState struct {
	// Remaining is the number of requests left in the current window, -1
	// when unknown.
	Remaining int

	// ResetAt is when the window resets, zero when unknown.
	ResetAt time.Time

	// RetryAfter is the server-mandated wait from a Retry-After header,
	// 0 when unknown.
	RetryAfter time.Duration
}

// Known reports whether any rate-limit signal has been observed yet.
func (s RateLimitState) Known() bool {
	return s.Remaining >= 0 || !s.ResetAt.IsZero() || s.RetryAfter > 0
}

// Tracker accumulates rate-limit signals across responses and computes wait
// durations. It understands both upstream conventions: GitHub's
// X-RateLimit-Remaining/X-RateLimit-Reset headers and Jira's Retry-After.
type Tracker struct {
	state RateLimitState

	// now is replaceable for deterministic tests.
	now func() time.Time
}

// NewTracker returns a Tracker with all signals unknown.
func NewTracker() *Tracker {
	return &Tracker{
		state: RateLimitState{Remaining: -1},
		now:   time.Now,
	}
}

// Observe updates the tracked state from one response's headers and returns
// the new snapshot. Headers that are absent leave the corresponding field
// untouched, except Retry-After which is cleared when absent: it is only
// authoritative for the response that carried it.
func (t *Tracker) Observe(env *ResponseEnvelope) RateLimitState {
	if v := env.Header.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			t.state.Remaining = n
		}
	}
	if v := env.Header.Get("X-RateLimit-Reset"); v != "" {
		if unix, err := strconv.ParseInt(v, 10, 64); err == nil {
			t.state.ResetAt = time.Unix(unix, 0)
		}
	}
	if v := env.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			t.state.RetryAfter = time.Duration(secs) * time.Second
		}
	} else {
		t.state.RetryAfter = 0
	}
	return t.state
}

// State returns the current read-only snapshot.
func (t *Tracker) State() RateLimitState {
	return t.state
}

// WaitDuration computes how long to wait before the next attempt after a
// failure of the given kind. For rate-limited failures the Retry-After
// header is authoritative; otherwise, with the quota exhausted, the wait
// runs until the reported reset time. Non-positive reset deltas are ignored
// since clock skew can produce them. Anything else falls back to the fixed
// default. Non-rate-limit failures wait nothing here; they are paced by the
// retry policy's backoff instead.
func (t *Tracker) WaitDuration(kind ErrorKind) time.Duration {
	if kind != KindRateLimited {
		return 0
	}
	if t.state.RetryAfter > 0 {
		return t.state.RetryAfter
	}
	if t.state.Remaining == 0 && !t.state.ResetAt.IsZero() {
		if d := t.state.ResetAt.Sub(t.now()); d > 0 {
			return d
		}
	}
	return defaultRateLimitWait
}
