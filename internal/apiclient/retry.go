package apiclient

import (
	"time"
)

// RetryPolicy is injected at client construction so tests can supply
// deterministic or zero-delay policies. Backoff for server and connection
// errors is exponential, BaseDelay * 2^attempt, capped at MaxDelay.
// Rate-limited failures are paced by the Tracker's wait duration instead.
type RetryPolicy struct {
	// MaxAttempts is the total attempt budget, including the first try.
	MaxAttempts int

	// BaseDelay is the backoff delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration
}

// GitHubDefaults is the retry policy used for the GitHub client.
func GitHubDefaults() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 1 * time.Second, MaxDelay: 30 * time.Second}
}

// JiraDefaults is the retry policy used for the Jira client. Jira instances
// throttle more aggressively, so the budget is larger.
func JiraDefaults() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseDelay: 2 * time.Second, MaxDelay: 60 * time.Second}
}

// RetryContext tracks the attempt counter for one logical operation. It is
// created per paginated fetch and discarded on success or terminal failure.
type RetryContext struct {
	// Attempt counts completed attempts, starting at 0.
	Attempt int

	// Policy is the governing retry policy.
	Policy RetryPolicy

	// LastKind is the classification of the most recent failure.
	LastKind ErrorKind
}

// ShouldRetry reports whether another attempt is allowed: the failure kind
// must be retryable and the attempt budget must not be exhausted.
func (rc *RetryContext) ShouldRetry() bool {
	if !rc.LastKind.Retryable() {
		return false
	}
	return rc.Attempt+1 < rc.Policy.MaxAttempts
}

// NextDelay returns the exponential backoff delay for the upcoming retry:
// BaseDelay * 2^Attempt, capped at MaxDelay.
func (rc *RetryContext) NextDelay() time.Duration {
	delay := rc.Policy.BaseDelay
	for i := 0; i < rc.Attempt; i++ {
		delay *= 2
		if delay >= rc.Policy.MaxDelay {
			return rc.Policy.MaxDelay
		}
	}
	if delay > rc.Policy.MaxDelay {
		return rc.Policy.MaxDelay
	}
	return delay
}
