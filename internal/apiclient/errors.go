// Package apiclient implements the shared API client core: authentication,
// transport, error classification, rate-limit tracking, retry policy, and
// pagination. The GitHub and Jira facade clients are composed from these
// pieces and contain no retry or pagination logic of their own.
package apiclient

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrorKind identifies the category of a failed API call. The set is closed;
// every failure surfaced by this package carries exactly one kind.
type ErrorKind int

const (
	// KindUnknown covers failures that fit no other category.
	KindUnknown ErrorKind = iota
	// KindNetwork covers socket and DNS level failures.
	KindNetwork
	// KindTimeout covers request deadline expiry.
	KindTimeout
	// KindAuthentication covers HTTP 401 responses.
	KindAuthentication
	// KindPermission covers HTTP 403 responses that are not rate limiting.
	KindPermission
	// KindNotFound covers HTTP 404 responses.
	KindNotFound
	// KindRateLimited covers HTTP 429 and quota-exhausted 403 responses.
	KindRateLimited
	// KindServerError covers HTTP 5xx responses.
	KindServerError
	// KindValidation covers HTTP 422 responses and malformed client input.
	KindValidation
)

// String returns the kind's name for logging and error messages.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindAuthentication:
		return "authentication"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindServerError:
		return "server_error"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Retryable reports whether a failure of this kind can be usefully retried.
// Deterministic failures (authentication, permission, not-found, validation)
// are excluded: retrying them cannot change the outcome.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindNetwork, KindTimeout, KindServerError, KindRateLimited:
		return true
	default:
		return false
	}
}

// Error is the failure type surfaced by every operation in this package and
// by the facade clients built on it. The message is safe to print: it never
// contains credential material and response bodies are truncated.
type Error struct {
	// Kind is the classified failure category.
	Kind ErrorKind

	// StatusCode is the HTTP status that produced the failure, 0 when the
	// failure happened below the HTTP layer.
	StatusCode int

	// Message is a printable, credential-free description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds an Error with the given kind and formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err, returning KindUnknown when err is
// not an *Error from this package.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// maxBodySnippet bounds how much of a response body may appear in an error
// message.
const maxBodySnippet = 200

// bodySnippet renders a response body fragment suitable for inclusion in an
// error message: trimmed, truncated to maxBodySnippet bytes on a rune
// boundary, with an ellipsis marker when cut.
func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty body>"
	}
	if len(s) <= maxBodySnippet {
		return s
	}
	cut := maxBodySnippet
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
