package apiclient

import (
	"net/http"
)

// Classify maps an HTTP status code (and, for 403, the rate-limit headers)
// to an ErrorKind. The mapping is deterministic:
//
//	401        -> KindAuthentication
//	403        -> KindRateLimited when X-RateLimit-Remaining is 0,
//	              KindPermission otherwise
//	404        -> KindNotFound
//	422        -> KindValidation
//	429        -> KindRateLimited
//	500..599   -> KindServerError
//	other >=400 -> KindUnknown
//
// GitHub signals quota exhaustion with 403 rather than 429; the header check
// separates that case from genuine permission errors.
func Classify(statusCode int, header http.Header) ErrorKind {
	switch {
	case statusCode == http.StatusUnauthorized:
		return KindAuthentication
	case statusCode == http.StatusForbidden:
		if header.Get("X-RateLimit-Remaining") == "0" {
			return KindRateLimited
		}
		return KindPermission
	case statusCode == http.StatusNotFound:
		return KindNotFound
	case statusCode == http.StatusUnprocessableEntity:
		return KindValidation
	case statusCode == http.StatusTooManyRequests:
		return KindRateLimited
	case statusCode >= 500 && statusCode <= 599:
		return KindServerError
	default:
		return KindUnknown
	}
}

// classifyResponse builds the Error for a non-2xx response envelope. The
// body fragment in the message is truncated.
func classifyResponse(env *ResponseEnvelope) *Error {
	kind := Classify(env.StatusCode, env.Header)
	return &Error{
		Kind:       kind,
		StatusCode: env.StatusCode,
		Message:    bodySnippet(env.Body),
	}
}
