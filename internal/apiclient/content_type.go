package apiclient

import (
	"fmt"
	"mime"
	"strings"
)

// CheckContentType inspects a response's Content-Type against the expected
// media type and returns a warning message, or the empty string when the
// types match. It is pure observation: a missing header warns the same as a
// mismatched one, and neither ever aborts the caller.
func CheckContentType(env *ResponseEnvelope, expected string) string {
	got := env.Header.Get("Content-Type")
	if got == "" {
		return fmt.Sprintf("response has no Content-Type header, expected %s", expected)
	}
	mediaType, _, err := mime.ParseMediaType(got)
	if err != nil {
		return fmt.Sprintf("response has unparseable Content-Type %q, expected %s", got, expected)
	}
	if !strings.EqualFold(mediaType, expected) {
		return fmt.Sprintf("response has Content-Type %s, expected %s", mediaType, expected)
	}
	return ""
}
