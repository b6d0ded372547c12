package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy strips all HTML elements and attributes. Initialised once; the
// bluemonday policy is safe for concurrent use.
var policy = bluemonday.StrictPolicy()

// Clean removes HTML and script content from a user-supplied string and trims
// surrounding whitespace. Every free-text field must pass through here before
// it is persisted, echoed back in a response or embedded in an email.
func Clean(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}

// Email lowercases and cleans an email address. Uniqueness checks treat
// addresses case-insensitively, so the canonical stored form is lowercase.
func Email(s string) string {
	return strings.ToLower(Clean(s))
}
