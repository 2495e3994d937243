// Package sanitize strips unsafe markup from free-text fields before they
// enter the record store.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy strips all HTML elements and attributes.
var policy = bluemonday.StrictPolicy()

// Text removes markup from a free-text field and trims surrounding
// whitespace. The result is plain text; entities introduced by the policy
// are decoded back so stored text stays human-readable.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}
