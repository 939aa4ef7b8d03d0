// Package sanitize strips markup from free-text input before it is stored.
package sanitize

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Policies are safe for concurrent use once built.
var strict = bluemonday.StrictPolicy()

// rawTextTags matches script and style tags. The strict policy discards
// everything between them, so they are unwrapped first to keep their text.
var rawTextTags = regexp.MustCompile(`(?i)</?(script|style)\b[^>]*>`)

// Text removes every HTML element from s and keeps the text inside, including
// script and style bodies. Entities are unescaped unless that would bring back
// angle brackets.
func Text(s string) string {
	cleaned := strict.Sanitize(rawTextTags.ReplaceAllString(s, ""))
	plain := html.UnescapeString(cleaned)
	if strings.ContainsAny(plain, "<>") {
		plain = cleaned
	}
	return strings.TrimSpace(plain)
}
