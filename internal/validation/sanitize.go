package validation

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxContentLength is the hard cap applied to journal text after sanitization.
const MaxContentLength = 10000

// SanitizeContent normalizes journal input before validation:
// angle brackets are stripped (entries are never rendered as HTML, this
// keeps stored content inert), text is NFC-normalized and trimmed, and
// anything past MaxContentLength runes is truncated.
func SanitizeContent(s string) string {
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	s = norm.NFC.String(s)
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) > MaxContentLength {
		s = string(runes[:MaxContentLength])
	}

	return s
}
