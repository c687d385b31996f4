// Package textnorm canonicalizes Hebrew message text so that search and
// deduplication operate on a stable representation.
package textnorm

import (
	"strings"
	"unicode"
)

// isStripped reports whether r is removed outright during normalization:
// Hebrew combining marks (niqqud, cantillation, U+0591..U+05C7) and the
// LRM/RLM directional control characters Telegram clients sprinkle into
// mixed-direction text.
func isStripped(r rune) bool {
	if r >= 0x0591 && r <= 0x05C7 {
		return true
	}
	return r == 0x200E || r == 0x200F
}

// Normalize strips diacritical and directional marks and collapses every
// whitespace run into a single space, trimming the ends. It is pure and
// idempotent; empty input yields the empty string.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		switch {
		case isStripped(r):
			// dropped entirely, does not break a whitespace run
		case unicode.IsSpace(r):
			if !space {
				b.WriteRune(' ')
				space = true
			}
		default:
			b.WriteRune(r)
			space = false
		}
	}

	return strings.TrimSpace(b.String())
}
