// Package colorhex normalizes the six-digit identifying colors users pick.
package colorhex

import (
	"strings"
	"unicode/utf8"
)

// Length is the number of hex digits in a complete color
const Length = 6

// Normalize keeps only hex digits, upper-cases them, and cuts the result to
// Length characters. "#1a2b3c" becomes "1A2B3C"; "zz12" becomes "12".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(Length)
	for _, r := range s {
		if b.Len() == Length {
			break
		}
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'F':
			b.WriteRune(r)
		case r >= 'a' && r <= 'f':
			b.WriteRune(r - 'a' + 'A')
		}
	}
	return b.String()
}

// Valid reports whether s is already a complete normalized color
func Valid(s string) bool {
	return utf8.RuneCountInString(s) == Length && Normalize(s) == s
}

// Parse normalizes s and reports whether the result is complete
func Parse(s string) (string, bool) {
	n := Normalize(s)
	return n, len(n) == Length
}
