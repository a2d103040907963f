package text

import "unicode/utf8"

// Truncate shortens s to at most max runes and marks the cut with "...".
// A non-positive max leaves s untouched.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
