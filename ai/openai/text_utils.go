package openai

import "strings"

// scrubString strips punctuation that confuses small classifier models and
// trims surrounding whitespace.
func scrubString(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`.,!?;:"'()[]{}`, r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
