package util

import (
	"strings"
	"unicode"
)

// SplitSentences breaks text on sentence terminators. A terminator only ends
// a sentence when followed by whitespace or end of input, so decimal points
// and section numbers like "3.2" stay intact.
func SplitSentences(s string) []string {
	out := make([]string, 0, 16)
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		b.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		x := strings.TrimSpace(b.String())
		if x != "" {
			out = append(out, x)
		}
		b.Reset()
	}
	rest := strings.TrimSpace(b.String())
	if rest != "" {
		out = append(out, rest)
	}
	return out
}
