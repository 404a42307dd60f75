package util

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun    = regexp.MustCompile(`\s+`)
	standaloneNumber = regexp.MustCompile(`\s+\d+\s+`)
)

// NormalizeText collapses whitespace runs to single spaces and strips
// standalone numeric tokens, which in extracted PDF text are almost always
// page numbers. Legitimate standalone numbers (equation labels, years on
// their own line) get removed too; a known limitation of the heuristic.
func NormalizeText(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = standaloneNumber.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
