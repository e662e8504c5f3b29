package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	aliasRe    = regexp.MustCompile(`\s*\(.*?\)\s*`)
	suffixRe   = regexp.MustCompile(`\s+-\s*Preply lesson\s*$`)
	multiSpace = regexp.MustCompile(`\s+`)
)

// CanonicalName reduces a human name from either source (mail body or
// calendar summary) to a stable lower-case join key. Pure and total; garbage
// in yields an empty or best-effort key, never an error.
//
// The final step drops everything after the first token when the second token
// is a single character: calendar titles sometimes append a surname initial
// ("camila s") that the mail source spells differently or omits, and
// first-name matching is worth more than exact-but-failing matches.
func CanonicalName(raw string) string {
	s := aliasRe.ReplaceAllString(raw, " ")
	s = suffixRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ".", "") // "Lee S." -> "Lee S"
	s = multiSpace.ReplaceAllString(s, " ")
	s = strings.ToLower(strings.TrimSpace(s))

	tokens := strings.Split(s, " ")
	if len(tokens) >= 2 && utf8.RuneCountInString(tokens[1]) == 1 {
		s = tokens[0]
	}
	return s
}
