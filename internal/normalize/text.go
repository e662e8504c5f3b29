package normalize

import (
	"regexp"
	"strings"
)

var (
	// NBSP and narrow no-break space become ordinary spaces.
	hardSpaces = strings.NewReplacer(" ", " ", " ", " ")

	// Zero-width space/non-joiner/joiner, BOM, word joiner, soft hyphen.
	invisibleRe = regexp.MustCompile("[\u200b\u200c\u200d\ufeff\u2060\u00ad]")

	// Runs of whitespace (including newlines) and C0 control characters.
	whitespaceRunRe = regexp.MustCompile(`[\s\x00-\x1f]+`)
)

// Clean strips invisible characters and collapses whitespace so later regex
// matching is robust to mail-client encoding noise. Always returns a string,
// empty if the input is empty.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}
	s := hardSpaces.Replace(raw)
	s = invisibleRe.ReplaceAllString(s, "")
	s = whitespaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
