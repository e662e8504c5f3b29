package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/ramsbaby/lessonledger/internal/normalize"
)

// bodyText flattens the preferred body part of msg to cleaned plain text.
// HTML wins over plain text because the booking mail is HTML-first; the plain
// part is often a truncated preview.
func bodyText(msg Message) string {
	if h, ok := msg.HTML(); ok && strings.TrimSpace(h) != "" {
		return normalize.Clean(flattenHTML(h))
	}
	if p, ok := msg.PlainText(); ok {
		return normalize.Clean(p)
	}
	return ""
}

// flattenHTML reduces an HTML document to its visible text. Block-ish tags
// become spaces so labels in adjacent cells do not fuse together.
func flattenHTML(src string) string {
	tok := html.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	skipDepth := 0 // inside <script> or <style>

	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := tok.TagName()
			switch string(name) {
			case "script", "style":
				if tt == html.StartTagToken {
					skipDepth++
				} else if tt == html.EndTagToken && skipDepth > 0 {
					skipDepth--
				}
			case "br", "p", "div", "td", "tr", "li", "table", "h1", "h2", "h3":
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tok.Text())
				b.WriteByte(' ')
			}
		}
	}
}
