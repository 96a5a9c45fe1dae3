// internal/browser/snapshot.go
package browser

import (
	"strings"

	"golang.org/x/net/html"
)

// VisibleText extracts the rendered text of an HTML document, skipping
// script/style/template subtrees and collapsing whitespace. Used for
// decision-point indicator matching and failure diagnostics without extra
// browser round trips.
func VisibleText(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String()
}

// ContainsAnyText reports whether the document's visible text contains any of
// the given indicators, case-insensitively.
func ContainsAnyText(rawHTML string, indicators []string) bool {
	text := strings.ToLower(VisibleText(rawHTML))
	for _, ind := range indicators {
		if ind != "" && strings.Contains(text, strings.ToLower(ind)) {
			return true
		}
	}
	return false
}
