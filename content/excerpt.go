package content

import (
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// DefaultExcerptLength matches the card preview of the list pages.
const DefaultExcerptLength = 150

var excerptSelector = cascadia.MustCompile("h1, h2, h3, h4, h5, h6, p, li, cite")

// Excerpt returns the plain text of stored post HTML, one space between
// blocks, cut to limit runes with a trailing "..." when shortened. A limit
// of zero or less disables truncation.
func Excerpt(src string, limit int) string {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return ""
	}

	var parts []string
	for _, n := range excerptSelector.MatchAll(root) {
		if matchedAncestor(n) {
			continue
		}
		if text := collapse(textContent(n)); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, collapse(textContent(root)))
	}

	text := strings.Join(parts, " ")
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:limit]), " ") + "..."
}

// matchedAncestor avoids repeating text of nested blocks, e.g. a p inside
// a li.
func matchedAncestor(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if excerptSelector.Match(p) {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
