package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ContentExtractor pulls the main text out of an article page: boilerplate
// regions are removed first, then content selectors are tried in order until
// one yields more than minChars characters.
type ContentExtractor struct {
	selectors []string
	strip     []string
	minChars  int
}

func NewContentExtractor(selectors, strip []string, minChars int) *ContentExtractor {
	return &ContentExtractor{
		selectors: selectors,
		strip:     strip,
		minChars:  minChars,
	}
}

func (e *ContentExtractor) Run(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	if len(e.strip) > 0 {
		doc.Find(strings.Join(e.strip, ", ")).Remove()
	}

	content := ""
	for _, selector := range e.selectors {
		node := doc.Find(selector).First()
		if node.Length() == 0 {
			continue
		}

		text := selectionText(node)
		if text == "" {
			continue
		}

		content = text
		if utf8.RuneCountInString(content) > e.minChars {
			slog.Debug("Content container selected", "selector", selector, "content_length", len(content))
			break
		}
	}

	if content == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	return content, nil
}

// selectionText joins every non-blank text node of the selection, one per
// line, trimming surrounding whitespace.
func selectionText(s *goquery.Selection) string {
	var parts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range s.Nodes {
		walk(n)
	}

	return strings.Join(parts, "\n")
}

// truncateRunes cuts s to at most max runes without splitting a character.
func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}

	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
