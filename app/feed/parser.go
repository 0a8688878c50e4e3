package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses RSS, Atom or JSON feed data and returns posts in feed order.
func (p *Parser) Run(data []byte) (*Metadata, []Post, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
		Language:    parsed.Language,
	}

	posts := make([]Post, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		post, ok := p.normalizeItem(item)
		if !ok {
			continue
		}
		posts = append(posts, post)
	}

	return metadata, posts, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) (Post, bool) {
	link := strings.TrimSpace(cmp.Or(item.Link, firstLink(item.Links)))
	if link == "" {
		return Post{}, false
	}

	post := Post{
		URL:     link,
		Title:   strings.TrimSpace(item.Title),
		Summary: strings.TrimSpace(item.Description),
	}

	if item.PublishedParsed != nil {
		published := *item.PublishedParsed
		post.Published = &published
	} else if item.UpdatedParsed != nil {
		updated := *item.UpdatedParsed
		post.Published = &updated
	}

	return post, true
}

func firstLink(links []string) string {
	for _, link := range links {
		if strings.TrimSpace(link) != "" {
			return link
		}
	}
	return ""
}
