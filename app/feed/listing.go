package feed

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var defaultListingSelectors = []string{
	`article a[href*="/blog/"]`,
	`.post-card a[href*="/blog/"]`,
	`a[href*="/blog/"][class*="card"]`,
	`a[href*="/articles/"]`,
}

const minListingTitleLength = 10

// ListingParser extracts post links from an HTML index page for sites that
// do not publish a syndication feed.
type ListingParser struct {
	selectors []string
}

func NewListingParser(selectors []string) *ListingParser {
	if len(selectors) == 0 {
		selectors = defaultListingSelectors
	}
	return &ListingParser{selectors: selectors}
}

func (p *ListingParser) Run(data []byte, pageURL string, maxPosts int) ([]Post, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listing url %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}

	var posts []Post
	seen := map[string]struct{}{}

	for _, selector := range p.selectors {
		doc.Find(selector).EachWithBreak(func(_ int, link *goquery.Selection) bool {
			href := strings.TrimSpace(link.AttrOr("href", ""))
			if href == "" {
				return true
			}
			if _, ok := seen[href]; ok {
				return true
			}

			title := strings.TrimSpace(link.Text())
			if title == "" {
				title = strings.TrimSpace(link.AttrOr("title", ""))
			}
			if len(title) <= minListingTitleLength {
				return true
			}

			ref, err := url.Parse(href)
			if err != nil {
				return true
			}

			seen[href] = struct{}{}
			posts = append(posts, Post{
				URL:   base.ResolveReference(ref).String(),
				Title: collapseSpace(title),
			})

			return maxPosts <= 0 || len(posts) < maxPosts
		})

		if maxPosts > 0 && len(posts) >= maxPosts {
			break
		}
	}

	return posts, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
