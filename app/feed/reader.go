package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Sveder/awesome-web-dev-baseline/app/profile"
)

const maxFeedBytes = 10 << 20

// Reader fetches the configured source and turns it into a bounded list of
// posts in source order.
type Reader struct {
	settings      profile.FeedSettings
	httpClient    *http.Client
	parser        *Parser
	listingParser *ListingParser
	filterer      *Filterer
	userAgent     string
}

func NewReader(settings profile.FeedSettings, httpClient *http.Client, userAgent string) *Reader {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Reader{
		settings:      settings,
		httpClient:    httpClient,
		parser:        NewParser(),
		listingParser: NewListingParser(settings.Selectors),
		filterer:      NewFilterer(settings.Filters),
		userAgent:     userAgent,
	}
}

// Fetch returns up to MaxPosts posts. Filters apply to that window, so fewer
// posts may come back. Every failure wraps ErrFeedUnavailable.
func (r *Reader) Fetch(ctx context.Context) ([]Post, error) {
	data, err := r.fetch(ctx, r.settings.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	var posts []Post
	switch r.settings.Kind {
	case KindListing:
		posts, err = r.listingParser.Run(data, r.settings.URL, r.settings.MaxPosts)
	default:
		var metadata *Metadata
		metadata, posts, err = r.parser.Run(data)
		if err == nil {
			slog.Debug("Feed parsed", "title", metadata.Title, "link", metadata.Link, "language", metadata.Language, "items", len(posts))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	if r.settings.MaxPosts > 0 && len(posts) > r.settings.MaxPosts {
		posts = posts[:r.settings.MaxPosts]
	}

	return r.filterer.Run(posts), nil
}

// Read is the soft variant of Fetch: failures are logged and reported as an
// empty result so the caller can finish the run cleanly.
func (r *Reader) Read(ctx context.Context) []Post {
	posts, err := r.Fetch(ctx)
	if err != nil {
		slog.Error("Failed to read feed", "url", r.settings.URL, "error", err)
		return []Post{}
	}

	slog.Info("Feed read", "url", r.settings.URL, "kind", r.settings.Kind, "posts", len(posts))
	return posts
}

func (r *Reader) fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, r.settings.GetTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
