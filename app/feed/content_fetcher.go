package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Sveder/awesome-web-dev-baseline/app/profile"
)

const maxPageBytes = 5 << 20

// ContentFetcher downloads a post page and extracts its readable body,
// truncated to the configured maximum length.
type ContentFetcher struct {
	settings    profile.ContentSettings
	httpClient  *http.Client
	selectors   *ContentExtractor
	readability *ReadabilityExtractor
	userAgent   string
}

func NewContentFetcher(settings profile.ContentSettings, httpClient *http.Client, userAgent string) *ContentFetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ContentFetcher{
		settings:    settings,
		httpClient:  httpClient,
		selectors:   NewContentExtractor(settings.Selectors, settings.Strip, settings.MinChars),
		readability: NewReadabilityExtractor(),
		userAgent:   userAgent,
	}
}

// Fetch never fails: any retrieval or extraction error is logged and an
// empty body is returned so the post is skipped.
func (f *ContentFetcher) Fetch(ctx context.Context, url string) string {
	body, err := f.FetchContent(ctx, url)
	if err != nil {
		slog.Warn("Failed to fetch post content", "url", url, "error", err)
		return ""
	}
	return body
}

func (f *ContentFetcher) FetchContent(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("post has no link")
	}

	data, err := f.fetchArticle(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article content: %w", err)
	}

	text, err := f.extract(data, url)
	if err != nil {
		return "", err
	}

	text = truncateRunes(text, f.settings.MaxChars)
	slog.Debug("Post content extracted", "url", url, "content_length", len(text))
	return text, nil
}

func (f *ContentFetcher) extract(data []byte, url string) (string, error) {
	if f.settings.Extractor == ExtractorReadability {
		text, err := f.readability.Run(data, url)
		if err == nil {
			return text, nil
		}
		slog.Debug("Readability extraction failed, falling back to selectors", "url", url, "error", err)
	}

	text, err := f.selectors.Run(data)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}
	return text, nil
}

func (f *ContentFetcher) fetchArticle(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.settings.GetTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if contentType != "" && !strings.Contains(contentType, "html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
