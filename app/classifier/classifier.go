package classifier

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Sveder/awesome-web-dev-baseline/app/feed"
	"github.com/Sveder/awesome-web-dev-baseline/app/profile"
)

type Classifier struct {
	completer  Completer
	settings   profile.ClassifierSettings
	categories *Categories
}

func NewClassifier(completer Completer, settings profile.ClassifierSettings, categories []string) *Classifier {
	return &Classifier{
		completer:  completer,
		settings:   settings,
		categories: NewCategories(categories),
	}
}

type batchResponse struct {
	HasBaselineTools *bool     `json:"has_baseline_tools"`
	Tools            []rawTool `json:"tools"`
}

type rawTool struct {
	Post        flexFloat `json:"post"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	SourceURL   string    `json:"source_url"`
	Confidence  flexFloat `json:"confidence"`
}

// Classify submits one batch of posts and returns the tools the completer
// found in them. Posts without a body are left out of the prompt; when none
// remain no call is made. Failures are logged and yield no candidates.
func (c *Classifier) Classify(ctx context.Context, batch []feed.Post, known []string) []Candidate {
	posts := make([]feed.Post, 0, len(batch))
	for _, post := range batch {
		if post.HasBody() {
			posts = append(posts, post)
		}
	}

	if len(posts) == 0 {
		slog.Debug("Skipping classification, no post bodies in batch", "batch_size", len(batch))
		return nil
	}

	if limit := c.settings.KnownToolsLimit; limit > 0 && len(known) > limit {
		known = known[:limit]
	}

	prompt := buildBatchPrompt(posts, known, c.categories.Names())

	response, err := c.completer.Complete(ctx, prompt, c.settings.MaxTokens)
	if err != nil {
		slog.Warn("Classification request failed", "posts", len(posts), "error", err)
		return nil
	}

	tools, err := decodeTools(response)
	if err != nil {
		slog.Warn("Failed to parse classification response", "posts", len(posts), "error", err)
		return nil
	}

	candidates := make([]Candidate, 0, len(tools))
	for _, tool := range tools {
		candidate, ok := c.toCandidate(tool, posts)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
	}

	slog.Info("Batch classified", "posts", len(posts), "candidates", len(candidates))
	return candidates
}

// decodeTools accepts either a bare array of tools or the documented object.
// The first region of the response that decodes as one of them wins.
func decodeTools(response string) ([]rawTool, error) {
	regions := jsonRegions(response)
	if len(regions) == 0 {
		return nil, ErrNoJSON
	}

	var firstErr error
	for _, raw := range regions {
		tools, err := decodeToolsRegion(raw)
		if err == nil {
			return tools, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func decodeToolsRegion(raw string) ([]rawTool, error) {
	if strings.HasPrefix(raw, "[") {
		var tools []rawTool
		if err := decodeRegion(raw, &tools); err != nil {
			return nil, err
		}
		return tools, nil
	}

	var parsed batchResponse
	if err := decodeRegion(raw, &parsed); err != nil {
		return nil, err
	}
	if parsed.HasBaselineTools != nil && !*parsed.HasBaselineTools {
		return nil, nil
	}
	return parsed.Tools, nil
}

func (c *Classifier) toCandidate(tool rawTool, posts []feed.Post) (Candidate, bool) {
	name := strings.TrimSpace(tool.Name)
	url := strings.TrimSpace(tool.URL)
	if name == "" || url == "" {
		slog.Debug("Dropping candidate without name or URL", "name", name, "url", url)
		return Candidate{}, false
	}

	category, ok := c.categories.Resolve(tool.Category)
	if !ok {
		slog.Debug("Dropping candidate with unknown category", "name", name, "category", tool.Category)
		return Candidate{}, false
	}

	confidence := float64(tool.Confidence)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return Candidate{
		Name:        name,
		Category:    category,
		Description: strings.Join(strings.Fields(tool.Description), " "),
		URL:         url,
		Confidence:  confidence,
		Source:      sourceFor(tool, posts),
	}, true
}

func sourceFor(tool rawTool, posts []feed.Post) string {
	if idx := int(tool.Post); idx >= 1 && idx <= len(posts) {
		return posts[idx-1].URL
	}
	if source := strings.TrimSpace(tool.SourceURL); source != "" {
		return source
	}
	if len(posts) == 1 {
		return posts[0].URL
	}
	return ""
}
