package profile

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFeedURL       = "https://web.dev/static/blog/feed.xml"
	DefaultMaxPosts      = 15
	DefaultMaxChars      = 8000
	DefaultMinChars      = 500
	DefaultModel         = "gpt-4o-mini"
	DefaultBatchSize     = 5
	DefaultMaxTokens     = 2000
	DefaultTemperature   = 0.3
	DefaultMinConfidence = 0.7
	DefaultKnownTools    = 200
	DefaultDedupSample   = 10
	DefaultDedupTokens   = 200
	DefaultPostDelay     = 1000 // milliseconds
	DefaultBatchDelay    = 1000 // milliseconds

	MissingSectionSkip   = "skip"
	MissingSectionAppend = "append"
)

// DefaultCategories mirrors the section headings of the curated list.
var DefaultCategories = []string{
	"Development Tools",
	"Code Editors & IDEs",
	"Build Tools & Bundlers",
	"Linting & Code Quality",
	"CSS Tools",
	"Browser Support Tools",
	"AI-Powered Development",
	"Performance & Monitoring",
	"Testing Tools",
	"Frameworks & Libraries",
}

var DefaultContentSelectors = []string{"article", "main", ".post-content", ".content", "body"}

var DefaultStripElements = []string{"nav", "aside", "footer", "header", "script", "style", "noscript"}

// CommonSharedHosts lists hosts that serve many unrelated projects. Profiles
// opt in through dedup.shared_hosts; nothing is shared by default.
var CommonSharedHosts = []string{"github.com", "gitlab.com", "npmjs.com", "marketplace.visualstudio.com"}

// Loader reads a pipeline profile from a YAML file. An empty path yields the
// built-in defaults.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

func (l *Loader) Load() (*Profile, error) {
	if strings.TrimSpace(l.path) == "" {
		p := Default()
		return p, nil
	}

	p, err := l.loadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", l.path, err)
	}

	if err := Validate(p); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", l.path, err)
	}

	slog.Debug("Profile loaded", "path", l.path, "feed", p.Feed.URL, "categories", len(p.Categories))
	return p, nil
}

// Default returns a profile with every setting at its default value.
func Default() *Profile {
	p := &Profile{}
	setDefaults(p)
	return p
}

func (l *Loader) loadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&p)

	return &p, nil
}

func setDefaults(p *Profile) {
	if p.Feed.URL == "" {
		p.Feed.URL = DefaultFeedURL
	}
	if p.Feed.Kind == "" {
		p.Feed.Kind = "feed"
	}
	if p.Feed.MaxPosts == 0 {
		p.Feed.MaxPosts = DefaultMaxPosts
	}
	if p.Feed.Timeout == 0 {
		p.Feed.Timeout = 30
	}

	if p.Content.MaxChars == 0 {
		p.Content.MaxChars = DefaultMaxChars
	}
	if p.Content.MinChars == 0 {
		p.Content.MinChars = DefaultMinChars
	}
	if len(p.Content.Selectors) == 0 {
		p.Content.Selectors = append([]string(nil), DefaultContentSelectors...)
	}
	if len(p.Content.Strip) == 0 {
		p.Content.Strip = append([]string(nil), DefaultStripElements...)
	}
	if p.Content.Extractor == "" {
		p.Content.Extractor = "selectors"
	}
	if p.Content.Timeout == 0 {
		p.Content.Timeout = 30
	}

	if p.Classifier.Model == "" {
		p.Classifier.Model = DefaultModel
	}
	if p.Classifier.BatchSize == 0 {
		p.Classifier.BatchSize = DefaultBatchSize
	}
	if p.Classifier.MaxTokens == 0 {
		p.Classifier.MaxTokens = DefaultMaxTokens
	}
	if p.Classifier.Temperature == nil {
		temperature := DefaultTemperature
		p.Classifier.Temperature = &temperature
	}
	if p.Classifier.MinConfidence == 0 {
		p.Classifier.MinConfidence = DefaultMinConfidence
	}
	if p.Classifier.KnownToolsLimit == 0 {
		p.Classifier.KnownToolsLimit = DefaultKnownTools
	}

	if p.Dedup.Sample == 0 {
		p.Dedup.Sample = DefaultDedupSample
	}
	if p.Dedup.MaxTokens == 0 {
		p.Dedup.MaxTokens = DefaultDedupTokens
	}

	if p.Pacing.PostDelay == nil {
		postDelay := DefaultPostDelay
		p.Pacing.PostDelay = &postDelay
	}
	if p.Pacing.BatchDelay == nil {
		batchDelay := DefaultBatchDelay
		p.Pacing.BatchDelay = &batchDelay
	}

	if p.Document.OnMissingSection == "" {
		p.Document.OnMissingSection = MissingSectionSkip
	}

	if len(p.Categories) == 0 {
		p.Categories = append([]string(nil), DefaultCategories...)
	}
}

// Validate checks a profile after defaults have been applied.
func Validate(p *Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	if p.Feed.URL == "" {
		return fmt.Errorf("feed URL is required")
	}

	switch p.Feed.Kind {
	case "feed", "listing":
	default:
		return fmt.Errorf("invalid feed kind: %s", p.Feed.Kind)
	}

	for i, filter := range p.Feed.Filters {
		switch filter.Field {
		case "title", "summary", "link":
		default:
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d has no includes or excludes", i)
		}
	}

	switch p.Content.Extractor {
	case "selectors", "readability":
	default:
		return fmt.Errorf("invalid content extractor: %s", p.Content.Extractor)
	}

	switch p.Document.OnMissingSection {
	case MissingSectionSkip, MissingSectionAppend:
	default:
		return fmt.Errorf("invalid on_missing_section policy: %s", p.Document.OnMissingSection)
	}

	nonNegativeFields := map[string]int{
		"max posts":       p.Feed.MaxPosts,
		"feed timeout":    p.Feed.Timeout,
		"max chars":       p.Content.MaxChars,
		"min chars":       p.Content.MinChars,
		"content timeout": p.Content.Timeout,
		"batch size":      p.Classifier.BatchSize,
		"max tokens":      p.Classifier.MaxTokens,
		"dedup sample":    p.Dedup.Sample,
		"post delay":      intValue(p.Pacing.PostDelay),
		"batch delay":     intValue(p.Pacing.BatchDelay),
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if p.Classifier.BatchSize == 0 {
		return fmt.Errorf("batch size must be positive")
	}

	if temperature := p.Classifier.GetTemperature(); temperature < 0 || temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2], got %v", temperature)
	}

	if p.Classifier.MinConfidence < 0 || p.Classifier.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be within [0, 1], got %v", p.Classifier.MinConfidence)
	}

	seen := map[string]bool{}
	for i, category := range p.Categories {
		name := strings.TrimSpace(category)
		if name == "" {
			return fmt.Errorf("empty category at index %d", i)
		}
		if seen[strings.ToLower(name)] {
			return fmt.Errorf("duplicate category: %s", name)
		}
		seen[strings.ToLower(name)] = true
	}

	return nil
}

func intValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
