package profile

// Profile describes one discovery pipeline: where posts come from, how they
// are classified and deduplicated, and how the document is updated.
type Profile struct {
	Feed       FeedSettings       `yaml:"feed"`
	Content    ContentSettings    `yaml:"content"`
	Classifier ClassifierSettings `yaml:"classifier"`
	Dedup      DedupSettings      `yaml:"dedup"`
	Pacing     PacingSettings     `yaml:"pacing"`
	Document   DocumentSettings   `yaml:"document"`
	Categories []string           `yaml:"categories"`
}

type FeedSettings struct {
	URL       string           `yaml:"url"`
	Kind      string           `yaml:"kind"` // feed or listing
	MaxPosts  int              `yaml:"max_posts"`
	Timeout   int              `yaml:"timeout"` // seconds
	Selectors []string         `yaml:"selectors"`
	Filters   []FilterSettings `yaml:"filters"`
}

// FilterSettings drops posts before they reach the classifier. Matching is a
// case-insensitive substring test on the named field.
type FilterSettings struct {
	Field    string   `yaml:"field"` // title, summary or link
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

type ContentSettings struct {
	MaxChars  int      `yaml:"max_chars"`
	MinChars  int      `yaml:"min_chars"`
	Selectors []string `yaml:"selectors"`
	Strip     []string `yaml:"strip"`
	Extractor string   `yaml:"extractor"` // selectors or readability
	Timeout   int      `yaml:"timeout"`   // seconds
}

type ClassifierSettings struct {
	Model           string  `yaml:"model"`
	BatchSize       int     `yaml:"batch_size"`
	MaxTokens       int     `yaml:"max_tokens"`
	Temperature     *float64 `yaml:"temperature"`
	MinConfidence   float64 `yaml:"min_confidence"`
	KnownToolsLimit int     `yaml:"known_tools_limit"`
}

type DedupSettings struct {
	Semantic    *bool    `yaml:"semantic"`
	Sample      int      `yaml:"sample"`
	MaxTokens   int      `yaml:"max_tokens"`
	SharedHosts []string `yaml:"shared_hosts"`
}

type PacingSettings struct {
	PostDelay  *int `yaml:"post_delay_ms"`
	BatchDelay *int `yaml:"batch_delay_ms"`
}

type DocumentSettings struct {
	OnMissingSection string `yaml:"on_missing_section"` // skip or append
}
