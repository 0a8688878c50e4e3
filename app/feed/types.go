package feed

import (
	"errors"
	"time"
)

var ErrFeedUnavailable = errors.New("feed unavailable")

// Post is a single entry discovered in the feed. Body is attached once by the
// content fetcher and left untouched afterwards.
type Post struct {
	URL       string
	Title     string
	Summary   string
	Published *time.Time
	Body      string
}

func (p Post) HasBody() bool {
	return p.Body != ""
}

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

// Source kinds understood by the reader.
const (
	KindFeed    = "feed"
	KindListing = "listing"
)

// Extractor names understood by the content fetcher.
const (
	ExtractorSelectors   = "selectors"
	ExtractorReadability = "readability"
)
