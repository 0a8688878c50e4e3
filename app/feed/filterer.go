package feed

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Sveder/awesome-web-dev-baseline/app/profile"
)

type Filterer struct {
	filters []profile.FilterSettings
}

func NewFilterer(filters []profile.FilterSettings) *Filterer {
	return &Filterer{filters: filters}
}

// Run returns the posts that pass every filter, in their original order.
func (f *Filterer) Run(posts []Post) []Post {
	if len(f.filters) == 0 {
		return posts
	}

	kept := make([]Post, 0, len(posts))
	for _, post := range posts {
		if isFiltered, reason := f.applyFilters(post); isFiltered {
			slog.Debug("Post filtered", "url", post.URL, "reason", reason)
			continue
		}
		kept = append(kept, post)
	}

	return kept
}

func (f *Filterer) applyFilters(post Post) (bool, string) {
	for _, filter := range f.filters {
		value := f.getFieldValue(post, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(post Post, field string) string {
	switch field {
	case "title":
		return post.Title
	case "summary":
		return post.Summary
	case "link":
		return post.URL
	default:
		return ""
	}
}
