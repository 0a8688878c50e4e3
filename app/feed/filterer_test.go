package feed

import (
	"testing"

	"github.com/Sveder/awesome-web-dev-baseline/app/profile"
)

func testPosts() []Post {
	return []Post{
		{URL: "https://web.dev/blog/baseline-tools", Title: "New Baseline tooling", Summary: "Linters that know Baseline"},
		{URL: "https://web.dev/blog/sponsored", Title: "Sponsored: hosting deals", Summary: "Buy now"},
		{URL: "https://web.dev/shows/episode-12", Title: "Podcast episode 12", Summary: "Talking CSS"},
	}
}

func TestFiltererNoFilters(t *testing.T) {
	posts := testPosts()

	result := NewFilterer(nil).Run(posts)

	if len(result) != 3 {
		t.Errorf("Expected 3 posts, got %d", len(result))
	}
}

func TestFiltererExclude(t *testing.T) {
	filterer := NewFilterer([]profile.FilterSettings{
		{Field: "title", Excludes: []string{"SPONSORED"}},
	})

	result := filterer.Run(testPosts())

	if len(result) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(result))
	}
	if result[0].Title != "New Baseline tooling" || result[1].Title != "Podcast episode 12" {
		t.Errorf("Expected order to be preserved, got %q and %q", result[0].Title, result[1].Title)
	}
}

func TestFiltererInclude(t *testing.T) {
	filterer := NewFilterer([]profile.FilterSettings{
		{Field: "link", Includes: []string{"/blog/"}},
	})

	result := filterer.Run(testPosts())

	if len(result) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(result))
	}
	for _, post := range result {
		if post.Title == "Podcast episode 12" {
			t.Error("Expected post outside /blog/ to be filtered")
		}
	}
}

func TestFiltererMultipleFilters(t *testing.T) {
	filterer := NewFilterer([]profile.FilterSettings{
		{Field: "link", Includes: []string{"/blog/"}},
		{Field: "summary", Excludes: []string{"buy now"}},
	})

	result := filterer.Run(testPosts())

	if len(result) != 1 || result[0].Title != "New Baseline tooling" {
		t.Errorf("Expected only the tooling post, got %+v", result)
	}
}

func TestFiltererReason(t *testing.T) {
	filterer := NewFilterer([]profile.FilterSettings{
		{Field: "title", Includes: []string{"baseline", "css"}},
	})

	isFiltered, reason := filterer.applyFilters(Post{Title: "Hosting deals"})
	if !isFiltered {
		t.Fatal("Expected post to be filtered")
	}
	expected := "Excluded by title filter: does not contain any of [baseline css]"
	if reason != expected {
		t.Errorf("Expected reason '%s', got '%s'", expected, reason)
	}

	isFiltered, reason = filterer.applyFilters(Post{Title: "CSS news"})
	if isFiltered || reason != "" {
		t.Errorf("Expected post to pass, got filtered=%v reason=%q", isFiltered, reason)
	}

	if NewFilterer(nil).getFieldValue(Post{Title: "x"}, "authors") != "" {
		t.Error("Expected unknown field to be empty")
	}
}
