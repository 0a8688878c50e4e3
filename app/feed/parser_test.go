package feed

import (
	"testing"
	"time"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <language>en-us</language>
    <item>
      <title>Newest Post</title>
      <link>https://example.com/blog/newest</link>
      <description>Newest summary</description>
      <guid>item-1</guid>
      <pubDate>Mon, 03 Jul 2023 11:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Older Post</title>
      <link>https://example.com/blog/older</link>
      <guid>item-2</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	metadata, posts, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if metadata.Title != "Test Feed" {
		t.Errorf("Expected title 'Test Feed', got: %s", metadata.Title)
	}
	if metadata.Language != "en-us" {
		t.Errorf("Expected language 'en-us', got: %s", metadata.Language)
	}

	if len(posts) != 2 {
		t.Fatalf("Expected 2 posts, got: %d", len(posts))
	}

	first := posts[0]
	if first.URL != "https://example.com/blog/newest" {
		t.Errorf("Expected feed order to be preserved, got first URL: %s", first.URL)
	}
	if first.Title != "Newest Post" {
		t.Errorf("Expected title 'Newest Post', got: %s", first.Title)
	}
	if first.Summary != "Newest summary" {
		t.Errorf("Expected summary 'Newest summary', got: %s", first.Summary)
	}
	if first.Published == nil {
		t.Fatal("Expected published time to be parsed")
	}
	want := time.Date(2023, time.July, 3, 11, 0, 0, 0, time.UTC)
	if !first.Published.Equal(want) {
		t.Errorf("Expected published %v, got %v", want, *first.Published)
	}
	if first.HasBody() {
		t.Error("Expected body to be unset after parsing")
	}

	if posts[1].Summary != "" {
		t.Errorf("Expected empty summary for second post, got: %s", posts[1].Summary)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <link href="https://example.com"/>
  <updated>2023-07-03T12:00:00Z</updated>
  <id>urn:uuid:1234567890</id>
  <entry>
    <title>Test Entry</title>
    <link href="https://example.com/entry1"/>
    <id>urn:uuid:entry-1</id>
    <updated>2023-07-03T10:00:00Z</updated>
    <summary>Entry summary</summary>
  </entry>
</feed>`

	parser := NewParser()
	metadata, posts, err := parser.Run([]byte(atomData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if metadata.Title != "Test Atom Feed" {
		t.Errorf("Expected title 'Test Atom Feed', got: %s", metadata.Title)
	}

	if len(posts) != 1 {
		t.Fatalf("Expected 1 post, got: %d", len(posts))
	}

	post := posts[0]
	if post.URL != "https://example.com/entry1" {
		t.Errorf("Expected link 'https://example.com/entry1', got: %s", post.URL)
	}
	if post.Published == nil {
		t.Error("Expected updated time to be used when published is missing")
	}
}

func TestParseSkipsItemsWithoutLink(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item><title>No link</title></item>
    <item><title>With link</title><link>https://example.com/a</link></item>
  </channel>
</rss>`

	_, posts, err := NewParser().Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(posts) != 1 {
		t.Fatalf("Expected 1 post, got: %d", len(posts))
	}
	if posts[0].Title != "With link" {
		t.Errorf("Expected 'With link', got: %s", posts[0].Title)
	}
}

func TestParseInvalidFeed(t *testing.T) {
	parser := NewParser()
	_, _, err := parser.Run([]byte("invalid xml"))

	if err == nil {
		t.Error("Expected error for invalid XML")
	}
}
