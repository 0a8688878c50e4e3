package classifier

import (
	"fmt"
	"strings"

	"github.com/Sveder/awesome-web-dev-baseline/app/feed"
)

const batchPromptHeader = `You are reviewing web development blog posts for developer tools that help teams adopt Baseline, the cross-browser feature availability status published by the W3C WebDX Community Group.

A tool qualifies when it checks, reports, polyfills, lints or otherwise surfaces Baseline status or browser compatibility data. Ignore tools that are only mentioned in passing and tools that are already listed below.`

const batchPromptSchema = `Respond with JSON only, in exactly this shape:
{
  "has_baseline_tools": true,
  "tools": [
    {
      "post": 1,
      "name": "Tool Name",
      "category": "One of the categories above",
      "description": "One sentence describing what the tool does for Baseline",
      "url": "https://tool.example/",
      "confidence": 0.85
    }
  ]
}
"post" is the number of the post the tool was found in. "confidence" is between 0 and 1. If no post mentions a qualifying tool, respond with {"has_baseline_tools": false, "tools": []}.`

func buildBatchPrompt(posts []feed.Post, known []string, categories []string) string {
	var b strings.Builder

	b.WriteString(batchPromptHeader)
	b.WriteString("\n\nCategories:\n")
	for _, category := range categories {
		fmt.Fprintf(&b, "- %s\n", category)
	}

	b.WriteString("\nAlready listed tools:\n")
	if len(known) == 0 {
		b.WriteString("(none)\n")
	} else {
		b.WriteString(strings.Join(known, ", "))
		b.WriteString("\n")
	}

	for i, post := range posts {
		fmt.Fprintf(&b, "\n--- Post %d ---\nTitle: %s\nURL: %s\n\n%s\n", i+1, post.Title, post.URL, post.Body)
	}

	b.WriteString("\n")
	b.WriteString(batchPromptSchema)
	return b.String()
}
