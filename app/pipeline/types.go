package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Sveder/awesome-web-dev-baseline/app/classifier"
	"github.com/Sveder/awesome-web-dev-baseline/app/document"
	"github.com/Sveder/awesome-web-dev-baseline/app/feed"
)

type PostSource interface {
	Read(ctx context.Context) []feed.Post
}

type ContentSource interface {
	Fetch(ctx context.Context, url string) string
}

// Recorder persists finished runs. Failures are logged and never fail a run.
type Recorder interface {
	SaveRun(ctx context.Context, summary *Summary) error
}

// Candidate verdicts.
const (
	VerdictAccepted      = "accepted"
	VerdictDuplicate     = "duplicate"
	VerdictLowConfidence = "low_confidence"
	VerdictNoSection     = "no_section"
)

// Decision records what happened to one classifier candidate.
type Decision struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	URL         string  `json:"url"`
	Description string  `json:"description,omitempty"`
	Source      string  `json:"source"`
	Confidence  float64 `json:"confidence"`
	Verdict     string  `json:"verdict"`
	Reason      string  `json:"reason,omitempty"`
}

func newDecision(c classifier.Candidate, verdict, reason string) Decision {
	return Decision{
		Name:        c.Name,
		Category:    c.Category,
		URL:         c.URL,
		Description: c.Description,
		Source:      c.Source,
		Confidence:  c.Confidence,
		Verdict:     verdict,
		Reason:      reason,
	}
}

// Summary describes one pipeline run.
type Summary struct {
	ID               string           `json:"id"`
	StartedAt        time.Time        `json:"started_at"`
	FinishedAt       time.Time        `json:"finished_at"`
	Posts            int              `json:"posts"`
	PostsWithContent int              `json:"posts_with_content"`
	Batches          int              `json:"batches"`
	Candidates       int              `json:"candidates"`
	Duplicates       int              `json:"duplicates"`
	LowConfidence    int              `json:"low_confidence"`
	Added            []document.Entry `json:"added"`
	SkippedSections  []string         `json:"skipped_sections"`
	Decisions        []Decision       `json:"decisions"`
	Written          bool             `json:"written"`
	DryRun           bool             `json:"dry_run"`
	Error            string           `json:"error,omitempty"`
}

func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Report writes a human-readable account of the run.
func (s *Summary) Report(w io.Writer) {
	fmt.Fprintf(w, "Run %s: %d posts, %d with content, %d batches, %d candidates\n",
		s.ID, s.Posts, s.PostsWithContent, s.Batches, s.Candidates)
	fmt.Fprintf(w, "Rejected: %d duplicates, %d below confidence threshold\n", s.Duplicates, s.LowConfidence)

	if len(s.Added) == 0 {
		fmt.Fprintln(w, "No new tools added")
	} else {
		fmt.Fprintf(w, "Added %d tools:\n", len(s.Added))
		for _, entry := range s.Added {
			fmt.Fprintf(w, "  - %s (%s) -> %s\n", entry.Name, entry.URL, entry.Section)
		}
	}

	for _, section := range s.SkippedSections {
		fmt.Fprintf(w, "Skipped: no section for category %q\n", section)
	}

	switch {
	case s.DryRun:
		fmt.Fprintln(w, "Dry run: document not written")
	case s.Written:
		fmt.Fprintln(w, "Document updated")
	}
}
