package database

import (
	"time"
)

// Run represents a pipeline run record in the database
type Run struct {
	ID               string     `json:"id"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       time.Time  `json:"finished_at"`
	Posts            int        `json:"posts"`
	PostsWithContent int        `json:"posts_with_content"`
	Batches          int        `json:"batches"`
	Candidates       int        `json:"candidates"`
	Duplicates       int        `json:"duplicates"`
	LowConfidence    int        `json:"low_confidence"`
	Added            int        `json:"added"`
	SkippedSections  []string   `json:"skipped_sections"`
	Written          bool       `json:"written"`
	DryRun           bool       `json:"dry_run"`
	Error            string     `json:"error,omitempty"`
	Decisions        []Decision `json:"decisions,omitempty"`
}

// Decision represents the verdict on one candidate within a run
type Decision struct {
	Position    int     `json:"position"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	URL         string  `json:"url"`
	Description string  `json:"description,omitempty"`
	Source      string  `json:"source"`
	Confidence  float64 `json:"confidence"`
	Verdict     string  `json:"verdict"`
	Reason      string  `json:"reason,omitempty"`
}

// AddedTool is an accepted decision from a run that wrote the document
type AddedTool struct {
	RunID   string    `json:"run_id"`
	AddedAt time.Time `json:"added_at"`
	Decision
}
