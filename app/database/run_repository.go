package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Sveder/awesome-web-dev-baseline/app/pipeline"
)

// Timestamps are stored as fixed-width UTC text so they sort correctly.
const timeLayout = "2006-01-02 15:04:05.000000"

var runColumns = []string{
	"id", "started_at", "finished_at", "posts", "posts_with_content", "batches",
	"candidates", "duplicates", "low_confidence", "added", "skipped_sections",
	"written", "dry_run", "error",
}

var decisionColumns = []string{
	"position", "name", "category", "url", "description", "source", "confidence", "verdict", "reason",
}

// RunRepository handles database operations for pipeline runs
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun stores a finished run and its decisions in one transaction
func (r *RunRepository) SaveRun(ctx context.Context, summary *pipeline.Summary) error {
	skipped, err := json.Marshal(nonNil(summary.SkippedSections))
	if err != nil {
		return fmt.Errorf("failed to encode skipped sections: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sq.Insert("runs").
		Columns(runColumns...).
		Values(
			summary.ID,
			formatTime(summary.StartedAt),
			formatTime(summary.FinishedAt),
			summary.Posts,
			summary.PostsWithContent,
			summary.Batches,
			summary.Candidates,
			summary.Duplicates,
			summary.LowConfidence,
			len(summary.Added),
			string(skipped),
			summary.Written,
			summary.DryRun,
			summary.Error,
		).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build run insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if len(summary.Decisions) > 0 {
		insert := sq.Insert("decisions").Columns(append([]string{"run_id"}, decisionColumns...)...)
		for i, d := range summary.Decisions {
			insert = insert.Values(summary.ID, i, d.Name, d.Category, d.URL, d.Description, d.Source, d.Confidence, d.Verdict, d.Reason)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build decision insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert decisions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// ListRuns returns the most recent runs without their decisions
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	builder := sq.Select(runColumns...).From("runs").OrderBy("started_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build runs query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// GetRun returns a run with its decisions, or nil if it does not exist
func (r *RunRepository) GetRun(ctx context.Context, id string) (*Run, error) {
	query, args, err := sq.Select(runColumns...).From("runs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build run query: %w", err)
	}

	run, err := scanRun(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.Decisions, err = r.getDecisions(ctx, id)
	if err != nil {
		return nil, err
	}

	return run, nil
}

func (r *RunRepository) GetRunCount(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("runs").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get run count: %w", err)
	}

	return count, nil
}

func (r *RunRepository) getDecisions(ctx context.Context, runID string) ([]Decision, error) {
	query, args, err := sq.Select(decisionColumns...).
		From("decisions").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build decisions query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	decisions := []Decision{}
	for rows.Next() {
		var d Decision
		if err := rows.Scan(decisionFields(&d)...); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		decisions = append(decisions, d)
	}

	return decisions, rows.Err()
}

// ListAddedTools returns accepted decisions from runs that wrote the
// document, newest first
func (r *RunRepository) ListAddedTools(ctx context.Context, limit int) ([]AddedTool, error) {
	columns := []string{"d.run_id", "r.finished_at"}
	for _, column := range decisionColumns {
		columns = append(columns, "d."+column)
	}

	builder := sq.Select(columns...).
		From("decisions d").
		Join("runs r ON r.id = d.run_id").
		Where(sq.Eq{"d.verdict": pipeline.VerdictAccepted, "r.written": true}).
		OrderBy("r.started_at DESC", "d.position")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build added tools query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query added tools: %w", err)
	}
	defer rows.Close()

	tools := []AddedTool{}
	for rows.Next() {
		var tool AddedTool
		var addedAt string
		dest := append([]any{&tool.RunID, &addedAt}, decisionFields(&tool.Decision)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan added tool: %w", err)
		}
		if tool.AddedAt, err = parseTime(addedAt); err != nil {
			return nil, err
		}
		tools = append(tools, tool)
	}

	return tools, rows.Err()
}

// decisionFields returns scan targets in decisionColumns order
func decisionFields(d *Decision) []any {
	return []any{&d.Position, &d.Name, &d.Category, &d.URL, &d.Description, &d.Source, &d.Confidence, &d.Verdict, &d.Reason}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var startedAt, finishedAt, skipped string

	err := row.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&run.Posts,
		&run.PostsWithContent,
		&run.Batches,
		&run.Candidates,
		&run.Duplicates,
		&run.LowConfidence,
		&run.Added,
		&skipped,
		&run.Written,
		&run.DryRun,
		&run.Error,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTime(finishedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(skipped), &run.SkippedSections); err != nil {
		return nil, fmt.Errorf("failed to decode skipped sections: %w", err)
	}

	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return t, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
